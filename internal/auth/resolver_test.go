package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestResolve_Roles(t *testing.T) {
	tokens := NewTokenManager(TestSecret, time.Minute)
	resolver := NewResolver(testDB, tokens, nil, nil)

	for _, u := range []model.User{database.TestUserJobSeeker1, database.TestUserRecruiter1, database.TestAdminUser} {
		token, err := tokens.GenerateToken(u.ID)
		require.NoError(t, err)

		id, claims, err := resolver.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, id.SubjectID)
		assert.Equal(t, u.Role, id.Role)
		assert.Equal(t, u.Role == model.RoleAdmin, id.IsAdmin())
		assert.NotNil(t, claims)
	}
}

func TestResolve_Rejects(t *testing.T) {
	tokens := NewTokenManager(TestSecret, time.Minute)
	resolver := NewResolver(testDB, tokens, nil, nil)
	subject := database.TestUserJobSeeker1.ID.String()
	valid := jwt.RegisteredClaims{
		ID:        "id",
		Issuer:    JwtIssuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreignIssuer := valid
	foreignIssuer.Issuer = "someone-else"

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	unknownUser := valid
	unknownUser.Subject = uuid.NewString()

	badSubject := valid
	badSubject.Subject = "not-a-uuid"

	cases := map[string]string{
		"garbage":        "not.a.token",
		"wrong secret":   signClaims(t, jwt.SigningMethodHS256, []byte("other"), valid),
		"none algorithm": signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
		"expired":        signClaims(t, jwt.SigningMethodHS256, []byte(TestSecret), expired),
		"foreign issuer": signClaims(t, jwt.SigningMethodHS256, []byte(TestSecret), foreignIssuer),
		"no expiry":      signClaims(t, jwt.SigningMethodHS256, []byte(TestSecret), noExpiry),
		"unknown user":   signClaims(t, jwt.SigningMethodHS256, []byte(TestSecret), unknownUser),
		"bad subject":    signClaims(t, jwt.SigningMethodHS256, []byte(TestSecret), badSubject),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := resolver.Resolve(context.Background(), token)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeUnauthorized), "got %v", err)
		})
	}
}

func TestResolve_BlacklistFailureIsInternal(t *testing.T) {
	tokens := NewTokenManager(TestSecret, time.Minute)
	token, err := tokens.GenerateToken(database.TestUserJobSeeker1.ID)
	require.NoError(t, err)

	_, _, err = NewResolver(testDB, tokens, failingBlacklistStore{}, nil).Resolve(context.Background(), token)
	assert.True(t, apperror.Is(err, apperror.CodeInternal))
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", 0).GenerateToken(uuid.New())
	assert.Error(t, err)
}
