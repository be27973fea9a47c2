package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

// Resolver turn an access token into Identity
type Resolver struct {
	DB        *database.DBinstanceStruct
	Tokens    *TokenManager
	Blacklist JwtBlacklistStore
	log       *zap.Logger
}

// NewResolver creates a new instance of Resolver, blacklist may be nil
func NewResolver(db *database.DBinstanceStruct, tokens *TokenManager, blacklist JwtBlacklistStore, log *zap.Logger) *Resolver {
	return &Resolver{
		DB:        db,
		Tokens:    tokens,
		Blacklist: blacklist,
		log:       logger.OrNop(log),
	}
}

// Resolve validate token and load the role of its subject.
// Every failure is apperror with CodeUnauthorized except storage faults.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, *jwt.RegisteredClaims, error) {
	claims, err := r.Tokens.ValidatedToken(token)
	if err != nil {
		logAuthAttempt(r.log, zapcore.DebugLevel, authTypeToken, statusFail, "", "token rejected: "+err.Error())
		return Identity{}, nil, apperror.Unauthorized("invalid or expired token")
	}

	if r.Blacklist != nil {
		blacklisted, err := r.Blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return Identity{}, nil, apperror.Internal("failed to check token status", err)
		}
		if blacklisted {
			logAuthAttempt(r.log, zapcore.DebugLevel, authTypeToken, statusFail, claims.Subject, "token revoked")
			return Identity{}, nil, apperror.Unauthorized("token has been revoked")
		}
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, nil, apperror.Unauthorized("invalid token subject")
	}

	var user model.User
	err = r.DB.WithContext(ctx).Select("id", "role").Where("id = ?", subject).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logAuthAttempt(r.log, zapcore.WarnLevel, authTypeToken, statusFail, claims.Subject, "token subject no longer exists")
		return Identity{}, nil, apperror.Unauthorized("user not found")
	case err != nil:
		return Identity{}, nil, apperror.Internal("failed to load user", err)
	}

	return Identity{SubjectID: user.ID, Role: user.Role}, claims, nil
}
