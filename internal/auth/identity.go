package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Nishanth-cyber/Job-search/internal/model"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

// Identity is the authenticated caller, resolved once per request and passed explicitly to services
type Identity struct {
	SubjectID uuid.UUID
	Role      string
}

// IsAdmin report whether identity has admin role
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// SetIdentity store identity and token claims on gin context
func SetIdentity(c *gin.Context, id Identity, claims *jwt.RegisteredClaims) {
	c.Set(identityKey, id)
	c.Set(claimsKey, claims)
}

// IdentityFrom return identity put on context by the auth middleware
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
