// Package middleware contain utilities middleware code
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// IdentityResolver turn raw token into caller identity
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, *jwt.RegisteredClaims, error)
}

// RequireAuth read the credential from Authorization header, or the cookie for browser clients,
// resolve it and put the identity on context. Any failure abort with 401.
func RequireAuth(resolver IdentityResolver, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractToken(ctx, cookieName)
		if err != nil {
			utilities.AbortWithError(ctx, apperror.Unauthorized(err.Error()))
			return
		}

		identity, claims, err := resolver.Resolve(ctx.Request.Context(), tokenString)
		if err != nil {
			utilities.AbortWithError(ctx, err)
			return
		}

		auth.SetIdentity(ctx, identity, claims)
		ctx.Next()
	}
}
