package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// CheckRole will protect endpoint from user that is not a specific roles.
// Must run after RequireAuth.
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := auth.IdentityFrom(ctx)
		if !ok {
			utilities.AbortWithError(ctx, apperror.Unauthorized("authentication required"))
			return
		}

		if !slices.Contains(roles, identity.Role) {
			utilities.AbortWithError(ctx, apperror.Forbidden("User doesn't have permission to access"))
			return
		}
		ctx.Next()
	}
}
