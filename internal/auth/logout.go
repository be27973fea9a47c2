package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// LogoutController handles user logout by blacklisting JWT tokens
type LogoutController struct {
	BlacklistStore JwtBlacklistStore
	CookieName     string
	log            *zap.Logger
}

// NewLogoutController creates a new instance of LogoutController
func NewLogoutController(blacklistStore JwtBlacklistStore, cookieName string, log *zap.Logger) *LogoutController {
	return &LogoutController{
		BlacklistStore: blacklistStore,
		CookieName:     cookieName,
		log:            logger.OrNop(log),
	}
}

// LogoutHandler handles user logout by blacklisting the JWT token
// @Summary Revoke current access token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.MessageResponse "Successfully logged out"
// @Failure 401 {object} utilities.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Failed to logout"
// @Router /auth/logout [post]
func (lc *LogoutController) LogoutHandler(c *gin.Context) {
	claims, err := extractClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := lc.BlacklistStore.AddToBlacklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		lc.log.Error("failed to blacklist token", zap.String(logger.FieldSubject, claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to logout"})
		return
	}

	if lc.CookieName != "" {
		c.SetCookie(lc.CookieName, "", -1, "/", "", false, true)
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Successfully logged out"})
}

func extractClaims(c *gin.Context) (*jwt.RegisteredClaims, error) {
	claims, ok := c.Get(claimsKey)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	realClaims, okCast := claims.(*jwt.RegisteredClaims)
	if !okCast || realClaims == nil {
		return nil, fmt.Errorf("invalid token claims type")
	}
	if realClaims.ID == "" || realClaims.ExpiresAt == nil {
		return nil, fmt.Errorf("token can not be revoked")
	}
	return realClaims, nil
}
