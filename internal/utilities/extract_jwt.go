package utilities

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrNoCredential is returned when request carry neither bearer header nor token cookie
var ErrNoCredential = errors.New("authorization header or token cookie is required")

// ExtractBearerToken read token from "Authorization: Bearer <token>" header
func ExtractBearerToken(c *gin.Context) (string, error) {

	const BearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if len(authHeader) <= len(BearerSchema) || !strings.EqualFold(authHeader[:len(BearerSchema)], BearerSchema) {
		return "", errors.New("invalid authorization header")
	}

	return strings.TrimSpace(authHeader[len(BearerSchema):]), nil

}

// ExtractToken read token from bearer header first and fall back to cookie for browser client
func ExtractToken(c *gin.Context, cookieName string) (string, error) {
	if c.GetHeader("Authorization") != "" {
		return ExtractBearerToken(c)
	}

	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token, nil
		}
	}

	return "", ErrNoCredential
}
