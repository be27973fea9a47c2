// Package utilities contain utility code that use across the package
package utilities

import (
	"github.com/gin-gonic/gin"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
)

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondError write err as ErrorResponse with status derived from its apperror code
func RespondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), ErrorResponse{Error: apperror.Message(err)})
}

// AbortWithError is RespondError for middleware
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), ErrorResponse{Error: apperror.Message(err)})
}
