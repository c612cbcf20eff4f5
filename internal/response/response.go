// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vinay02022/testinBackend/internal/apperr"
)

type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Error maps err onto its HTTP status and aborts the chain.
func Error(c *gin.Context, err error) {
	status, body := fromError(err)
	c.AbortWithStatusJSON(status, body)
}

func fromError(err error) (int, Envelope) {
	kind := apperr.KindOf(err)
	body := Envelope{Success: false, Message: "internal server error"}

	var e *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &e) {
		body.Message = e.Message
		body.Errors = e.Details
	}
	return apperr.HTTPStatus(kind), body
}
