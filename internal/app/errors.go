package app

import (
	"errors"
	"log"
	"net/http"

	"mixshare/internal/repository"
	"mixshare/internal/service"
	"mixshare/internal/util"

	"github.com/gin-gonic/gin"
)

// verboseErrors controls whether unclassified errors carry their
// underlying detail in the response envelope. Enabled outside
// production; set once at router construction.
var verboseErrors bool

// respondError maps service and repository errors to HTTP responses.
// Unclassified errors become opaque 500s in production; elsewhere the
// underlying error rides along in the envelope's error field.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		util.NotFound(c, "Resource not found")
	case errors.Is(err, repository.ErrDuplicateKey):
		util.Conflict(c, "Resource already exists")
	case errors.Is(err, service.ErrValidation):
		util.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		util.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		util.ErrorResponse(c, http.StatusTooManyRequests, err.Error(), nil)
	case errors.Is(err, service.ErrAccountBanned),
		errors.Is(err, service.ErrForbidden):
		util.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		util.Conflict(c, err.Error())
	case errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrImageRequired):
		util.BadRequest(c, err.Error())
	default:
		log.Printf("internal error: %v", err)
		var detail interface{}
		if verboseErrors {
			detail = err.Error()
		}
		util.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", detail)
	}
}
