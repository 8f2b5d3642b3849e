package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// BindJSON decodes and validates the body into dst. On failure it writes
// the error response and returns false.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	if fields := validator.Fields(err); fields != nil {
		return apperrors.Validation("invalid request", fields)
	}
	if errors.Is(err, io.EOF) {
		return apperrors.BadRequest("request body is required", err)
	}
	return apperrors.BadRequest("invalid request body", err)
}

// UUIDParam parses the named path parameter. On failure it writes a 400
// and returns false.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
