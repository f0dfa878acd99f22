package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dariast03/reparo-sys-sub001/internal/dto"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// writeError maps a service error onto a status code and the shared error body.
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrActorRequired):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, dto.NewInsufficientStockError(err.Error()))
	case errors.Is(err, service.ErrIllegalTransition):
		c.JSON(http.StatusConflict, dto.NewIllegalTransitionError(err.Error()))
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, dto.NewDuplicateRequestError(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrStorageFailure):
		log.Error("storage failure", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.NewUnavailableError(""))
	default:
		log.Error("unexpected error", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func badRequest(c *gin.Context, log *zap.Logger, op string, err error) {
	log.Warn("invalid request", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid path parameter", []dto.FieldError{
			{Field: name, Message: "must be a UUID", Tag: "uuid"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID returns nil when the parameter is absent.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid query parameter", []dto.FieldError{
			{Field: name, Message: "must be a UUID", Tag: "uuid"},
		}))
		return nil, false
	}
	return &id, true
}

func page(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func mapSlice[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
