package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coolstore/internal/core/apperror"
	"coolstore/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParseIntParam parses an integer path parameter, reporting malformed input.
func (h *BaseHandler) ParseIntParam(c *gin.Context, key string) (int, bool) {
	val, err := strconv.Atoi(c.Param(key))
	if err != nil {
		h.Error(c, apperror.NewInvalidInput(key, key+" must be an integer"))
		return 0, false
	}
	return val, true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 response with ID.
func (h *BaseHandler) Created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
