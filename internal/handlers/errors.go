package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP responses. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error, failure string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var overpay *apperrors.OverpaymentError
	switch {
	case errors.As(err, &overpay):
		logger.Warn(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"attempted": overpay.Attempted.StringFixed(2),
			"remaining": overpay.Remaining.StringFixed(2),
		})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// bindFailed answers a request whose body or query could not be bound.
func bindFailed(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// currentUser returns the authenticated subject, answering 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}

// expectedVersion reads the If-Match header as a history length. A missing
// header yields 0, meaning an unguarded write.
func expectedVersion(c *gin.Context) (int, bool) {
	raw := strings.Trim(strings.TrimSpace(c.GetHeader("If-Match")), `"`)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "If-Match must be a positive version number"})
		return 0, false
	}
	return v, true
}

func now() time.Time {
	return time.Now().UTC()
}

func asOfOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}
