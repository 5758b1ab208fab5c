package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/bookkeeping_app/internal/apperrors"
	"github.com/SscSPs/bookkeeping_app/internal/core/versioning"
	"github.com/SscSPs/bookkeeping_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	data *Dataset
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogFailure logs err unless it is an expected outcome the caller reports itself.
func (s *BaseService) LogFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrOverpayment) {
		s.LogDebug(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

// owned returns the entity if it exists and belongs to userID. Entities of other
// users are reported as not found.
func owned[T versioning.Cloner[T]](store *versioning.Store[T], id, userID string) (*versioning.Entity[T], error) {
	e, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != userID {
		return nil, fmt.Errorf("%s %s: %w", store.Kind(), id, apperrors.ErrNotFound)
	}
	return e, nil
}

// liveRef checks that a referenced entity exists, belongs to userID and is not deleted.
func liveRef[T versioning.Cloner[T]](store *versioning.Store[T], field, id, userID string) error {
	if id == "" {
		return nil
	}
	e, err := owned(store, id, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError(field, "unknown "+store.Kind()+" "+id)
		}
		return err
	}
	if e.IsDeleted {
		return apperrors.NewValidationError(field, store.Kind()+" "+id+" is deleted")
	}
	return nil
}

// ownedBy filters a store listing to one owner.
func ownedBy[T versioning.Cloner[T]](userID string, includeDeleted bool) func(*versioning.Entity[T]) bool {
	return func(e *versioning.Entity[T]) bool {
		return e.OwnerID == userID && (includeDeleted || !e.IsDeleted)
	}
}
