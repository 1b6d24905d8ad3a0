package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/ticket-relay/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	// Check for AppError first (our custom error type)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err, requestID)
		WriteError(w, appErr.StatusCode, appErr.Message, appErr.Code)
		return
	}

	statusCode, message, code := h.mapDomainError(err)
	h.logError(r, statusCode, err, requestID)
	WriteError(w, statusCode, message, code)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, string, string) {
	switch {
	// Not found
	case errors.Is(err, apperrors.ErrTicketNotFound):
		return http.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND"
	case errors.Is(err, apperrors.ErrMessageNotFound):
		return http.StatusNotFound, "Message not found", "MESSAGE_NOT_FOUND"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Resource not found", "NOT_FOUND"

	// Validation
	case errors.Is(err, apperrors.ErrTicketIDRequired),
		errors.Is(err, apperrors.ErrStatusRequired),
		errors.Is(err, apperrors.ErrTextRequired),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error(), "VALIDATION_ERROR"

	// SMS policy
	case errors.Is(err, apperrors.ErrPhoneMissing),
		errors.Is(err, apperrors.ErrSMSNotRequested):
		return http.StatusBadRequest, err.Error(), "SMS_POLICY"

	// Auth
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED"

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMITED"

	// Default to internal server error
	default:
		return http.StatusInternalServerError, "An unexpected error occurred", "INTERNAL_ERROR"
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error, requestID string) {
	logAttrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}
