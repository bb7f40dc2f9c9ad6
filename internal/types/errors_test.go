package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorErrorFormat(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeValidationInvalidSubdomain,
		Message: "subdomain must be at least 3 characters",
	}

	expected := "validation_invalid_subdomain: subdomain must be at least 3 characters"
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	underlying := errors.New("database connection failed")
	appErr := NewAppError(ErrCodeInternalDB, "failed to create draft", underlying)

	if appErr.Unwrap() != underlying {
		t.Errorf("Unwrap() returned unexpected error: got %v, want %v", appErr.Unwrap(), underlying)
	}
	if !errors.Is(appErr, underlying) {
		t.Error("errors.Is should find the underlying error through Unwrap")
	}
	if NewAppError(ErrCodeNotFoundSession, "gone", nil).Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestAppErrorErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("handler failed: %w", NewAppError(ErrCodeConflictInFlight, "busy", nil))

	var target *AppError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeConflictInFlight {
		t.Errorf("extracted Code = %q, want %q", target.Code, ErrCodeConflictInFlight)
	}
}

func TestAppErrorWithDetails(t *testing.T) {
	original := NewAppErrorWithDetails(ErrCodeLimitServiceCards, "limit", nil, map[string]any{"limit": 4})

	merged := original.WithDetails(map[string]any{"current": 4, "limit": 20})

	if merged.Details["limit"] != 20 || merged.Details["current"] != 4 {
		t.Errorf("merged details = %v", merged.Details)
	}
	if original.Details["limit"] != 4 {
		t.Error("WithDetails must not modify the original error")
	}
	if _, ok := original.Details["current"]; ok {
		t.Error("WithDetails leaked a key into the original error")
	}
}

func TestErrorCodeHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationWeakPassword, http.StatusBadRequest},
		{ErrCodeValidationUploadTooLarge, http.StatusBadRequest},
		{ErrCodeWebhookSignature, http.StatusBadRequest},
		{ErrCodeAuthInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeLimitServiceCards, http.StatusForbidden},
		{ErrCodeNotFoundSession, http.StatusNotFound},
		{ErrCodeNotFoundDraft, http.StatusNotFound},
		{ErrCodeConflictInFlight, http.StatusConflict},
		{ErrCodeConflictSubdomain, http.StatusConflict},
		{ErrCodeConflictSuperseded, http.StatusConflict},
		{ErrCodeUpstreamStripe, http.StatusBadGateway},
		{ErrCodeUpstreamStorage, http.StatusBadGateway},
		{ErrCodeUpstreamRateLimited, http.StatusServiceUnavailable},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrCodeInternalStore, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			if got := NewAppError(tt.code, "m", nil).HTTPStatus(); got != tt.want {
				t.Errorf("AppError.HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
