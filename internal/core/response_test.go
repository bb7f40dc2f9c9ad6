package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sitewizard/internal/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return resp.Error
}

func TestData_WrapsInEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Data(rec, req, http.StatusCreated, map[string]string{"id": "wiz_1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"id":"wiz_1"}}` {
		t.Errorf("body = %s", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", got.Code)
	}
}

func TestError_AppErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   types.ErrorCode
	}{
		{"validation", types.NewAppError(types.ErrCodeValidationInvalidSubdomain, "bad", nil), http.StatusBadRequest, types.ErrCodeValidationInvalidSubdomain},
		{"limit", types.NewAppError(types.ErrCodeLimitServiceCards, "too many", nil), http.StatusForbidden, types.ErrCodeLimitServiceCards},
		{"not found", types.NewAppError(types.ErrCodeNotFoundSession, "gone", nil), http.StatusNotFound, types.ErrCodeNotFoundSession},
		{"conflict", types.NewAppError(types.ErrCodeConflictInFlight, "busy", nil), http.StatusConflict, types.ErrCodeConflictInFlight},
		{"rate limited", types.NewAppError(types.ErrCodeRateLimited, "slow down", nil), http.StatusTooManyRequests, types.ErrCodeRateLimited},
		{"wrapped", fmt.Errorf("checkout: %w", types.NewAppError(types.ErrCodeUpstreamStripe, "stripe down", nil)), http.StatusBadGateway, types.ErrCodeUpstreamStripe},
		{"generic", errors.New("pq: connection refused"), http.StatusInternalServerError, types.ErrCodeInternalUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()

			Error(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decodeError(t, rec)
			if got.Code != string(tt.wantCode) {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.RequestID != "req-1" {
				t.Errorf("request_id = %q", got.RequestID)
			}
			if strings.Contains(got.Message, "connection refused") {
				t.Error("internal error text leaked to client")
			}
		})
	}
}

func TestError_IncludesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, types.NewAppErrorWithDetails(types.ErrCodeValidationIncomplete, "incomplete", nil,
		map[string]any{"missing": []string{"subdomain"}}))

	got := decodeError(t, rec)
	missing, ok := got.Details["missing"].([]any)
	if !ok || len(missing) != 1 || missing[0] != "subdomain" {
		t.Errorf("details = %v", got.Details)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantMsg string
	}{
		{"valid", `{"name":"acme","count":2}`, false, ""},
		{"empty", ``, true, "must not be empty"},
		{"syntax", `{"name":`, true, ""},
		{"unknown field", `{"name":"a","extra":1}`, true, "unknown field"},
		{"wrong type", `{"count":"two"}`, true, "invalid value"},
		{"trailing value", `{"name":"a"}{"name":"b"}`, true, "single JSON object"},
		{"too large", `{"name":"` + strings.Repeat("x", maxRequestBodySize) + `"}`, true, "1MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(rec, req, &dst)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Name != "acme" || dst.Count != 2 {
					t.Errorf("decoded = %+v", dst)
				}
				return
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != types.ErrCodeValidationInvalidJSON {
				t.Errorf("code = %q", appErr.Code)
			}
			if tt.wantMsg != "" && !strings.Contains(appErr.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}
