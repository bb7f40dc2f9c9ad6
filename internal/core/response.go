package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"sitewizard/internal/types"
)

// maxRequestBodySize bounds JSON request bodies (1 MB). Multipart uploads are
// capped separately by types.MaxUploadBytes.
const maxRequestBodySize = 1 << 20 // 1 MB

// APIResponse is the envelope of every successful response. Handlers never
// write a bare payload; Data wraps it so clients can always read "data".
type APIResponse struct {
	Data any `json:"data"`
}

// APIErrorResponse is the envelope of every error response.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-visible part of an error. It carries the request
// id so a support ticket can be matched against the request log.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON writes data as the response body with the given status and sets the
// Content-Type header. The body is marshalled before the header is written,
// so a value that cannot be marshalled still produces a well-formed 500
// error envelope instead of a truncated 200.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		// Nothing is left to report to if this write fails too.
		_ = json.NewEncoder(w).Encode(APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "failed to marshal response",
				RequestID: types.GetRequestID(r.Context()),
			},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Data writes v inside the {"data": ...} envelope.
func Data(w http.ResponseWriter, r *http.Request, status int, v any) {
	JSON(w, r, status, APIResponse{Data: v})
}

// Error writes the error envelope for err. It inspects the error chain:
//   - An *types.AppError anywhere in the chain decides the status (through
//     AppError.HTTPStatus) and supplies the code, message and details.
//   - Any other error becomes a 500 with code internal_unexpected_error and
//     a generic message.
//
// Wrapped causes (AppError.Err) never reach the client, and neither does the
// text of a non-AppError. Services keep AppError.Message free of
// infrastructure detail; the cause belongs in the log.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(appErr.Code),
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: requestID,
			},
		})
		return
	}

	// Unclassified error: the message is fixed so nothing internal leaks.
	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// DecodeJSON reads the request body into dst. The body is capped at 1 MB and
// unknown fields are refused, so the JSON contract of each endpoint is strict.
//
// It returns a *types.AppError with code validation_invalid_json (400) for:
//   - malformed JSON
//   - a value of the wrong type for a field (details name the field)
//   - a field dst does not declare
//   - a body over the size limit
//   - an empty body
//   - more than one JSON value in the body
//
// Callers render the returned error with Error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	// MaxBytesReader needs w so the server closes the connection once the
	// limit is hit.
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	// A well-formed body holds exactly one value.
	if dec.More() {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON,
			"request body must contain a single JSON object", nil)
	}
	return nil
}

// mapDecodeError translates a json.Decoder error into a client-facing
// AppError. The decoder error stays wrapped for logging.
func mapDecodeError(err error) *types.AppError {
	// Body over maxRequestBodySize.
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not exceed 1MB", err)
	}

	// Malformed JSON.
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "malformed JSON in request body", err)
	}

	// Right JSON, wrong type for the target field.
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidJSON, "invalid value for field", err,
			map[string]any{
				"field":    typeErr.Field,
				"expected": typeErr.Type.String(),
			})
	}

	// encoding/json reports DisallowUnknownFields only through the message.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "unknown field in request body: "+field, err)
	}

	// Empty body.
	if errors.Is(err, io.EOF) {
		return types.NewAppError(types.ErrCodeValidationInvalidJSON, "request body must not be empty", err)
	}

	// Anything else, e.g. a body cut off mid-value.
	return types.NewAppError(types.ErrCodeValidationInvalidJSON, "invalid JSON in request body", err)
}
