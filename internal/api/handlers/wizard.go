package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sitewizard/internal/availability"
	"sitewizard/internal/core"
	"sitewizard/internal/session"
	"sitewizard/internal/types"
	"sitewizard/internal/wizard"
)

// uploadFormOverhead is the multipart framing allowed on top of the file.
const uploadFormOverhead = 64 << 10

// WizardService is the session state handle the wizard endpoints drive.
type WizardService interface {
	Start(ctx context.Context) (*session.View, error)
	Get(ctx context.Context, id string) (*session.View, error)
	Delete(ctx context.Context, id string) error
	Dispatch(ctx context.Context, id string, env wizard.Envelope) (*session.View, error)
	Undo(ctx context.Context, id string) (*session.View, error)
	Upload(ctx context.Context, id, slot, filename string, body io.Reader) (*types.UploadResult, *session.View, error)
	Finalize(ctx context.Context, id string) (*types.Draft, error)
	Checkout(ctx context.Context, id string, owner types.Owner) (*types.CheckoutResult, error)
}

// SubdomainChecker answers availability checks keyed by session.
type SubdomainChecker interface {
	Check(ctx context.Context, key, candidate string) (*types.AvailabilityResult, error)
}

// CheckoutRequest is the body of POST /wizard/sessions/{id}/checkout.
type CheckoutRequest struct {
	Name     string             `json:"name" validate:"required,max=120"`
	Email    string             `json:"email" validate:"required,email,max=254"`
	Password types.SecretString `json:"password" validate:"required"`
	Document string             `json:"document,omitempty" validate:"omitempty,max=32"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Upload  *types.UploadResult `json:"upload"`
	Session *session.View       `json:"session"`
}

// WizardHandler serves the configuration session endpoints.
type WizardHandler struct {
	service   WizardService
	checker   SubdomainChecker
	validator *core.Validator
	logger    *slog.Logger
}

// NewWizardHandler creates a WizardHandler.
func NewWizardHandler(service WizardService, checker SubdomainChecker, v *core.Validator, logger *slog.Logger) *WizardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WizardHandler{service: service, checker: checker, validator: v, logger: logger}
}

// RegisterRoutes mounts the /wizard/sessions routes.
func (h *WizardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wizard/sessions", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/actions", h.Dispatch)
			r.Post("/undo", h.Undo)
			r.Get("/subdomain", h.CheckSubdomain)
			r.Post("/uploads/{slot}", h.Upload)
			r.Post("/draft", h.Finalize)
			r.Post("/checkout", h.Checkout)
		})
	})
}

// Start handles POST /wizard/sessions.
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Start(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusCreated, view)
}

// Get handles GET /wizard/sessions/{id}.
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, view)
}

// Delete handles DELETE /wizard/sessions/{id}.
func (h *WizardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles POST /wizard/sessions/{id}/actions. A rejected action is
// a 200 with applied=false; only malformed actions and limit breaches are
// errors.
func (h *WizardHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var env wizard.Envelope
	if err := core.DecodeJSON(w, r, &env); err != nil {
		core.Error(w, r, err)
		return
	}
	if env.Type == "" {
		core.Error(w, r, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
			"action type is required", nil, map[string]any{"field": "type"}))
		return
	}

	view, err := h.service.Dispatch(r.Context(), chi.URLParam(r, "id"), env)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, view)
}

// Undo handles POST /wizard/sessions/{id}/undo.
func (h *WizardHandler) Undo(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, view)
}

// CheckSubdomain handles GET /wizard/sessions/{id}/subdomain?name=. A check
// overtaken by a newer one for the same session answers 409 so the client
// drops it.
func (h *WizardHandler) CheckSubdomain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}

	res, err := h.checker.Check(r.Context(), id, r.URL.Query().Get("name"))
	switch {
	case errors.Is(err, availability.ErrSuperseded):
		core.Error(w, r, types.NewAppError(types.ErrCodeConflictSuperseded,
			"a newer availability check replaced this one", err))
		return
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this response.
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "availability check failed", "session_id", id, "error", err)
		core.Error(w, r, types.NewAppError(types.ErrCodeInternalDB, "availability check failed", err))
		return
	}
	core.Data(w, r, http.StatusOK, res)
}

// Upload handles POST /wizard/sessions/{id}/uploads/{slot}. The body is a
// multipart form whose "file" part is streamed to storage without being
// buffered to disk.
func (h *WizardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidUpload,
			"request must be multipart/form-data", err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, types.MaxUploadBytes+uploadFormOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidUpload, "malformed multipart body", err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			core.Error(w, r, uploadReadError(err))
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		res, view, err := h.service.Upload(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slot"), part.FileName(), part)
		_ = part.Close()
		if err != nil {
			core.Error(w, r, uploadReadError(err))
			return
		}
		core.Data(w, r, http.StatusCreated, UploadResponse{Upload: res, Session: view})
		return
	}

	core.Error(w, r, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
		"multipart field \"file\" is required", nil, map[string]any{"field": "file"}))
}

func uploadReadError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return types.NewAppError(types.ErrCodeValidationUploadTooLarge, "upload exceeds the size limit", err)
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return types.NewAppError(types.ErrCodeValidationInvalidUpload, "malformed multipart body", err)
}

// Finalize handles POST /wizard/sessions/{id}/draft.
func (h *WizardHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusCreated, draft)
}

// Checkout handles POST /wizard/sessions/{id}/checkout.
func (h *WizardHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	document, appErr := types.NormalizeDocument(req.Document)
	if appErr != nil {
		core.Error(w, r, appErr)
		return
	}

	result, err := h.service.Checkout(r.Context(), chi.URLParam(r, "id"), types.Owner{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
		Document: document,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, result)
}
