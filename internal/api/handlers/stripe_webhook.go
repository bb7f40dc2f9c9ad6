package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewizard/internal/core"
	"sitewizard/internal/external"
	"sitewizard/internal/types"
)

// maxWebhookBodySize bounds a Stripe event payload.
const maxWebhookBodySize = 64 * 1024

// CheckoutEventParser verifies and decodes a Stripe webhook delivery.
type CheckoutEventParser interface {
	ParseCheckoutCompletion(payload []byte, sigHeader string) (*external.CheckoutCompletion, error)
}

// DraftPaymentRecorder marks a draft paid. Repeated calls for the same
// draft must be harmless: Stripe redelivers events.
type DraftPaymentRecorder interface {
	MarkPaid(ctx context.Context, draftID, checkoutSessionID string, paidAt time.Time) error
}

// EventCounter receives the completed-checkout counter.
type EventCounter interface {
	Count(ctx context.Context, metric string, dims map[string]string)
}

// StripeWebhookHandler receives checkout completion events from Stripe. It
// has no caller identity; the Stripe-Signature header is the only proof of
// origin.
type StripeWebhookHandler struct {
	parser  CheckoutEventParser
	drafts  DraftPaymentRecorder
	metrics EventCounter
	logger  *slog.Logger
}

// NewStripeWebhookHandler creates a StripeWebhookHandler. metrics may be nil.
func NewStripeWebhookHandler(parser CheckoutEventParser, drafts DraftPaymentRecorder, metrics EventCounter, logger *slog.Logger) *StripeWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeWebhookHandler{parser: parser, drafts: drafts, metrics: metrics, logger: logger}
}

// RegisterRoutes mounts POST /webhooks/stripe.
func (h *StripeWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/stripe", h.Handle)
}

type webhookAck struct {
	Received bool `json:"received"`
	Ignored  bool `json:"ignored,omitempty"`
}

// Handle verifies the delivery and marks the referenced draft paid. Event
// types other than checkout.session.completed are acknowledged and ignored
// so Stripe stops retrying them. A storage failure answers 500 and Stripe
// retries.
func (h *StripeWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read webhook body", "error", err)
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidJSON, "failed to read request body", err))
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		h.logger.WarnContext(ctx, "missing Stripe-Signature header")
		core.Error(w, r, types.NewAppError(types.ErrCodeWebhookSignature, "missing Stripe-Signature header", nil))
		return
	}

	completion, err := h.parser.ParseCheckoutCompletion(payload, sig)
	if errors.Is(err, external.ErrUnhandledEvent) {
		h.logger.DebugContext(ctx, "ignoring stripe event", "reason", err.Error())
		core.JSON(w, r, http.StatusOK, webhookAck{Received: true, Ignored: true})
		return
	}
	if err != nil {
		h.logger.WarnContext(ctx, "rejected stripe webhook", "error", err)
		core.Error(w, r, err)
		return
	}

	if err := h.drafts.MarkPaid(ctx, completion.SiteID, completion.CheckoutSessionID, completion.PaidAt); err != nil {
		h.logger.ErrorContext(ctx, "failed to mark draft paid",
			"draft_id", completion.SiteID,
			"event_id", completion.EventID,
			"error", err,
		)
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Count(ctx, types.MetricCheckoutCompleted, nil)
	}
	h.logger.InfoContext(ctx, "checkout completed",
		"draft_id", completion.SiteID,
		"event_id", completion.EventID,
		"checkout_session_id", completion.CheckoutSessionID,
	)
	core.JSON(w, r, http.StatusOK, webhookAck{Received: true})
}
