package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"sitewizard/internal/billing"
	"sitewizard/internal/types"
)

const stripeAPIBase = "https://api.stripe.com"

// EventCheckoutCompleted is the only webhook event the wizard acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// ErrUnhandledEvent is returned by ParseCheckoutCompletion for any other
// verified event type.
var ErrUnhandledEvent = errors.New("stripe: unhandled event type")

// StripeConfig configures a StripeClient.
type StripeConfig struct {
	SecretKey     types.SecretString
	WebhookSecret types.SecretString
	BaseURL       string // tests point this at httptest
	Logger        *slog.Logger
}

// StripeClient opens subscription checkouts over the Stripe REST API and
// verifies the webhooks Stripe sends back.
type StripeClient struct {
	base          *BaseClient
	secretKey     string
	webhookSecret string
	baseURL       string
	logger        *slog.Logger
}

// NewStripeClient wraps base with Stripe credentials.
func NewStripeClient(base *BaseClient, cfg StripeConfig) *StripeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = stripeAPIBase
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &StripeClient{
		base:          base,
		secretKey:     cfg.SecretKey.Unmask(),
		webhookSecret: cfg.WebhookSecret.Unmask(),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		logger:        cfg.Logger,
	}
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Param   string `json:"param"`
	} `json:"error"`
}

// CreateCheckoutSession opens a monthly subscription checkout priced from the
// quote of req's plan and add-ons. Prices are sent inline so no Stripe price
// objects need to be provisioned. client_reference_id carries the site id for
// webhook correlation.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResult, error) {
	quote := billing.NewQuote(req.Plan, req.AddOns)
	if len(quote.Items) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationIncomplete, "checkout requires a plan", nil)
	}
	if !quote.Total.Equal(req.MonthlyTotal) {
		s.logger.WarnContext(ctx, "checkout total differs from quote",
			"site_id", req.SiteID, "requested", req.MonthlyTotal.StringFixed(2), "quoted", quote.Total.StringFixed(2))
	}

	params := checkoutParams(req, quote)
	resp, err := s.doPost(ctx, "/v1/checkout/sessions", params)
	if err != nil {
		return nil, wrapStripeError("CreateCheckoutSession", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp, "CreateCheckoutSession")
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamStripe, "failed to decode checkout session", err)
	}
	s.logger.InfoContext(ctx, "stripe checkout session created", "site_id", req.SiteID, "checkout_session_id", session.ID)
	return &types.CheckoutResult{RedirectURL: session.URL, SessionID: session.ID}, nil
}

func checkoutParams(req types.CheckoutRequest, quote billing.Quote) url.Values {
	currency := strings.ToLower(quote.Currency)
	params := url.Values{}
	params.Set("mode", "subscription")
	params.Set("client_reference_id", req.SiteID)
	params.Set("success_url", req.SuccessURL)
	params.Set("cancel_url", req.CancelURL)
	if req.OwnerEmail != "" {
		params.Set("customer_email", req.OwnerEmail)
	}
	params.Set("metadata[site_id]", req.SiteID)
	params.Set("metadata[plan]", string(req.Plan))
	params.Set("metadata[owner_id]", req.OwnerID)
	params.Set("subscription_data[metadata][site_id]", req.SiteID)

	for i, item := range quote.Items {
		p := fmt.Sprintf("line_items[%d]", i)
		params.Set(p+"[quantity]", "1")
		params.Set(p+"[price_data][currency]", currency)
		params.Set(p+"[price_data][unit_amount]", fmt.Sprintf("%d", toCents(item.Price)))
		params.Set(p+"[price_data][recurring][interval]", "month")
		params.Set(p+"[price_data][product_data][name]", item.Name)
		params.Set(p+"[price_data][product_data][metadata][kind]", item.Kind)
		params.Set(p+"[price_data][product_data][metadata][id]", item.ID)
	}
	return params
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// CheckoutCompletion is the verified outcome of a paid checkout.
type CheckoutCompletion struct {
	EventID           string
	SiteID            string
	CheckoutSessionID string
	PaidAt            time.Time
}

// ParseCheckoutCompletion verifies the Stripe-Signature header against the
// webhook secret and decodes a checkout.session.completed event. Signature
// failures are webhook_invalid_signature AppErrors; verified events of any
// other type return ErrUnhandledEvent.
func (s *StripeClient) ParseCheckoutCompletion(payload []byte, sigHeader string) (*CheckoutCompletion, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeWebhookSignature, "invalid stripe signature", err)
	}
	if string(event.Type) != EventCheckoutCompleted {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, event.Type)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidJSON, "malformed checkout session", err)
	}
	siteID := session.ClientReferenceID
	if siteID == "" {
		siteID = session.Metadata["site_id"]
	}
	if siteID == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "checkout session has no site reference", nil)
	}
	return &CheckoutCompletion{
		EventID:           event.ID,
		SiteID:            siteID,
		CheckoutSessionID: session.ID,
		PaidAt:            time.Unix(event.Created, 0).UTC(),
	}, nil
}

func (s *StripeClient) doPost(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Stripe-Version", stripe.APIVersion)
	return s.base.Do(req)
}

func handleErrorResponse(resp *http.Response, operation string) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: stripe returned %d with unreadable body", operation, resp.StatusCode), err)
	}
	var se stripeErrorResponse
	if err := json.Unmarshal(body, &se); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: stripe returned %d", operation, resp.StatusCode), err)
	}

	msg := fmt.Sprintf("%s: %s", operation, se.Error.Message)
	cause := fmt.Errorf("stripe %s (%s)", se.Error.Type, se.Error.Code)
	switch {
	case resp.StatusCode == http.StatusBadRequest && se.Error.Param == "customer_email":
		return types.NewAppError(types.ErrCodeValidationInvalidEmail, "owner email was rejected by the payment provider", cause)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return types.NewAppError(types.ErrCodeInternalUnexpected, msg+": stripe credentials rejected", cause)
	default:
		return types.NewAppError(types.ErrCodeUpstreamStripe, msg, cause)
	}
}

func wrapStripeError(operation string, err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamStripe, operation+": stripe request failed", err)
}
