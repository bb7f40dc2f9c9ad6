package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"sitewizard/internal/types"
)

const testWebhookSecret = "whsec_test_123"

func newTestStripe(serverURL string) *StripeClient {
	return NewStripeClient(newTestBase(0), StripeConfig{
		SecretKey:     "sk_test_abc",
		WebhookSecret: testWebhookSecret,
		BaseURL:       serverURL,
	})
}

func checkoutReq() types.CheckoutRequest {
	return types.CheckoutRequest{
		SiteID:       "site_1",
		Plan:         types.PlanBuilder,
		AddOns:       []types.AddOnID{types.AddOnFloatingCTA},
		MonthlyTotal: decimal.RequireFromString("89.80"),
		OwnerID:      "own_1",
		OwnerEmail:   "ana@acme.test",
		SuccessURL:   "https://wizard.test/done",
		CancelURL:    "https://wizard.test/back",
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form, header = r.PostForm, r.Header
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.test/cs_test_1"}`))
	}))
	defer srv.Close()

	res, err := newTestStripe(srv.URL).CreateCheckoutSession(context.Background(), checkoutReq())
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", res.RedirectURL)
	assert.Equal(t, "cs_test_1", res.SessionID)
	assert.False(t, res.Bypassed)

	assert.Equal(t, "Bearer sk_test_abc", header.Get("Authorization"))
	assert.Equal(t, stripe.APIVersion, header.Get("Stripe-Version"))

	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "site_1", form.Get("client_reference_id"))
	assert.Equal(t, "ana@acme.test", form.Get("customer_email"))
	assert.Equal(t, "own_1", form.Get("metadata[owner_id]"))
	assert.Equal(t, "7990", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "month", form.Get("line_items[0][price_data][recurring][interval]"))
	assert.Equal(t, "990", form.Get("line_items[1][price_data][unit_amount]"))
	assert.Equal(t, string(types.AddOnFloatingCTA), form.Get("line_items[1][price_data][product_data][metadata][id]"))
	assert.Empty(t, form.Get("line_items[2][quantity]"))
}

func TestCreateCheckoutSession_StripeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   types.ErrorCode
	}{
		{"card declined", http.StatusPaymentRequired, `{"error":{"type":"card_error","message":"declined"}}`, types.ErrCodeUpstreamStripe},
		{"bad email", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","param":"customer_email","message":"Invalid email"}}`, types.ErrCodeValidationInvalidEmail},
		{"bad key", http.StatusUnauthorized, `{"error":{"type":"invalid_request_error","message":"Invalid API Key"}}`, types.ErrCodeInternalUnexpected},
		{"html body", http.StatusBadRequest, `<html>`, types.ErrCodeUpstreamStripe},
		{"outage", http.StatusServiceUnavailable, ``, types.ErrCodeUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestStripe(srv.URL).CreateCheckoutSession(context.Background(), checkoutReq())
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.want, appErr.Code)
		})
	}
}

func TestCreateCheckoutSession_RequiresPlan(t *testing.T) {
	req := checkoutReq()
	req.Plan = ""

	_, err := newTestStripe("http://unused.invalid").CreateCheckoutSession(context.Background(), req)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationIncomplete, appErr.Code)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(14990), toCents(decimal.RequireFromString("149.90")))
	assert.Equal(t, int64(5), toCents(decimal.RequireFromString("0.049")))
}

func signed(t *testing.T, secret, payload string) (body []byte, header string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return sp.Payload, sp.Header
}

func TestParseCheckoutCompletion(t *testing.T) {
	client := newTestStripe("")
	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","created":1760000000,
		"data":{"object":{"id":"cs_test_1","object":"checkout.session","client_reference_id":"site_1"}}}`

	body, header := signed(t, testWebhookSecret, payload)
	got, err := client.ParseCheckoutCompletion(body, header)
	require.NoError(t, err)

	assert.Equal(t, &CheckoutCompletion{
		EventID:           "evt_1",
		SiteID:            "site_1",
		CheckoutSessionID: "cs_test_1",
		PaidAt:            time.Unix(1760000000, 0).UTC(),
	}, got)
}

func TestParseCheckoutCompletion_MetadataFallback(t *testing.T) {
	payload := `{"id":"evt_2","object":"event","type":"checkout.session.completed","created":1,
		"data":{"object":{"id":"cs_2","object":"checkout.session","metadata":{"site_id":"site_9"}}}}`
	body, header := signed(t, testWebhookSecret, payload)

	got, err := newTestStripe("").ParseCheckoutCompletion(body, header)
	require.NoError(t, err)
	assert.Equal(t, "site_9", got.SiteID)
}

func TestParseCheckoutCompletion_Rejections(t *testing.T) {
	client := newTestStripe("")

	body, header := signed(t, "whsec_other", `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)
	_, err := client.ParseCheckoutCompletion(body, header)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeWebhookSignature, appErr.Code)

	body, header = signed(t, testWebhookSecret, `{"id":"evt_3","object":"event","type":"invoice.paid","data":{"object":{}}}`)
	_, err = client.ParseCheckoutCompletion(body, header)
	assert.True(t, errors.Is(err, ErrUnhandledEvent))

	body, header = signed(t, testWebhookSecret, `{"id":"evt_4","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_4"}}}`)
	_, err = client.ParseCheckoutCompletion(body, header)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
}
