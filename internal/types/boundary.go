package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DraftRequest is the flattened configuration snapshot handed to the draft
// persistence collaborator when the user finalizes the wizard.
type DraftRequest struct {
	SessionID        string               `json:"session_id"`
	Plan             PlanID               `json:"plan"`
	TemplateID       string               `json:"template_id,omitempty"`
	PaletteID        string               `json:"palette_id"`
	CustomColors     map[string]string    `json:"custom_colors,omitempty"`
	FontFamily       string               `json:"font_family"`
	ButtonShape      string               `json:"button_shape"`
	SectionVariants  map[SectionID]string `json:"section_variants"`
	Motion           string               `json:"motion"`
	Sections         []SectionID          `json:"sections"`
	ServiceCards     []ServiceCard        `json:"service_cards"`
	ContactChannels  []ChannelID          `json:"contact_channels"`
	FloatingChannels []ChannelID          `json:"floating_channels"`
	ChannelValues    map[ChannelID]string `json:"channel_values"`
	Content          map[string]string    `json:"content"`
	Images           map[ImageSlot]string `json:"images,omitempty"`
	BusinessName     string               `json:"business_name"`
	BusinessCategory string               `json:"business_category"`
	Subdomain        string               `json:"subdomain"`
	Highlights       string               `json:"highlights"`
	AddOns           []AddOnID            `json:"add_ons"`
	MonthlyTotal     decimal.Decimal      `json:"monthly_total"`
}

// NewDraftRequest flattens a configuration into a DraftRequest.
func NewDraftRequest(sessionID string, cfg Configuration, monthly decimal.Decimal) DraftRequest {
	c := cfg.Clone()
	floating := c.FloatingChannels
	if !c.FloatingEnabled {
		floating = nil
	}
	return DraftRequest{
		SessionID:        sessionID,
		Plan:             c.Plan,
		TemplateID:       c.TemplateID,
		PaletteID:        c.PaletteID,
		CustomColors:     c.CustomColors,
		FontFamily:       c.FontFamily,
		ButtonShape:      c.ButtonShape,
		SectionVariants:  c.SectionVariants,
		Motion:           c.Motion,
		Sections:         c.Sections,
		ServiceCards:     c.ServiceCards,
		ContactChannels:  c.ContactChannels,
		FloatingChannels: floating,
		ChannelValues:    c.ChannelValues,
		Content:          c.Content,
		Images:           c.Images,
		BusinessName:     c.BusinessName,
		BusinessCategory: c.BusinessCategory,
		Subdomain:        c.Subdomain,
		Highlights:       c.Highlights,
		AddOns:           c.AddOns,
		MonthlyTotal:     monthly,
	}
}

// Draft is a persisted site record.
type Draft struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	Subdomain    string          `json:"subdomain"`
	URL          string          `json:"url"`
	Plan         PlanID          `json:"plan"`
	AddOns       []AddOnID       `json:"add_ons"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
	Status       DraftStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Owner identifies the account that will own the published site.
type Owner struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password SecretString `json:"password"`
	Document string       `json:"document,omitempty"`
}

// CheckoutRequest carries what the payment collaborator needs to start a
// subscription for a drafted site.
type CheckoutRequest struct {
	SiteID       string          `json:"site_id"`
	Plan         PlanID          `json:"plan"`
	AddOns       []AddOnID       `json:"add_ons"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
	OwnerID      string          `json:"owner_id"`
	OwnerEmail   string          `json:"owner_email"`
	SuccessURL   string          `json:"success_url"`
	CancelURL    string          `json:"cancel_url"`
}

// CheckoutResult is either a redirect URL or a bypass signal used outside
// production.
type CheckoutResult struct {
	RedirectURL string `json:"redirect_url,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Bypassed    bool   `json:"bypassed"`
}

// AvailabilityResult is the outcome of a subdomain lookup.
type AvailabilityResult struct {
	Subdomain string             `json:"subdomain"`
	Status    AvailabilityStatus `json:"status"`
	Reason    string             `json:"reason,omitempty"`
}

// UploadResult carries the stable URL of a stored asset.
type UploadResult struct {
	Slot        string `json:"slot"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Account is a site owner record. PasswordHash is a bcrypt hash and never
// leaves the service boundary.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Document     string    `json:"document,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
