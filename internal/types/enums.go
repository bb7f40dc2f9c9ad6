package types

// PlanID identifies the plan tier a configuration is assembled under.
// The zero value means no plan has been selected yet.
type PlanID string

const (
	PlanNone        PlanID = ""
	PlanEntry       PlanID = "entry"
	PlanBuilder     PlanID = "builder"
	PlanBuilderFull PlanID = "builder-full"
)

// AllPlans lists the selectable plans in display order.
var AllPlans = []PlanID{PlanEntry, PlanBuilder, PlanBuilderFull}

// IsKnown reports whether p is one of the selectable plans.
func (p PlanID) IsKnown() bool {
	switch p {
	case PlanEntry, PlanBuilder, PlanBuilderFull:
		return true
	default:
		return false
	}
}

// IsFreeForm reports whether the plan uses the free-form builder flow
// (style, structure, content) rather than the template flow.
func (p PlanID) IsFreeForm() bool {
	return p == PlanBuilder || p == PlanBuilderFull
}

// AddOnID identifies an individually priced unlock.
type AddOnID string

const (
	// Bundled "section premium" add-ons. Removing one of these resets every
	// field it gated back to its free default.
	AddOnPremiumPalette    AddOnID = "premium-palette"
	AddOnPremiumTypography AddOnID = "premium-typography"
	AddOnPremiumVariants   AddOnID = "premium-variants"
	AddOnPremiumChannels   AddOnID = "premium-channels"
	AddOnPremiumCards      AddOnID = "premium-cards"

	// Single add-ons. Removal only shrinks limits.
	AddOnExtraCards    AddOnID = "extra-cards"
	AddOnExtraSections AddOnID = "extra-sections"
	AddOnFloatingCTA   AddOnID = "floating-cta"
)

// FeatureID identifies a gated capability. Every feature maps to exactly one
// add-on in the catalog.
type FeatureID string

const (
	FeaturePremiumPalettes   FeatureID = "premium-palettes"
	FeatureCustomPalette     FeatureID = "custom-palette"
	FeaturePremiumTypography FeatureID = "premium-typography"
	FeatureAdvancedLayouts   FeatureID = "advanced-layouts"
	FeatureMotionEffects     FeatureID = "motion-effects"
	FeatureExtraChannels     FeatureID = "extra-channels"
	FeaturePremiumIcons      FeatureID = "premium-icons"
	FeatureCardImages        FeatureID = "card-images"
	FeatureExtraCards        FeatureID = "extra-cards"
	FeatureExtraSections     FeatureID = "extra-sections"
	FeatureFloatingButton    FeatureID = "floating-button"
)

// EntitlementStatus is the resolved permission state of a feature.
type EntitlementStatus string

const (
	StatusIncluded    EntitlementStatus = "included"
	StatusPurchasable EntitlementStatus = "purchasable"
	StatusBlocked     EntitlementStatus = "blocked"
)

// SectionID identifies a page section of the generated site.
type SectionID string

const (
	SectionHero         SectionID = "hero"
	SectionAbout        SectionID = "about"
	SectionServices     SectionID = "services"
	SectionGallery      SectionID = "gallery"
	SectionTestimonials SectionID = "testimonials"
	SectionTeam         SectionID = "team"
	SectionFAQ          SectionID = "faq"
	SectionPricing      SectionID = "pricing"
	SectionMap          SectionID = "map"
	SectionContact      SectionID = "contact"
)

// ChannelID identifies a contact channel the visitor can use.
type ChannelID string

const (
	ChannelWhatsApp  ChannelID = "whatsapp"
	ChannelPhone     ChannelID = "phone"
	ChannelEmail     ChannelID = "email"
	ChannelInstagram ChannelID = "instagram"
	ChannelFacebook  ChannelID = "facebook"
	ChannelTelegram  ChannelID = "telegram"
	ChannelLinkedIn  ChannelID = "linkedin"
	ChannelTikTok    ChannelID = "tiktok"
)

// StepID identifies a wizard step.
type StepID string

const (
	StepIdentity        StepID = "identity"
	StepPlan            StepID = "plan"
	StepTemplate        StepID = "template"
	StepTemplateContent StepID = "template-content"
	StepStyle           StepID = "style"
	StepStructure       StepID = "structure"
	StepContent         StepID = "content"
	StepFinalize        StepID = "finalize"
)

// BusinessField names one of the business identity fields that survive a
// plan change.
type BusinessField string

const (
	BusinessName       BusinessField = "name"
	BusinessCategory   BusinessField = "category"
	BusinessSubdomain  BusinessField = "subdomain"
	BusinessHighlights BusinessField = "highlights"
)

// ImageSlot names a place in the configuration an uploaded asset is stored.
type ImageSlot string

const (
	SlotLogo    ImageSlot = "logo"
	SlotHero    ImageSlot = "hero"
	SlotAbout   ImageSlot = "about"
	SlotFavicon ImageSlot = "favicon"
)

// AllImageSlots lists the named configuration image slots. Service card
// images are addressed separately by card index.
var AllImageSlots = []ImageSlot{SlotLogo, SlotHero, SlotAbout, SlotFavicon}

// IsKnown reports whether s is a configuration image slot.
func (s ImageSlot) IsKnown() bool {
	for _, known := range AllImageSlots {
		if s == known {
			return true
		}
	}
	return false
}

// Phase gates re-entrant boundary calls on a wizard session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDrafting Phase = "drafting"
	PhaseCheckout Phase = "checkout"
)

// AvailabilityStatus is the result of a subdomain availability lookup.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityTaken     AvailabilityStatus = "taken"
	AvailabilityInvalid   AvailabilityStatus = "invalid"
)

// DraftStatus tracks a persisted site draft through provisioning and payment.
// These values MUST match the CHECK constraint on site_drafts.status.
type DraftStatus string

const (
	DraftStatusPending     DraftStatus = "pending"
	DraftStatusProvisioned DraftStatus = "provisioned"
	DraftStatusPaid        DraftStatus = "paid"
)
