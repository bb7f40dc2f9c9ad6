package types

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func sampleConfiguration() Configuration {
	return Configuration{
		Plan:             PlanBuilder,
		PaletteID:        "custom",
		CustomColors:     map[string]string{"primary": "#112233"},
		SectionVariants:  map[SectionID]string{SectionHero: "hero-split"},
		Sections:         []SectionID{SectionHero, SectionContact},
		ServiceCards:     []ServiceCard{{Title: "Cut", IconID: "star"}},
		ContactChannels:  []ChannelID{ChannelWhatsApp, ChannelEmail},
		FloatingEnabled:  true,
		FloatingChannels: []ChannelID{ChannelWhatsApp},
		ChannelValues:    map[ChannelID]string{ChannelEmail: "hi@acme.test"},
		AddOns:           []AddOnID{AddOnPremiumPalette, AddOnFloatingCTA},
		Content:          map[string]string{"hero_title": "Welcome"},
		Images:           map[ImageSlot]string{SlotLogo: "https://cdn.test/logo.png"},
		BusinessName:     "Acme",
		Subdomain:        "acme",
	}
}

func TestConfiguration_CloneIsDeep(t *testing.T) {
	orig := sampleConfiguration()
	clone := orig.Clone()

	if !reflect.DeepEqual(orig, clone) {
		t.Fatal("clone differs from original")
	}

	clone.CustomColors["primary"] = "#000000"
	clone.SectionVariants[SectionHero] = "hero-classic"
	clone.Sections[0] = SectionFAQ
	clone.ServiceCards[0].Title = "changed"
	clone.ContactChannels[0] = ChannelPhone
	clone.FloatingChannels[0] = ChannelPhone
	clone.ChannelValues[ChannelEmail] = "x"
	clone.AddOns[0] = AddOnExtraCards
	clone.Content["hero_title"] = "x"
	clone.Images[SlotLogo] = "x"

	if !reflect.DeepEqual(orig, sampleConfiguration()) {
		t.Error("mutating the clone changed the original")
	}
}

func TestConfiguration_CloneKeepsNil(t *testing.T) {
	clone := Configuration{}.Clone()
	if clone.Content != nil || clone.Sections != nil {
		t.Error("nil fields should stay nil")
	}
}

func TestConfiguration_Has(t *testing.T) {
	cfg := sampleConfiguration()

	if !cfg.HasAddOn(AddOnFloatingCTA) || cfg.HasAddOn(AddOnExtraCards) {
		t.Error("HasAddOn mismatch")
	}
	if !cfg.HasContactChannel(ChannelEmail) || cfg.HasContactChannel(ChannelTikTok) {
		t.Error("HasContactChannel mismatch")
	}
	if !cfg.HasFloatingChannel(ChannelWhatsApp) || cfg.HasFloatingChannel(ChannelEmail) {
		t.Error("HasFloatingChannel mismatch")
	}
	if !cfg.HasSection(SectionContact) || cfg.HasSection(SectionFAQ) {
		t.Error("HasSection mismatch")
	}
}

func TestNewDraftRequest(t *testing.T) {
	cfg := sampleConfiguration()
	total := decimal.RequireFromString("99.70")

	req := NewDraftRequest("sess-1", cfg, total)

	if req.SessionID != "sess-1" || req.Plan != PlanBuilder || req.Subdomain != "acme" {
		t.Errorf("unexpected identity fields: %+v", req)
	}
	if !req.MonthlyTotal.Equal(total) {
		t.Errorf("MonthlyTotal = %s, want %s", req.MonthlyTotal, total)
	}
	if !reflect.DeepEqual(req.FloatingChannels, []ChannelID{ChannelWhatsApp}) {
		t.Errorf("FloatingChannels = %v", req.FloatingChannels)
	}

	req.Content["hero_title"] = "mutated"
	if cfg.Content["hero_title"] != "Welcome" {
		t.Error("draft request shares maps with the configuration")
	}
}

func TestNewDraftRequest_DisabledFloatingButtonDropsChannels(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.FloatingEnabled = false

	req := NewDraftRequest("sess-1", cfg, decimal.Zero)

	if req.FloatingChannels != nil {
		t.Errorf("FloatingChannels = %v, want nil", req.FloatingChannels)
	}
}

func TestPlanID(t *testing.T) {
	for _, p := range AllPlans {
		if !p.IsKnown() {
			t.Errorf("%q should be known", p)
		}
	}
	if PlanNone.IsKnown() || PlanID("gold").IsKnown() {
		t.Error("empty and unknown plans must not be known")
	}
	if PlanEntry.IsFreeForm() || !PlanBuilder.IsFreeForm() || !PlanBuilderFull.IsFreeForm() {
		t.Error("IsFreeForm mismatch")
	}
}

func TestImageSlot_IsKnown(t *testing.T) {
	if !SlotFavicon.IsKnown() || ImageSlot("banner").IsKnown() {
		t.Error("IsKnown mismatch")
	}
}
