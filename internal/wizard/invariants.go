package wizard

import (
	"fmt"

	"sitewizard/internal/billing"
	"sitewizard/internal/entitlement"
	"sitewizard/internal/types"
)

// Violation describes one broken configuration invariant.
type Violation struct {
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Detail
}

// CheckInvariants audits cfg against the rules every reachable configuration
// satisfies. The service card ceiling holds only when callers check the limit
// before AddServiceCard, so a violation there points at the caller.
func CheckInvariants(cfg types.Configuration) []Violation {
	var out []Violation
	add := func(rule, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	limits := billing.LimitsFor(cfg.Plan, cfg.AddOns)

	for _, ch := range cfg.FloatingChannels {
		if !cfg.HasContactChannel(ch) {
			add("floating_subset", "floating channel %q is not a selected contact channel", ch)
		}
	}
	if n := len(cfg.ContactChannels); n > limits.ContactChannels {
		add("contact_channel_limit", "%d contact channels, limit %d", n, limits.ContactChannels)
	}
	if n := len(cfg.FloatingChannels); n > limits.FloatingSlots {
		add("floating_slot_limit", "%d floating channels, limit %d", n, limits.FloatingSlots)
	}
	if n := len(cfg.ServiceCards); n > limits.ServiceCards {
		add("service_card_limit", "%d service cards, limit %d", n, limits.ServiceCards)
	}
	if n := len(cfg.Sections); n > limits.Sections {
		add("section_limit", "%d sections, limit %d", n, limits.Sections)
	}
	if cfg.Plan != types.PlanBuilder && len(cfg.AddOns) > 0 {
		add("add_ons_outside_builder", "plan %q stores add-ons %v", cfg.Plan, cfg.AddOns)
	}

	for section, variant := range cfg.SectionVariants {
		if s := entitlement.VariantStatus(section, variant, cfg.Plan, cfg.AddOns); s != types.StatusIncluded {
			add("variant_entitled", "section %q variant %q is %s", section, variant, s)
		}
	}
	if s := entitlement.PaletteStatus(cfg.PaletteID, cfg.Plan, cfg.AddOns); s != types.StatusIncluded {
		add("palette_entitled", "palette %q is %s", cfg.PaletteID, s)
	}
	if s := entitlement.FontStatus(cfg.FontFamily, cfg.Plan, cfg.AddOns); s != types.StatusIncluded {
		add("font_entitled", "font %q is %s", cfg.FontFamily, s)
	}
	if s := entitlement.MotionStatus(cfg.Motion, cfg.Plan, cfg.AddOns); s != types.StatusIncluded {
		add("motion_entitled", "motion %q is %s", cfg.Motion, s)
	}
	for i, card := range cfg.ServiceCards {
		if s := entitlement.IconStatus(card.IconID, cfg.Plan, cfg.AddOns); s != types.StatusIncluded {
			add("icon_entitled", "card %d icon %q is %s", i, card.IconID, s)
		}
	}
	return out
}
