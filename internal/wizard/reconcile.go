package wizard

import (
	"sitewizard/internal/billing"
	"sitewizard/internal/types"
)

// clampToLimits trims every repeatable collection to the ceilings of the
// configuration's current entitlements. Lists keep their first entries.
func clampToLimits(cfg *types.Configuration) {
	limits := billing.LimitsFor(cfg.Plan, cfg.AddOns)

	trimContactChannels(cfg, limits.ContactChannels)

	if len(cfg.FloatingChannels) > limits.FloatingSlots {
		cfg.FloatingChannels = cfg.FloatingChannels[:limits.FloatingSlots]
	}
	if limits.FloatingSlots == 0 {
		cfg.FloatingEnabled = false
	}
	if len(cfg.Sections) > limits.Sections {
		cfg.Sections = cfg.Sections[:limits.Sections]
	}
	if len(cfg.ServiceCards) > limits.ServiceCards {
		cfg.ServiceCards = cfg.ServiceCards[:limits.ServiceCards]
	}
}

// trimContactChannels keeps the first n selected channels and drops every
// reference to the removed ones (floating button, destination value).
func trimContactChannels(cfg *types.Configuration, n int) {
	if len(cfg.ContactChannels) <= n {
		return
	}
	for _, ch := range cfg.ContactChannels[n:] {
		cfg.FloatingChannels = without(cfg.FloatingChannels, ch)
		delete(cfg.ChannelValues, ch)
	}
	cfg.ContactChannels = cfg.ContactChannels[:n]
}
