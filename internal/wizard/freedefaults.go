package wizard

import (
	"sitewizard/internal/billing"
	"sitewizard/internal/catalog"
	"sitewizard/internal/entitlement"
	"sitewizard/internal/types"
)

// freeDefaults maps each bundled add-on to the reset it triggers when the
// add-on is dropped. It is consulted only by ToggleAddOn on removal. Each
// reset runs after the add-on has left the owned set, resets only values
// that are no longer included, and trims lists to the post-removal limit.
var freeDefaults = map[types.AddOnID]func(cfg *types.Configuration){
	types.AddOnPremiumPalette: func(cfg *types.Configuration) {
		if !included(entitlement.PaletteStatus(cfg.PaletteID, cfg.Plan, cfg.AddOns)) {
			cfg.PaletteID = catalog.DefaultPalette
		}
		if !unlocked(*cfg, types.FeatureCustomPalette) {
			cfg.CustomColors = map[string]string{}
		}
	},

	types.AddOnPremiumTypography: func(cfg *types.Configuration) {
		if !included(entitlement.FontStatus(cfg.FontFamily, cfg.Plan, cfg.AddOns)) {
			cfg.FontFamily = catalog.DefaultFont
		}
	},

	types.AddOnPremiumVariants: func(cfg *types.Configuration) {
		for section, variant := range cfg.SectionVariants {
			if !included(entitlement.VariantStatus(section, variant, cfg.Plan, cfg.AddOns)) {
				cfg.SectionVariants[section] = catalog.DefaultVariant(section)
			}
		}
		if !included(entitlement.MotionStatus(cfg.Motion, cfg.Plan, cfg.AddOns)) {
			cfg.Motion = catalog.DefaultMotion
		}
	},

	types.AddOnPremiumChannels: func(cfg *types.Configuration) {
		trimContactChannels(cfg, billing.ContactChannelLimit(cfg.Plan, cfg.AddOns))
	},

	types.AddOnPremiumCards: func(cfg *types.Configuration) {
		images := unlocked(*cfg, types.FeatureCardImages)
		for i := range cfg.ServiceCards {
			card := &cfg.ServiceCards[i]
			if !included(entitlement.IconStatus(card.IconID, cfg.Plan, cfg.AddOns)) {
				card.IconID = catalog.DefaultIcon
			}
			if !images {
				card.ImageURL = ""
			}
		}
	},
}

func resetToFreeDefaults(cfg *types.Configuration, id types.AddOnID) {
	if reset, ok := freeDefaults[id]; ok {
		reset(cfg)
	}
}
