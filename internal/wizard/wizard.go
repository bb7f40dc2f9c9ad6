// Package wizard implements the configuration state machine behind the site
// wizard.
//
// Apply is pure, total, and deterministic: it never mutates its input, never
// fails, and returns the input unchanged for actions that are invalid in the
// current state. Derived views (price, steps, limits, entitlements) are
// recomputed by callers from the returned configuration.
package wizard

import (
	"sitewizard/internal/catalog"
	"sitewizard/internal/entitlement"
	"sitewizard/internal/types"
)

// Action is one discrete user intent. The set of actions is closed; every
// implementation lives in this package.
type Action interface {
	Type() ActionType
	// apply returns the next configuration and true, or (cfg, false) when the
	// action does not apply. Implementations must not write through cfg.
	apply(cfg types.Configuration) (types.Configuration, bool)
}

// Apply returns the configuration that results from a on cfg.
func Apply(cfg types.Configuration, a Action) types.Configuration {
	next, _ := TryApply(cfg, a)
	return next
}

// TryApply is Apply that also reports whether a took effect. Callers use the
// flag to decide whether the transition belongs in the undo history.
func TryApply(cfg types.Configuration, a Action) (types.Configuration, bool) {
	if a == nil {
		return cfg, false
	}
	next, ok := a.apply(cfg)
	if !ok {
		return cfg, false
	}
	return next, true
}

// ApplyAll folds actions over cfg in order.
func ApplyAll(cfg types.Configuration, actions ...Action) types.Configuration {
	for _, a := range actions {
		cfg = Apply(cfg, a)
	}
	return cfg
}

// New returns the configuration a wizard starts with: no plan selected and
// every field at its documented default.
func New() types.Configuration {
	return Defaults(types.PlanNone)
}

// Defaults returns the documented defaults for the plan-scoped fields.
// Business identity fields are left empty.
func Defaults(plan types.PlanID) types.Configuration {
	return types.Configuration{
		Plan:             plan,
		PaletteID:        catalog.DefaultPalette,
		CustomColors:     map[string]string{},
		FontFamily:       catalog.DefaultFont,
		ButtonShape:      catalog.DefaultButtonShape,
		SectionVariants:  catalog.DefaultSectionVariants(),
		Motion:           catalog.DefaultMotion,
		Sections:         catalog.DefaultSections(),
		ServiceCards:     []types.ServiceCard{},
		ContactChannels:  catalog.DefaultContactChannels(),
		FloatingChannels: []types.ChannelID{},
		ChannelValues:    map[types.ChannelID]string{},
		AddOns:           []types.AddOnID{},
		Content:          catalog.DefaultContent(),
		Images:           map[types.ImageSlot]string{},
	}
}

// mutable returns a deep copy of cfg with every map allocated, ready to be
// written to.
func mutable(cfg types.Configuration) types.Configuration {
	next := cfg.Clone()
	if next.CustomColors == nil {
		next.CustomColors = map[string]string{}
	}
	if next.SectionVariants == nil {
		next.SectionVariants = map[types.SectionID]string{}
	}
	if next.ChannelValues == nil {
		next.ChannelValues = map[types.ChannelID]string{}
	}
	if next.Content == nil {
		next.Content = map[string]string{}
	}
	if next.Images == nil {
		next.Images = map[types.ImageSlot]string{}
	}
	return next
}

func unlocked(cfg types.Configuration, f types.FeatureID) bool {
	return entitlement.FeatureUnlocked(f, cfg.Plan, cfg.AddOns)
}

func included(s types.EntitlementStatus) bool {
	return s == types.StatusIncluded
}

func indexOf[T comparable](list []T, v T) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func without[T comparable](list []T, v T) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
