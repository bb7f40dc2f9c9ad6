// Package catalog holds the static reference data of the site wizard: plan
// definitions, add-ons and their prices, the feature to add-on mapping, and
// the option lists (palettes, fonts, section variants, icons, templates) each
// flagged free or premium.
//
// The package is pure data. Lookups return copies so callers cannot mutate
// the package-level tables.
package catalog

import (
	"github.com/shopspring/decimal"

	"sitewizard/internal/types"
)

// Currency is the ISO code every catalog price is expressed in.
const Currency = "USD"

// Plan is the immutable definition of a plan tier.
type Plan struct {
	ID          types.PlanID    `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	FreeForm    bool            `json:"free_form"`
	// AddOnsPurchasable is true only for the plan that sells add-ons individually.
	AddOnsPurchasable bool `json:"add_ons_purchasable"`
	// AllIncluded is true for the plan that bundles every add-on.
	AllIncluded bool `json:"all_included"`
}

// AddOn is an individually priced unlock.
type AddOn struct {
	ID          types.AddOnID     `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Bundled     bool              `json:"bundled"`
	Features    []types.FeatureID `json:"features"`
}

// Feature is a gated capability. Each feature maps to exactly one add-on.
type Feature struct {
	ID    types.FeatureID `json:"id"`
	Name  string          `json:"name"`
	AddOn types.AddOnID   `json:"add_on"`
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var plans = []Plan{
	{
		ID:          types.PlanEntry,
		Name:        "Entry",
		Description: "Pick a ready-made template and edit its text.",
		Price:       price("49.90"),
	},
	{
		ID:                types.PlanBuilder,
		Name:              "Builder",
		Description:       "Free-form builder; premium features are purchased individually.",
		Price:             price("79.90"),
		FreeForm:          true,
		AddOnsPurchasable: true,
	},
	{
		ID:          types.PlanBuilderFull,
		Name:        "Builder Full",
		Description: "Free-form builder with every premium feature included.",
		Price:       price("149.90"),
		FreeForm:    true,
		AllIncluded: true,
	},
}

var addOns = []AddOn{
	{
		ID:          types.AddOnPremiumPalette,
		Name:        "Premium palettes",
		Description: "Premium color palettes and a fully custom palette.",
		Price:       price("9.90"),
		Bundled:     true,
		Features:    []types.FeatureID{types.FeaturePremiumPalettes, types.FeatureCustomPalette},
	},
	{
		ID:          types.AddOnPremiumTypography,
		Name:        "Premium typography",
		Description: "Display font families.",
		Price:       price("9.90"),
		Bundled:     true,
		Features:    []types.FeatureID{types.FeaturePremiumTypography},
	},
	{
		ID:          types.AddOnPremiumVariants,
		Name:        "Premium layouts",
		Description: "Advanced section layouts and motion effects.",
		Price:       price("14.90"),
		Bundled:     true,
		Features:    []types.FeatureID{types.FeatureAdvancedLayouts, types.FeatureMotionEffects},
	},
	{
		ID:          types.AddOnPremiumChannels,
		Name:        "Premium channels",
		Description: "Up to five contact channels.",
		Price:       price("9.90"),
		Bundled:     true,
		Features:    []types.FeatureID{types.FeatureExtraChannels},
	},
	{
		ID:          types.AddOnPremiumCards,
		Name:        "Premium cards",
		Description: "Premium icon pack and images on service cards.",
		Price:       price("9.90"),
		Bundled:     true,
		Features:    []types.FeatureID{types.FeaturePremiumIcons, types.FeatureCardImages},
	},
	{
		ID:          types.AddOnExtraCards,
		Name:        "Extra service cards",
		Description: "Up to twenty service cards.",
		Price:       price("9.90"),
		Features:    []types.FeatureID{types.FeatureExtraCards},
	},
	{
		ID:          types.AddOnExtraSections,
		Name:        "Extra sections",
		Description: "Up to ten page sections.",
		Price:       price("9.90"),
		Features:    []types.FeatureID{types.FeatureExtraSections},
	},
	{
		ID:          types.AddOnFloatingCTA,
		Name:        "Floating button",
		Description: "Floating contact button with up to two channels.",
		Price:       price("9.90"),
		Features:    []types.FeatureID{types.FeatureFloatingButton},
	},
}

var features = []Feature{
	{ID: types.FeaturePremiumPalettes, Name: "Premium palettes", AddOn: types.AddOnPremiumPalette},
	{ID: types.FeatureCustomPalette, Name: "Custom palette", AddOn: types.AddOnPremiumPalette},
	{ID: types.FeaturePremiumTypography, Name: "Premium typography", AddOn: types.AddOnPremiumTypography},
	{ID: types.FeatureAdvancedLayouts, Name: "Advanced section layouts", AddOn: types.AddOnPremiumVariants},
	{ID: types.FeatureMotionEffects, Name: "Motion effects", AddOn: types.AddOnPremiumVariants},
	{ID: types.FeatureExtraChannels, Name: "Extra contact channels", AddOn: types.AddOnPremiumChannels},
	{ID: types.FeaturePremiumIcons, Name: "Premium icon pack", AddOn: types.AddOnPremiumCards},
	{ID: types.FeatureCardImages, Name: "Service card images", AddOn: types.AddOnPremiumCards},
	{ID: types.FeatureExtraCards, Name: "Extra service cards", AddOn: types.AddOnExtraCards},
	{ID: types.FeatureExtraSections, Name: "Extra sections", AddOn: types.AddOnExtraSections},
	{ID: types.FeatureFloatingButton, Name: "Floating action button", AddOn: types.AddOnFloatingCTA},
}

var (
	planIndex    = indexBy(plans, func(p Plan) types.PlanID { return p.ID })
	addOnIndex   = indexBy(addOns, func(a AddOn) types.AddOnID { return a.ID })
	featureIndex = indexBy(features, func(f Feature) types.FeatureID { return f.ID })
)

func indexBy[K comparable, V any](list []V, key func(V) K) map[K]int {
	m := make(map[K]int, len(list))
	for i, v := range list {
		m[key(v)] = i
	}
	return m
}

// Plans returns the selectable plans in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID returns the plan definition for id.
func PlanByID(id types.PlanID) (Plan, bool) {
	i, ok := planIndex[id]
	if !ok {
		return Plan{}, false
	}
	return plans[i], true
}

// AddOns returns every add-on in display order.
func AddOns() []AddOn {
	out := make([]AddOn, len(addOns))
	for i, a := range addOns {
		out[i] = a
		out[i].Features = append([]types.FeatureID(nil), a.Features...)
	}
	return out
}

// AddOnByID returns the add-on definition for id.
func AddOnByID(id types.AddOnID) (AddOn, bool) {
	i, ok := addOnIndex[id]
	if !ok {
		return AddOn{}, false
	}
	a := addOns[i]
	a.Features = append([]types.FeatureID(nil), a.Features...)
	return a, true
}

// IsBundled reports whether id is a bundled "section premium" add-on whose
// removal resets every field it gated.
func IsBundled(id types.AddOnID) bool {
	i, ok := addOnIndex[id]
	return ok && addOns[i].Bundled
}

// Features returns every gated feature.
func Features() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// FeatureAddOn returns the add-on a feature maps to.
func FeatureAddOn(id types.FeatureID) (types.AddOnID, bool) {
	i, ok := featureIndex[id]
	if !ok {
		return "", false
	}
	return features[i].AddOn, true
}
