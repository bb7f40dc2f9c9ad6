// Package entitlement resolves whether a gated feature is included,
// purchasable, or blocked for a given plan and set of owned add-ons.
//
// Every function is total: unknown plans resolve like the entry plan and
// unknown features resolve to blocked.
package entitlement

import (
	"sitewizard/internal/catalog"
	"sitewizard/internal/types"
)

// Status returns the entitlement status of feature under (plan, owned).
//
//   - builder-full: always included.
//   - builder: included when the feature's add-on is owned, else purchasable.
//   - entry, no plan, or an unknown plan: blocked.
func Status(feature types.FeatureID, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	addOn, ok := catalog.FeatureAddOn(feature)
	if !ok {
		return types.StatusBlocked
	}
	return addOnStatus(addOn, plan, owned)
}

func addOnStatus(addOn types.AddOnID, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	switch plan {
	case types.PlanBuilderFull:
		return types.StatusIncluded
	case types.PlanBuilder:
		if owns(owned, addOn) {
			return types.StatusIncluded
		}
		return types.StatusPurchasable
	default:
		return types.StatusBlocked
	}
}

// Unlocked reports whether id resolves to included. id may be a feature id
// or, when no feature carries that id, a raw add-on id whose ownership is
// checked directly. Ids that are neither are never unlocked.
func Unlocked(id string, plan types.PlanID, owned []types.AddOnID) bool {
	if _, ok := catalog.FeatureAddOn(types.FeatureID(id)); ok {
		return Status(types.FeatureID(id), plan, owned) == types.StatusIncluded
	}
	addOn := types.AddOnID(id)
	if _, ok := catalog.AddOnByID(addOn); !ok {
		return false
	}
	return addOnStatus(addOn, plan, owned) == types.StatusIncluded
}

// FeatureUnlocked is Unlocked for a typed feature id.
func FeatureUnlocked(feature types.FeatureID, plan types.PlanID, owned []types.AddOnID) bool {
	return Status(feature, plan, owned) == types.StatusIncluded
}

// Snapshot resolves every catalog feature at once.
func Snapshot(plan types.PlanID, owned []types.AddOnID) map[types.FeatureID]types.EntitlementStatus {
	features := catalog.Features()
	out := make(map[types.FeatureID]types.EntitlementStatus, len(features))
	for _, f := range features {
		out[f.ID] = Status(f.ID, plan, owned)
	}
	return out
}

// OptionStatus resolves a catalog option. Free options are always included.
func OptionStatus(opt catalog.Option, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	if !opt.Premium {
		return types.StatusIncluded
	}
	return Status(opt.Feature, plan, owned)
}

// PaletteStatus resolves a palette id. Unknown ids are blocked.
func PaletteStatus(id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	return lookupStatus(catalog.Palette, id, plan, owned)
}

// FontStatus resolves a font family id. Unknown ids are blocked.
func FontStatus(id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	return lookupStatus(catalog.Font, id, plan, owned)
}

// MotionStatus resolves a motion style id. Unknown ids are blocked.
func MotionStatus(id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	return lookupStatus(catalog.Motion, id, plan, owned)
}

// IconStatus resolves a service card icon id. Unknown ids are blocked.
func IconStatus(id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	return lookupStatus(catalog.Icon, id, plan, owned)
}

// VariantStatus resolves a section layout variant. Unknown sections or
// variants are blocked.
func VariantStatus(section types.SectionID, id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	opt, ok := catalog.Variant(section, id)
	if !ok {
		return types.StatusBlocked
	}
	return OptionStatus(opt, plan, owned)
}

func lookupStatus(lookup func(string) (catalog.Option, bool), id string, plan types.PlanID, owned []types.AddOnID) types.EntitlementStatus {
	opt, ok := lookup(id)
	if !ok {
		return types.StatusBlocked
	}
	return OptionStatus(opt, plan, owned)
}

func owns(owned []types.AddOnID, id types.AddOnID) bool {
	for _, o := range owned {
		if o == id {
			return true
		}
	}
	return false
}
