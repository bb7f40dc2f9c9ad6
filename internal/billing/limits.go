// Package billing provides the plan limits, pricing, and limit enforcement of
// the site wizard.
package billing

import (
	"sitewizard/internal/types"
)

// limitRule is the step function shared by every numeric ceiling: a fixed
// value under entry and builder-full, and under builder a base value that
// rises to Boosted when the named add-on is owned.
type limitRule struct {
	Entry   int
	Base    int
	Boosted int
	Full    int
	AddOn   types.AddOnID
}

func (r limitRule) resolve(plan types.PlanID, owned []types.AddOnID) int {
	switch plan {
	case types.PlanBuilderFull:
		return r.Full
	case types.PlanBuilder:
		if owns(owned, r.AddOn) {
			return r.Boosted
		}
		return r.Base
	default:
		// Entry, no plan, and unknown plans fall back to the most
		// restrictive ceiling.
		return r.Entry
	}
}

// limitRules are the ceilings per collection:
//
//	| Collection       | entry | builder | + add-on         | builder-full |
//	|------------------|-------|---------|------------------|--------------|
//	| Service cards    | 4     | 4       | 20 extra-cards   | 20           |
//	| Sections         | 4     | 4       | 10 extra-sections| 10           |
//	| Contact channels | 2     | 2       | 5 premium-chan.  | 5            |
//	| Floating slots   | 0     | 0       | 2 floating-cta   | 2            |
var (
	serviceCardRule = limitRule{Entry: 4, Base: 4, Boosted: 20, Full: 20, AddOn: types.AddOnExtraCards}
	sectionRule     = limitRule{Entry: 4, Base: 4, Boosted: 10, Full: 10, AddOn: types.AddOnExtraSections}
	channelRule     = limitRule{Entry: 2, Base: 2, Boosted: 5, Full: 5, AddOn: types.AddOnPremiumChannels}
	floatingRule    = limitRule{Entry: 0, Base: 0, Boosted: 2, Full: 2, AddOn: types.AddOnFloatingCTA}
)

// ServiceCardLimit returns the maximum number of service cards.
func ServiceCardLimit(plan types.PlanID, owned []types.AddOnID) int {
	return serviceCardRule.resolve(plan, owned)
}

// SectionLimit returns the maximum number of enabled page sections.
func SectionLimit(plan types.PlanID, owned []types.AddOnID) int {
	return sectionRule.resolve(plan, owned)
}

// ContactChannelLimit returns the maximum number of selected contact channels.
func ContactChannelLimit(plan types.PlanID, owned []types.AddOnID) int {
	return channelRule.resolve(plan, owned)
}

// FloatingSlotLimit returns the maximum number of floating button channels.
func FloatingSlotLimit(plan types.PlanID, owned []types.AddOnID) int {
	return floatingRule.resolve(plan, owned)
}

// LimitsFor resolves all four ceilings at once.
func LimitsFor(plan types.PlanID, owned []types.AddOnID) types.Limits {
	return types.Limits{
		ServiceCards:    ServiceCardLimit(plan, owned),
		Sections:        SectionLimit(plan, owned),
		ContactChannels: ContactChannelLimit(plan, owned),
		FloatingSlots:   FloatingSlotLimit(plan, owned),
	}
}

func owns(owned []types.AddOnID, id types.AddOnID) bool {
	for _, o := range owned {
		if o == id {
			return true
		}
	}
	return false
}
