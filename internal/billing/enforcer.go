package billing

import (
	"fmt"

	"sitewizard/internal/types"
)

// ResourceType names a repeatable collection whose growth the caller must
// check before dispatching an "add" action.
type ResourceType string

const (
	ResourceServiceCards ResourceType = "service_cards"
)

// LimitEnforcer checks plan limits before a collection grows.
type LimitEnforcer interface {
	// CheckLimit verifies whether count more items of resource fit under the
	// ceiling for cfg's plan and add-ons. Returns nil if allowed, or an
	// AppError with a limit_ code otherwise.
	CheckLimit(cfg types.Configuration, resource ResourceType, count int) error
}

type staticEnforcer struct{}

// NewLimitEnforcer returns the LimitEnforcer backed by the static limit table.
func NewLimitEnforcer() LimitEnforcer {
	return staticEnforcer{}
}

func (staticEnforcer) CheckLimit(cfg types.Configuration, resource ResourceType, count int) error {
	switch resource {
	case ResourceServiceCards:
		limit := ServiceCardLimit(cfg.Plan, cfg.AddOns)
		current := len(cfg.ServiceCards)
		if current+count > limit {
			return types.NewAppErrorWithDetails(
				types.ErrCodeLimitServiceCards,
				fmt.Sprintf("service card limit reached (%d of %d)", current, limit),
				nil,
				map[string]any{
					"current": current,
					"limit":   limit,
					"upgrade": upgradeHint(cfg.Plan),
				},
			)
		}
		return nil
	default:
		return fmt.Errorf("unknown resource type %q", resource)
	}
}

// upgradeHint names the purchase that would raise the service card ceiling,
// or "" when none exists from the current plan.
func upgradeHint(plan types.PlanID) string {
	switch plan {
	case types.PlanBuilder:
		return string(types.AddOnExtraCards)
	case types.PlanEntry:
		return string(types.PlanBuilder)
	default:
		return ""
	}
}
