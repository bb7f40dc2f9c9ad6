package billing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewizard/internal/types"
)

func cardsConfig(plan types.PlanID, n int, owned ...types.AddOnID) types.Configuration {
	cfg := types.Configuration{Plan: plan, AddOns: owned}
	for i := 0; i < n; i++ {
		cfg.ServiceCards = append(cfg.ServiceCards, types.ServiceCard{IconID: "star"})
	}
	return cfg
}

func TestCheckLimit_UnderLimit(t *testing.T) {
	enforcer := NewLimitEnforcer()

	err := enforcer.CheckLimit(cardsConfig(types.PlanBuilder, 3), ResourceServiceCards, 1)
	assert.NoError(t, err)
}

func TestCheckLimit_AtLimit(t *testing.T) {
	enforcer := NewLimitEnforcer()

	err := enforcer.CheckLimit(cardsConfig(types.PlanBuilder, 4), ResourceServiceCards, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeLimitServiceCards, appErr.Code)
	assert.Equal(t, 4, appErr.Details["limit"])
	assert.Equal(t, 4, appErr.Details["current"])
	assert.Equal(t, string(types.AddOnExtraCards), appErr.Details["upgrade"])
	assert.Equal(t, 403, appErr.HTTPStatus())
}

func TestCheckLimit_ExtraCardsRaisesCeiling(t *testing.T) {
	enforcer := NewLimitEnforcer()

	err := enforcer.CheckLimit(cardsConfig(types.PlanBuilder, 4, types.AddOnExtraCards), ResourceServiceCards, 1)
	assert.NoError(t, err)

	err = enforcer.CheckLimit(cardsConfig(types.PlanBuilder, 20, types.AddOnExtraCards), ResourceServiceCards, 1)
	assert.Error(t, err)
}

func TestCheckLimit_UnknownResource(t *testing.T) {
	err := NewLimitEnforcer().CheckLimit(cardsConfig(types.PlanBuilder, 0), "widgets", 1)
	require.Error(t, err)

	var appErr *types.AppError
	assert.False(t, errors.As(err, &appErr))
}
