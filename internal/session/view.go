package session

import (
	"sitewizard/internal/billing"
	"sitewizard/internal/entitlement"
	"sitewizard/internal/steps"
	"sitewizard/internal/types"
)

// View is a session together with everything derived from its
// configuration. Derived fields are recomputed on every read and never
// stored.
type View struct {
	SessionID    string                                      `json:"session_id"`
	Config       types.Configuration                         `json:"config"`
	Steps        []types.Step                                `json:"steps"`
	CurrentStep  types.Step                                  `json:"current_step"`
	Limits       types.Limits                                `json:"limits"`
	Quote        billing.Quote                               `json:"quote"`
	Entitlements map[types.FeatureID]types.EntitlementStatus `json:"entitlements"`
	Phase        types.Phase                                 `json:"phase"`
	Draft        *types.Draft                                `json:"draft,omitempty"`
	CanUndo      bool                                        `json:"can_undo"`
	Applied      bool                                        `json:"applied"`
}

// NewView derives the view of s.
func NewView(s *Session) *View {
	cfg := s.Config
	seq := steps.For(cfg.Plan)
	return &View{
		SessionID:    s.ID,
		Config:       cfg,
		Steps:        seq,
		CurrentStep:  seq[steps.Clamp(cfg.Plan, cfg.CurrentStep)],
		Limits:       billing.LimitsFor(cfg.Plan, cfg.AddOns),
		Quote:        billing.NewQuote(cfg.Plan, cfg.AddOns),
		Entitlements: entitlement.Snapshot(cfg.Plan, cfg.AddOns),
		Phase:        s.Phase,
		Draft:        s.Draft,
		CanUndo:      len(s.History) > 0,
	}
}
