// Package steps sequences the wizard. The selected plan decides which steps
// exist, not only what they contain.
package steps

import "sitewizard/internal/types"

var (
	leading = []types.Step{
		{ID: types.StepIdentity, Title: "Your business"},
		{ID: types.StepPlan, Title: "Choose a plan"},
	}

	templateFlow = []types.Step{
		{ID: types.StepTemplate, Title: "Pick a template"},
		{ID: types.StepTemplateContent, Title: "Edit the text"},
		{ID: types.StepFinalize, Title: "Review and publish"},
	}

	builderFlow = []types.Step{
		{ID: types.StepStyle, Title: "Style"},
		{ID: types.StepStructure, Title: "Structure"},
		{ID: types.StepContent, Title: "Content"},
		{ID: types.StepFinalize, Title: "Review and publish"},
	}
)

// For returns the ordered steps for plan. The identity and plan steps are
// always first. With no plan (or an unknown one) only those two exist.
func For(plan types.PlanID) []types.Step {
	var tail []types.Step
	switch plan {
	case types.PlanEntry:
		tail = templateFlow
	case types.PlanBuilder, types.PlanBuilderFull:
		tail = builderFlow
	}

	out := make([]types.Step, 0, len(leading)+len(tail))
	out = append(out, leading...)
	return append(out, tail...)
}

// Count returns len(For(plan)).
func Count(plan types.PlanID) int {
	return len(For(plan))
}

// IndexOf returns the position of id in the plan's sequence, or -1.
func IndexOf(plan types.PlanID, id types.StepID) int {
	for i, s := range For(plan) {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Clamp bounds index to [0, Count(plan)-1].
func Clamp(plan types.PlanID, index int) int {
	last := Count(plan) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	return index
}
