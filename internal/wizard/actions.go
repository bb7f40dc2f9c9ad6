package wizard

import (
	"strings"

	"sitewizard/internal/billing"
	"sitewizard/internal/catalog"
	"sitewizard/internal/entitlement"
	"sitewizard/internal/steps"
	"sitewizard/internal/types"
)

// ActionType is the wire name of an action.
type ActionType string

const (
	ActionSetPlan               ActionType = "set_plan"
	ActionConfirmPlan           ActionType = "confirm_plan"
	ActionSelectTemplate        ActionType = "select_template"
	ActionSetPalette            ActionType = "set_palette"
	ActionSetCustomColor        ActionType = "set_custom_color"
	ActionSetFont               ActionType = "set_font"
	ActionSetButtonShape        ActionType = "set_button_shape"
	ActionSetSectionVariant     ActionType = "set_section_variant"
	ActionSetMotion             ActionType = "set_motion"
	ActionToggleSection         ActionType = "toggle_section"
	ActionMoveSection           ActionType = "move_section"
	ActionAddServiceCard        ActionType = "add_service_card"
	ActionRemoveServiceCard     ActionType = "remove_service_card"
	ActionUpdateServiceCard     ActionType = "update_service_card"
	ActionToggleContactChannel  ActionType = "toggle_contact_channel"
	ActionSetChannelValue       ActionType = "set_channel_value"
	ActionSetFloatingEnabled    ActionType = "set_floating_enabled"
	ActionToggleFloatingChannel ActionType = "toggle_floating_channel"
	ActionToggleAddOn           ActionType = "toggle_add_on"
	ActionSetContent            ActionType = "set_content"
	ActionSetBusinessField      ActionType = "set_business_field"
	ActionSetImage              ActionType = "set_image"
	ActionNextStep              ActionType = "next_step"
	ActionPrevStep              ActionType = "prev_step"
	ActionGoToStep              ActionType = "go_to_step"
)

// --- Identity ---

// SetPlan replaces the configuration with the plan's defaults. Only the
// business identity fields and the current step survive. The step index is
// copied unclamped and may point past the end of a shorter sequence. View
// clamps it for display and the next navigation action clamps the stored
// value.
type SetPlan struct {
	Plan types.PlanID `json:"plan"`
}

func (SetPlan) Type() ActionType { return ActionSetPlan }

func (a SetPlan) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !a.Plan.IsKnown() {
		return cfg, false
	}
	next := Defaults(a.Plan)
	next.BusinessName = cfg.BusinessName
	next.BusinessCategory = cfg.BusinessCategory
	next.Subdomain = cfg.Subdomain
	next.Highlights = cfg.Highlights
	next.CurrentStep = cfg.CurrentStep
	return next, true
}

// ConfirmPlan marks the selected plan as confirmed.
type ConfirmPlan struct{}

func (ConfirmPlan) Type() ActionType { return ActionConfirmPlan }

func (ConfirmPlan) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !cfg.Plan.IsKnown() || cfg.Confirmed {
		return cfg, false
	}
	next := mutable(cfg)
	next.Confirmed = true
	return next, true
}

// SelectTemplate picks a ready-made template. Entry plan only. The template's
// sections and palette replace the current ones.
type SelectTemplate struct {
	TemplateID string `json:"template_id"`
}

func (SelectTemplate) Type() ActionType { return ActionSelectTemplate }

func (a SelectTemplate) apply(cfg types.Configuration) (types.Configuration, bool) {
	if cfg.Plan != types.PlanEntry {
		return cfg, false
	}
	tpl, ok := catalog.TemplateByID(a.TemplateID)
	if !ok {
		return cfg, false
	}
	next := mutable(cfg)
	next.TemplateID = tpl.ID
	next.Sections = tpl.Sections
	next.PaletteID = tpl.PaletteID
	return next, true
}

// --- Visual ---

type SetPalette struct {
	PaletteID string `json:"palette_id"`
}

func (SetPalette) Type() ActionType { return ActionSetPalette }

func (a SetPalette) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.PaletteID == cfg.PaletteID || !included(entitlement.PaletteStatus(a.PaletteID, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	next := mutable(cfg)
	next.PaletteID = a.PaletteID
	return next, true
}

// SetCustomColor overrides one role of the custom palette. An empty Value
// removes the override.
type SetCustomColor struct {
	Role  string `json:"role"`
	Value string `json:"value"`
}

func (SetCustomColor) Type() ActionType { return ActionSetCustomColor }

func (a SetCustomColor) apply(cfg types.Configuration) (types.Configuration, bool) {
	if cfg.PaletteID != catalog.CustomPaletteID || !unlocked(cfg, types.FeatureCustomPalette) {
		return cfg, false
	}
	if !catalog.IsColorRole(a.Role) || (a.Value != "" && !IsColor(a.Value)) {
		return cfg, false
	}
	next := mutable(cfg)
	if a.Value == "" {
		delete(next.CustomColors, a.Role)
	} else {
		next.CustomColors[a.Role] = a.Value
	}
	return next, true
}

type SetFont struct {
	FontFamily string `json:"font_family"`
}

func (SetFont) Type() ActionType { return ActionSetFont }

func (a SetFont) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.FontFamily == cfg.FontFamily || !included(entitlement.FontStatus(a.FontFamily, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	next := mutable(cfg)
	next.FontFamily = a.FontFamily
	return next, true
}

type SetButtonShape struct {
	Shape string `json:"shape"`
}

func (SetButtonShape) Type() ActionType { return ActionSetButtonShape }

func (a SetButtonShape) apply(cfg types.Configuration) (types.Configuration, bool) {
	opt, ok := catalog.ButtonShape(a.Shape)
	if !ok || a.Shape == cfg.ButtonShape || !included(entitlement.OptionStatus(opt, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	next := mutable(cfg)
	next.ButtonShape = a.Shape
	return next, true
}

// SetSectionVariant stores a layout for a section. Variants the user is not
// entitled to are never stored.
type SetSectionVariant struct {
	Section types.SectionID `json:"section"`
	Variant string          `json:"variant"`
}

func (SetSectionVariant) Type() ActionType { return ActionSetSectionVariant }

func (a SetSectionVariant) apply(cfg types.Configuration) (types.Configuration, bool) {
	if cfg.SectionVariants[a.Section] == a.Variant ||
		!included(entitlement.VariantStatus(a.Section, a.Variant, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	next := mutable(cfg)
	next.SectionVariants[a.Section] = a.Variant
	return next, true
}

type SetMotion struct {
	Motion string `json:"motion"`
}

func (SetMotion) Type() ActionType { return ActionSetMotion }

func (a SetMotion) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.Motion == cfg.Motion || !included(entitlement.MotionStatus(a.Motion, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	next := mutable(cfg)
	next.Motion = a.Motion
	return next, true
}

// --- Structure ---

// ToggleSection enables or disables a page section. Enabling is refused once
// the section limit is reached.
type ToggleSection struct {
	Section types.SectionID `json:"section"`
}

func (ToggleSection) Type() ActionType { return ActionToggleSection }

func (a ToggleSection) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !catalog.IsSection(a.Section) {
		return cfg, false
	}
	if cfg.HasSection(a.Section) {
		next := mutable(cfg)
		next.Sections = without(next.Sections, a.Section)
		return next, true
	}
	if len(cfg.Sections) >= billing.SectionLimit(cfg.Plan, cfg.AddOns) {
		return cfg, false
	}
	next := mutable(cfg)
	next.Sections = append(next.Sections, a.Section)
	return next, true
}

// MoveSection moves an enabled section to position Index.
type MoveSection struct {
	Section types.SectionID `json:"section"`
	Index   int             `json:"index"`
}

func (MoveSection) Type() ActionType { return ActionMoveSection }

func (a MoveSection) apply(cfg types.Configuration) (types.Configuration, bool) {
	from := indexOf(cfg.Sections, a.Section)
	if from < 0 || a.Index < 0 || a.Index >= len(cfg.Sections) || a.Index == from {
		return cfg, false
	}
	next := mutable(cfg)
	rest := without(next.Sections, a.Section)
	moved := make([]types.SectionID, 0, len(next.Sections))
	moved = append(moved, rest[:a.Index]...)
	moved = append(moved, a.Section)
	moved = append(moved, rest[a.Index:]...)
	next.Sections = moved
	return next, true
}

// AddServiceCard appends a default card. The reducer does not check the
// service card limit; callers consult billing.LimitEnforcer before dispatch.
type AddServiceCard struct{}

func (AddServiceCard) Type() ActionType { return ActionAddServiceCard }

func (AddServiceCard) apply(cfg types.Configuration) (types.Configuration, bool) {
	next := mutable(cfg)
	next.ServiceCards = append(next.ServiceCards, catalog.DefaultServiceCard())
	return next, true
}

type RemoveServiceCard struct {
	Index int `json:"index"`
}

func (RemoveServiceCard) Type() ActionType { return ActionRemoveServiceCard }

func (a RemoveServiceCard) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.Index < 0 || a.Index >= len(cfg.ServiceCards) {
		return cfg, false
	}
	next := mutable(cfg)
	next.ServiceCards = append(next.ServiceCards[:a.Index], next.ServiceCards[a.Index+1:]...)
	return next, true
}

// UpdateServiceCard patches the non-nil fields of the card at Index. A premium
// icon or a card image without the matching entitlement rejects the whole
// patch.
type UpdateServiceCard struct {
	Index       int     `json:"index"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IconID      *string `json:"icon_id,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (UpdateServiceCard) Type() ActionType { return ActionUpdateServiceCard }

func (a UpdateServiceCard) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.Index < 0 || a.Index >= len(cfg.ServiceCards) {
		return cfg, false
	}
	if a.Title == nil && a.Description == nil && a.IconID == nil && a.ImageURL == nil {
		return cfg, false
	}
	if a.IconID != nil && !included(entitlement.IconStatus(*a.IconID, cfg.Plan, cfg.AddOns)) {
		return cfg, false
	}
	if a.ImageURL != nil && *a.ImageURL != "" && !unlocked(cfg, types.FeatureCardImages) {
		return cfg, false
	}

	next := mutable(cfg)
	card := &next.ServiceCards[a.Index]
	if a.Title != nil {
		card.Title = *a.Title
	}
	if a.Description != nil {
		card.Description = *a.Description
	}
	if a.IconID != nil {
		card.IconID = *a.IconID
	}
	if a.ImageURL != nil {
		card.ImageURL = *a.ImageURL
	}
	return next, true
}

// ToggleContactChannel selects or deselects a channel. Deselecting also drops
// the channel from the floating button and deletes its destination value.
type ToggleContactChannel struct {
	Channel types.ChannelID `json:"channel"`
}

func (ToggleContactChannel) Type() ActionType { return ActionToggleContactChannel }

func (a ToggleContactChannel) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !catalog.IsChannel(a.Channel) {
		return cfg, false
	}
	if cfg.HasContactChannel(a.Channel) {
		next := mutable(cfg)
		next.ContactChannels = without(next.ContactChannels, a.Channel)
		next.FloatingChannels = without(next.FloatingChannels, a.Channel)
		delete(next.ChannelValues, a.Channel)
		return next, true
	}
	if len(cfg.ContactChannels) >= billing.ContactChannelLimit(cfg.Plan, cfg.AddOns) {
		return cfg, false
	}
	next := mutable(cfg)
	next.ContactChannels = append(next.ContactChannels, a.Channel)
	return next, true
}

// SetChannelValue stores the destination (number, address, handle) of a
// selected channel. An empty Value deletes it. Format validation happens
// before dispatch.
type SetChannelValue struct {
	Channel types.ChannelID `json:"channel"`
	Value   string          `json:"value"`
}

func (SetChannelValue) Type() ActionType { return ActionSetChannelValue }

func (a SetChannelValue) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !cfg.HasContactChannel(a.Channel) {
		return cfg, false
	}
	next := mutable(cfg)
	if a.Value == "" {
		delete(next.ChannelValues, a.Channel)
	} else {
		next.ChannelValues[a.Channel] = a.Value
	}
	return next, true
}

// SetFloatingEnabled turns the floating contact button on or off. Turning it
// on with no floating channels picks the first selected contact channel.
type SetFloatingEnabled struct {
	Enabled bool `json:"enabled"`
}

func (SetFloatingEnabled) Type() ActionType { return ActionSetFloatingEnabled }

func (a SetFloatingEnabled) apply(cfg types.Configuration) (types.Configuration, bool) {
	if a.Enabled == cfg.FloatingEnabled {
		return cfg, false
	}
	if a.Enabled && !unlocked(cfg, types.FeatureFloatingButton) {
		return cfg, false
	}
	next := mutable(cfg)
	next.FloatingEnabled = a.Enabled
	if a.Enabled && len(next.FloatingChannels) == 0 && len(next.ContactChannels) > 0 &&
		billing.FloatingSlotLimit(next.Plan, next.AddOns) > 0 {
		next.FloatingChannels = []types.ChannelID{next.ContactChannels[0]}
	}
	return next, true
}

// ToggleFloatingChannel adds or removes a selected contact channel from the
// floating button.
type ToggleFloatingChannel struct {
	Channel types.ChannelID `json:"channel"`
}

func (ToggleFloatingChannel) Type() ActionType { return ActionToggleFloatingChannel }

func (a ToggleFloatingChannel) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !cfg.HasContactChannel(a.Channel) {
		return cfg, false
	}
	if cfg.HasFloatingChannel(a.Channel) {
		next := mutable(cfg)
		next.FloatingChannels = without(next.FloatingChannels, a.Channel)
		return next, true
	}
	if len(cfg.FloatingChannels) >= billing.FloatingSlotLimit(cfg.Plan, cfg.AddOns) {
		return cfg, false
	}
	next := mutable(cfg)
	next.FloatingChannels = append(next.FloatingChannels, a.Channel)
	return next, true
}

// --- Entitlements ---

// ToggleAddOn buys or drops an add-on. Builder plan only.
//
// Adding only grows the owned set. Dropping a bundled add-on also resets
// every field it gated (see freeDefaults). Dropping any add-on clamps the
// repeatable collections to the new limits.
type ToggleAddOn struct {
	AddOn types.AddOnID `json:"add_on"`
}

func (ToggleAddOn) Type() ActionType { return ActionToggleAddOn }

func (a ToggleAddOn) apply(cfg types.Configuration) (types.Configuration, bool) {
	if cfg.Plan != types.PlanBuilder {
		return cfg, false
	}
	if _, ok := catalog.AddOnByID(a.AddOn); !ok {
		return cfg, false
	}
	next := mutable(cfg)
	if !cfg.HasAddOn(a.AddOn) {
		next.AddOns = append(next.AddOns, a.AddOn)
		return next, true
	}
	next.AddOns = without(next.AddOns, a.AddOn)
	if catalog.IsBundled(a.AddOn) {
		resetToFreeDefaults(&next, a.AddOn)
	}
	clampToLimits(&next)
	return next, true
}

// --- Content ---

type SetContent struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (SetContent) Type() ActionType { return ActionSetContent }

func (a SetContent) apply(cfg types.Configuration) (types.Configuration, bool) {
	if strings.TrimSpace(a.Key) == "" {
		return cfg, false
	}
	next := mutable(cfg)
	next.Content[a.Key] = a.Value
	return next, true
}

// SetBusinessField overwrites a business identity field.
type SetBusinessField struct {
	Field types.BusinessField `json:"field"`
	Value string              `json:"value"`
}

func (SetBusinessField) Type() ActionType { return ActionSetBusinessField }

func (a SetBusinessField) apply(cfg types.Configuration) (types.Configuration, bool) {
	next := mutable(cfg)
	switch a.Field {
	case types.BusinessName:
		next.BusinessName = a.Value
	case types.BusinessCategory:
		next.BusinessCategory = a.Value
	case types.BusinessSubdomain:
		next.Subdomain = a.Value
	case types.BusinessHighlights:
		next.Highlights = a.Value
		highlightsContentAlias(&next)
	default:
		return cfg, false
	}
	return next, true
}

// highlightsContentAlias mirrors the highlights field into the content map
// under the slogan key. This is the only field written to two places.
func highlightsContentAlias(cfg *types.Configuration) {
	cfg.Content[catalog.ContentSlogan] = cfg.Highlights
}

// SetImage stores an uploaded asset URL in a slot. An empty URL clears it.
type SetImage struct {
	Slot types.ImageSlot `json:"slot"`
	URL  string          `json:"url"`
}

func (SetImage) Type() ActionType { return ActionSetImage }

func (a SetImage) apply(cfg types.Configuration) (types.Configuration, bool) {
	if !a.Slot.IsKnown() {
		return cfg, false
	}
	next := mutable(cfg)
	if a.URL == "" {
		delete(next.Images, a.Slot)
	} else {
		next.Images[a.Slot] = a.URL
	}
	return next, true
}

// --- Navigation ---

type NextStep struct{}

func (NextStep) Type() ActionType { return ActionNextStep }

func (NextStep) apply(cfg types.Configuration) (types.Configuration, bool) {
	return goTo(cfg, cfg.CurrentStep+1)
}

type PrevStep struct{}

func (PrevStep) Type() ActionType { return ActionPrevStep }

func (PrevStep) apply(cfg types.Configuration) (types.Configuration, bool) {
	return goTo(cfg, cfg.CurrentStep-1)
}

type GoToStep struct {
	Index int `json:"index"`
}

func (GoToStep) Type() ActionType { return ActionGoToStep }

func (a GoToStep) apply(cfg types.Configuration) (types.Configuration, bool) {
	return goTo(cfg, a.Index)
}

func goTo(cfg types.Configuration, index int) (types.Configuration, bool) {
	target := steps.Clamp(cfg.Plan, index)
	if target == cfg.CurrentStep {
		return cfg, false
	}
	next := mutable(cfg)
	next.CurrentStep = target
	return next, true
}
