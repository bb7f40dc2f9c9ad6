package types

// ServiceCard is one entry of the "services" section.
type ServiceCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IconID      string `json:"icon_id"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Configuration is the aggregate the wizard assembles. It is treated as an
// immutable value: transitions return a fresh copy (see Clone) and never
// write through to the caller's maps or slices.
type Configuration struct {
	// Identity
	Plan       PlanID `json:"plan"`
	Confirmed  bool   `json:"confirmed"`
	TemplateID string `json:"template_id,omitempty"`

	// Visual
	PaletteID       string               `json:"palette_id"`
	CustomColors    map[string]string    `json:"custom_colors"`
	FontFamily      string               `json:"font_family"`
	ButtonShape     string               `json:"button_shape"`
	SectionVariants map[SectionID]string `json:"section_variants"`
	Motion          string               `json:"motion"`

	// Structure
	Sections         []SectionID          `json:"sections"`
	ServiceCards     []ServiceCard        `json:"service_cards"`
	ContactChannels  []ChannelID          `json:"contact_channels"`
	FloatingEnabled  bool                 `json:"floating_enabled"`
	FloatingChannels []ChannelID          `json:"floating_channels"`
	ChannelValues    map[ChannelID]string `json:"channel_values"`

	// Entitlements. Only meaningful under PlanBuilder.
	AddOns []AddOnID `json:"add_ons"`

	// Free-text copy keyed by field name (titles, descriptions, footer, SEO).
	Content map[string]string `json:"content"`

	// Business identity. Survives plan changes.
	BusinessName     string `json:"business_name"`
	BusinessCategory string `json:"business_category"`
	Subdomain        string `json:"subdomain"`
	Highlights       string `json:"highlights"`

	// Uploaded asset URLs keyed by slot.
	Images map[ImageSlot]string `json:"images"`

	CurrentStep int `json:"current_step"`
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	out := c
	out.CustomColors = cloneMap(c.CustomColors)
	out.SectionVariants = cloneMap(c.SectionVariants)
	out.ChannelValues = cloneMap(c.ChannelValues)
	out.Content = cloneMap(c.Content)
	out.Images = cloneMap(c.Images)
	out.Sections = cloneSlice(c.Sections)
	out.ServiceCards = cloneSlice(c.ServiceCards)
	out.ContactChannels = cloneSlice(c.ContactChannels)
	out.FloatingChannels = cloneSlice(c.FloatingChannels)
	out.AddOns = cloneSlice(c.AddOns)
	return out
}

// HasAddOn reports whether the add-on id is in the owned set.
func (c Configuration) HasAddOn(id AddOnID) bool {
	return containsID(c.AddOns, id)
}

// HasContactChannel reports whether ch is among the selected contact channels.
func (c Configuration) HasContactChannel(ch ChannelID) bool {
	return containsID(c.ContactChannels, ch)
}

// HasFloatingChannel reports whether ch is among the floating button channels.
func (c Configuration) HasFloatingChannel(ch ChannelID) bool {
	return containsID(c.FloatingChannels, ch)
}

// HasSection reports whether s is enabled.
func (c Configuration) HasSection(s SectionID) bool {
	return containsID(c.Sections, s)
}

// Limits are the numeric ceilings for the repeatable collections of a
// configuration.
type Limits struct {
	ServiceCards    int `json:"service_cards"`
	Sections        int `json:"sections"`
	ContactChannels int `json:"contact_channels"`
	FloatingSlots   int `json:"floating_slots"`
}

// Step describes one wizard step.
type Step struct {
	ID    StepID `json:"id"`
	Title string `json:"title"`
}

func containsID[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
