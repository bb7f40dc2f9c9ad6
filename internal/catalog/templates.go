package catalog

import "sitewizard/internal/types"

// Template is a ready-made site layout offered under the entry plan.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Sections    []types.SectionID `json:"sections"`
	PaletteID   string            `json:"palette_id"`
}

// Templates never enable more sections than the entry plan allows.
var templates = []Template{
	{
		ID:          "T1",
		Name:        "Storefront",
		Description: "Hero, services, gallery and contact for local shops.",
		Sections:    []types.SectionID{types.SectionHero, types.SectionServices, types.SectionGallery, types.SectionContact},
		PaletteID:   DefaultPalette,
	},
	{
		ID:          "T2",
		Name:        "Professional",
		Description: "About, services and testimonials for independent professionals.",
		Sections:    []types.SectionID{types.SectionHero, types.SectionAbout, types.SectionTestimonials, types.SectionContact},
		PaletteID:   "graphite",
	},
	{
		ID:          "T3",
		Name:        "Studio",
		Description: "Portfolio-first layout for creative studios.",
		Sections:    []types.SectionID{types.SectionHero, types.SectionGallery, types.SectionTeam, types.SectionContact},
		PaletteID:   "sunset",
	},
	{
		ID:          "T4",
		Name:        "Clinic",
		Description: "Services, FAQ and location for appointment-based businesses.",
		Sections:    []types.SectionID{types.SectionHero, types.SectionServices, types.SectionFAQ, types.SectionMap},
		PaletteID:   "forest",
	},
}

// Templates returns the entry plan templates in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = t
		out[i].Sections = append([]types.SectionID(nil), t.Sections...)
	}
	return out
}

// TemplateByID looks up a template.
func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			t.Sections = append([]types.SectionID(nil), t.Sections...)
			return t, true
		}
	}
	return Template{}, false
}
