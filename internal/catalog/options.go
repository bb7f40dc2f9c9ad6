package catalog

import "sitewizard/internal/types"

// Option is a selectable visual choice. Premium options are gated by Feature.
type Option struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Premium bool            `json:"premium"`
	Feature types.FeatureID `json:"feature,omitempty"`
}

// CustomPaletteID is the palette id that enables per-role color overrides.
const CustomPaletteID = "custom"

// Free defaults.
const (
	DefaultPalette     = "ocean"
	DefaultFont        = "inter"
	DefaultButtonShape = "rounded"
	DefaultMotion      = "none"
	DefaultIcon        = "star"
)

func free(id, name string) Option { return Option{ID: id, Name: name} }

func premium(id, name string, f types.FeatureID) Option {
	return Option{ID: id, Name: name, Premium: true, Feature: f}
}

var palettes = []Option{
	free(DefaultPalette, "Ocean"),
	free("forest", "Forest"),
	free("sunset", "Sunset"),
	free("graphite", "Graphite"),
	premium("aurora", "Aurora", types.FeaturePremiumPalettes),
	premium("noir", "Noir", types.FeaturePremiumPalettes),
	premium("pastel", "Pastel", types.FeaturePremiumPalettes),
	premium(CustomPaletteID, "Custom", types.FeatureCustomPalette),
}

var fonts = []Option{
	free(DefaultFont, "Inter"),
	free("roboto", "Roboto"),
	free("lora", "Lora"),
	premium("playfair", "Playfair Display", types.FeaturePremiumTypography),
	premium("montserrat", "Montserrat", types.FeaturePremiumTypography),
	premium("space-grotesk", "Space Grotesk", types.FeaturePremiumTypography),
}

var buttonShapes = []Option{
	free(DefaultButtonShape, "Rounded"),
	free("square", "Square"),
	free("pill", "Pill"),
}

var motionStyles = []Option{
	free(DefaultMotion, "None"),
	free("fade", "Fade"),
	premium("slide", "Slide", types.FeatureMotionEffects),
	premium("parallax", "Parallax", types.FeatureMotionEffects),
}

var icons = []Option{
	free(DefaultIcon, "Star"),
	free("check", "Check"),
	free("heart", "Heart"),
	free("phone", "Phone"),
	free("clock", "Clock"),
	free("tool", "Tool"),
	premium("crown", "Crown", types.FeaturePremiumIcons),
	premium("diamond", "Diamond", types.FeaturePremiumIcons),
	premium("rocket", "Rocket", types.FeaturePremiumIcons),
	premium("leaf", "Leaf", types.FeaturePremiumIcons),
}

// sectionVariants lists the layouts per section. The first entry of each list
// is the free default.
var sectionVariants = map[types.SectionID][]Option{
	types.SectionHero: {
		free("hero-classic", "Classic"),
		free("hero-split", "Split"),
		premium("hero-video", "Video background", types.FeatureAdvancedLayouts),
		premium("hero-parallax", "Parallax", types.FeatureAdvancedLayouts),
	},
	types.SectionAbout: {
		free("about-text", "Text"),
		free("about-image-left", "Image left"),
		premium("about-timeline", "Timeline", types.FeatureAdvancedLayouts),
	},
	types.SectionServices: {
		free("services-grid", "Grid"),
		free("services-list", "List"),
		premium("services-carousel", "Carousel", types.FeatureAdvancedLayouts),
		premium("services-masonry", "Masonry", types.FeatureAdvancedLayouts),
	},
	types.SectionGallery: {
		free("gallery-grid", "Grid"),
		free("gallery-slider", "Slider"),
		premium("gallery-lightbox", "Lightbox", types.FeatureAdvancedLayouts),
	},
	types.SectionTestimonials: {
		free("testimonials-cards", "Cards"),
		free("testimonials-quote", "Quote"),
		premium("testimonials-carousel", "Carousel", types.FeatureAdvancedLayouts),
	},
	types.SectionTeam: {
		free("team-grid", "Grid"),
		free("team-list", "List"),
		premium("team-spotlight", "Spotlight", types.FeatureAdvancedLayouts),
	},
	types.SectionFAQ: {
		free("faq-accordion", "Accordion"),
		free("faq-columns", "Columns"),
		premium("faq-tabs", "Tabs", types.FeatureAdvancedLayouts),
	},
	types.SectionPricing: {
		free("pricing-table", "Table"),
		free("pricing-cards", "Cards"),
		premium("pricing-toggle", "Monthly/yearly toggle", types.FeatureAdvancedLayouts),
	},
	types.SectionMap: {
		free("map-embed", "Embedded map"),
		free("map-address", "Address card"),
		premium("map-fullwidth", "Full width", types.FeatureAdvancedLayouts),
	},
	types.SectionContact: {
		free("contact-buttons", "Buttons"),
		free("contact-form", "Form"),
		premium("contact-split", "Split with map", types.FeatureAdvancedLayouts),
		premium("contact-cta-banner", "Call-to-action banner", types.FeatureAdvancedLayouts),
	},
}

// sections lists every page section in canonical order.
var sections = []types.SectionID{
	types.SectionHero,
	types.SectionAbout,
	types.SectionServices,
	types.SectionGallery,
	types.SectionTestimonials,
	types.SectionTeam,
	types.SectionFAQ,
	types.SectionPricing,
	types.SectionMap,
	types.SectionContact,
}

var channels = []types.ChannelID{
	types.ChannelWhatsApp,
	types.ChannelPhone,
	types.ChannelEmail,
	types.ChannelInstagram,
	types.ChannelFacebook,
	types.ChannelTelegram,
	types.ChannelLinkedIn,
	types.ChannelTikTok,
}

// colorRoles are the palette roles a custom palette may override.
var colorRoles = []string{"primary", "secondary", "accent", "background", "text"}

func copyOptions(list []Option) []Option {
	out := make([]Option, len(list))
	copy(out, list)
	return out
}

func findOption(list []Option, id string) (Option, bool) {
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func Palettes() []Option     { return copyOptions(palettes) }
func Fonts() []Option        { return copyOptions(fonts) }
func ButtonShapes() []Option { return copyOptions(buttonShapes) }
func MotionStyles() []Option { return copyOptions(motionStyles) }
func Icons() []Option        { return copyOptions(icons) }

func Palette(id string) (Option, bool)     { return findOption(palettes, id) }
func Font(id string) (Option, bool)        { return findOption(fonts, id) }
func ButtonShape(id string) (Option, bool) { return findOption(buttonShapes, id) }
func Motion(id string) (Option, bool)      { return findOption(motionStyles, id) }
func Icon(id string) (Option, bool)        { return findOption(icons, id) }

// Variants returns the layout variants of a section, or nil for an unknown
// section.
func Variants(s types.SectionID) []Option {
	list, ok := sectionVariants[s]
	if !ok {
		return nil
	}
	return copyOptions(list)
}

// Variant looks up a layout variant of a section.
func Variant(s types.SectionID, id string) (Option, bool) {
	return findOption(sectionVariants[s], id)
}

// DefaultVariant returns the free default layout of a section.
func DefaultVariant(s types.SectionID) string {
	list := sectionVariants[s]
	if len(list) == 0 {
		return ""
	}
	return list[0].ID
}

// Sections returns every page section in canonical order.
func Sections() []types.SectionID {
	return append([]types.SectionID(nil), sections...)
}

// IsSection reports whether s is a known page section.
func IsSection(s types.SectionID) bool {
	_, ok := sectionVariants[s]
	return ok
}

// Channels returns every contact channel.
func Channels() []types.ChannelID {
	return append([]types.ChannelID(nil), channels...)
}

// IsChannel reports whether ch is a known contact channel.
func IsChannel(ch types.ChannelID) bool {
	for _, c := range channels {
		if c == ch {
			return true
		}
	}
	return false
}

// ColorRoles returns the palette roles a custom palette may override.
func ColorRoles() []string {
	return append([]string(nil), colorRoles...)
}

// IsColorRole reports whether role is a custom palette role.
func IsColorRole(role string) bool {
	for _, r := range colorRoles {
		if r == role {
			return true
		}
	}
	return false
}
