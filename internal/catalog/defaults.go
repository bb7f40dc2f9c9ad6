package catalog

import "sitewizard/internal/types"

// Content keys with a documented meaning.
const (
	ContentHeroTitle      = "hero_title"
	ContentHeroSubtitle   = "hero_subtitle"
	ContentAboutTitle     = "about_title"
	ContentAboutText      = "about_text"
	ContentServicesTitle  = "services_title"
	ContentContactTitle   = "contact_title"
	ContentFooterText     = "footer_text"
	ContentSEOTitle       = "seo_title"
	ContentSEODescription = "seo_description"
	// ContentSlogan mirrors the business highlights field.
	ContentSlogan = "slogan"
)

var defaultContent = map[string]string{
	ContentHeroTitle:      "Welcome",
	ContentHeroSubtitle:   "",
	ContentAboutTitle:     "About us",
	ContentAboutText:      "",
	ContentServicesTitle:  "Our services",
	ContentContactTitle:   "Get in touch",
	ContentFooterText:     "",
	ContentSEOTitle:       "",
	ContentSEODescription: "",
}

var defaultSections = []types.SectionID{
	types.SectionHero,
	types.SectionAbout,
	types.SectionServices,
	types.SectionContact,
}

var defaultChannels = []types.ChannelID{
	types.ChannelWhatsApp,
	types.ChannelEmail,
}

// DefaultContent returns a fresh copy of the default copy fields.
func DefaultContent() map[string]string {
	out := make(map[string]string, len(defaultContent))
	for k, v := range defaultContent {
		out[k] = v
	}
	return out
}

// DefaultSections returns the sections enabled on a fresh configuration.
func DefaultSections() []types.SectionID {
	return append([]types.SectionID(nil), defaultSections...)
}

// DefaultContactChannels returns the contact channels selected on a fresh
// configuration.
func DefaultContactChannels() []types.ChannelID {
	return append([]types.ChannelID(nil), defaultChannels...)
}

// DefaultSectionVariants returns the free default layout of every section.
func DefaultSectionVariants() map[types.SectionID]string {
	out := make(map[types.SectionID]string, len(sections))
	for _, s := range sections {
		out[s] = DefaultVariant(s)
	}
	return out
}

// DefaultServiceCard is the value appended by "add service card".
func DefaultServiceCard() types.ServiceCard {
	return types.ServiceCard{IconID: DefaultIcon}
}
