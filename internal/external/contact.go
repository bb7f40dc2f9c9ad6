package external

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"sitewizard/internal/types"
)

var (
	instagramHandleRE = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
	tiktokHandleRE    = regexp.MustCompile(`^[A-Za-z0-9._]{2,24}$`)
	telegramHandleRE  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{4,31}$`)
)

// profileHosts lists the hosts accepted for URL-based channels, and for
// handle channels given as a profile link.
var profileHosts = map[types.ChannelID][]string{
	types.ChannelFacebook:  {"facebook.com", "fb.com"},
	types.ChannelLinkedIn:  {"linkedin.com"},
	types.ChannelInstagram: {"instagram.com"},
	types.ChannelTikTok:    {"tiktok.com"},
	types.ChannelTelegram:  {"t.me", "telegram.me"},
}

// ContactValidator checks contact destinations before they reach the
// configuration. Phone numbers without a country prefix are read in
// DefaultRegion.
type ContactValidator struct {
	defaultRegion string
	validate      *validator.Validate
}

// NewContactValidator returns a validator; region is an ISO 3166 code such as
// "US".
func NewContactValidator(region string) *ContactValidator {
	if region == "" {
		region = "US"
	}
	return &ContactValidator{defaultRegion: strings.ToUpper(region), validate: validator.New()}
}

// Validate returns the normalized destination for ch:
//   - phone, whatsapp: E.164
//   - email: lowercased address
//   - instagram, tiktok, telegram: "@handle" (profile links are accepted)
//   - facebook, linkedin: https profile URL
func (v *ContactValidator) Validate(ch types.ChannelID, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidChannel(ch, "value is required")
	}
	switch ch {
	case types.ChannelPhone, types.ChannelWhatsApp:
		return v.phone(ch, value)
	case types.ChannelEmail:
		if err := v.validate.Var(value, "email"); err != nil {
			return "", invalidChannel(ch, "not a valid email address")
		}
		return strings.ToLower(value), nil
	case types.ChannelInstagram:
		return handle(ch, value, instagramHandleRE)
	case types.ChannelTikTok:
		return handle(ch, value, tiktokHandleRE)
	case types.ChannelTelegram:
		return handle(ch, value, telegramHandleRE)
	case types.ChannelFacebook, types.ChannelLinkedIn:
		u, ok := profileURL(ch, value)
		if !ok {
			return "", invalidChannel(ch, "must be a "+string(ch)+" profile link")
		}
		return u.String(), nil
	default:
		return "", invalidChannel(ch, "unknown channel")
	}
}

func (v *ContactValidator) phone(ch types.ChannelID, value string) (string, error) {
	num, err := phonenumbers.Parse(value, v.defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", invalidChannel(ch, "not a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func handle(ch types.ChannelID, value string, re *regexp.Regexp) (string, error) {
	if u, ok := profileURL(ch, value); ok {
		value, _, _ = strings.Cut(strings.Trim(u.Path, "/"), "/")
	}
	value = strings.TrimPrefix(value, "@")
	if !re.MatchString(value) {
		return "", invalidChannel(ch, "not a valid "+string(ch)+" handle")
	}
	return "@" + value, nil
}

// profileURL parses value as a link on one of ch's hosts. A missing scheme is
// read as https.
func profileURL(ch types.ChannelID, value string) (*url.URL, bool) {
	if !strings.Contains(value, "://") {
		if !strings.Contains(value, "/") {
			return nil, false
		}
		value = "https://" + value
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || strings.Trim(u.Path, "/") == "" {
		return nil, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, h := range profileHosts[ch] {
		if host == h || strings.HasSuffix(host, "."+h) {
			u.Scheme = "https"
			u.RawQuery, u.Fragment = "", ""
			return u, true
		}
	}
	return nil, false
}

func invalidChannel(ch types.ChannelID, reason string) error {
	return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidChannel, reason, nil,
		map[string]any{"channel": string(ch)})
}
