package wizard

import (
	"regexp"
	"strconv"
)

var (
	hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbColorRE = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
)

// IsColor reports whether s is a #rgb / #rrggbb hex color or an rgb(r, g, b)
// triple with components in [0, 255].
func IsColor(s string) bool {
	if hexColorRE.MatchString(s) {
		return true
	}
	m := rgbColorRE.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for _, c := range m[1:] {
		n, err := strconv.Atoi(c)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
