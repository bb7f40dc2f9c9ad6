package types

import (
	"regexp"
	"strings"
	"unicode"
)

// Validation constraint constants.
const (
	MinSubdomainLength = 3
	MaxSubdomainLength = 63
	MinPasswordLength  = 8
	MaxPasswordLength  = 72 // bcrypt ignores bytes past 72
	MaxUploadBytes     = 5 << 20
	MaxBusinessName    = 120
	MaxContentValue    = 2000
)

var subdomainRE = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// ReservedSubdomains can never be claimed by a site.
var ReservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "app": {}, "admin": {}, "mail": {}, "smtp": {},
	"ftp": {}, "cdn": {}, "static": {}, "assets": {}, "status": {},
	"help": {}, "support": {}, "blog": {}, "dashboard": {}, "billing": {},
}

// NormalizeSubdomain lowercases and trims a candidate subdomain.
func NormalizeSubdomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateSubdomain checks the format rules of a (normalized) subdomain.
// It returns "" when the candidate is well-formed, or a user-facing reason.
func ValidateSubdomain(s string) string {
	switch {
	case len(s) < MinSubdomainLength:
		return "must be at least 3 characters"
	case len(s) > MaxSubdomainLength:
		return "must be at most 63 characters"
	case !subdomainRE.MatchString(s):
		return "may contain only lowercase letters, digits and inner hyphens"
	case strings.Contains(s, "--"):
		return "may not contain consecutive hyphens"
	}
	if _, reserved := ReservedSubdomains[s]; reserved {
		return "is reserved"
	}
	return ""
}

// ValidatePassword enforces the owner password policy: length bounds plus at
// least one letter and one digit.
func ValidatePassword(pw string) *AppError {
	if len(pw) < MinPasswordLength || len(pw) > MaxPasswordLength {
		return NewAppError(ErrCodeValidationWeakPassword, "password must be between 8 and 72 characters", nil)
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return NewAppError(ErrCodeValidationWeakPassword, "password must contain letters and digits", nil)
	}
	return nil
}

// NormalizeDocument strips punctuation from an owner tax document and checks
// its check digits. An 11-digit value is validated as a CPF and a 14-digit
// value as a CNPJ; anything else is rejected. An empty document is allowed.
func NormalizeDocument(doc string) (string, *AppError) {
	digits := make([]int, 0, 14)
	for _, r := range doc {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-' || r == '/' || r == ' ':
		default:
			return "", NewAppError(ErrCodeValidationInvalidDocument, "document may contain only digits and separators", nil)
		}
	}
	if len(digits) == 0 {
		return "", nil
	}

	var ok bool
	switch len(digits) {
	case 11:
		ok = validCPF(digits)
	case 14:
		ok = validCNPJ(digits)
	}
	if !ok || repeated(digits) {
		return "", NewAppError(ErrCodeValidationInvalidDocument, "document is not a valid CPF or CNPJ", nil)
	}

	var b strings.Builder
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	return b.String(), nil
}

func validCPF(d []int) bool {
	check := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += d[i] * (n + 1 - i)
		}
		r := sum * 10 % 11
		if r == 10 {
			return 0
		}
		return r
	}
	return check(9) == d[9] && check(10) == d[10]
}

var cnpjWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

func validCNPJ(d []int) bool {
	check := func(n int) int {
		weights := cnpjWeights[len(cnpjWeights)-n:]
		sum := 0
		for i := 0; i < n; i++ {
			sum += d[i] * weights[i]
		}
		if r := sum % 11; r >= 2 {
			return 11 - r
		}
		return 0
	}
	return check(12) == d[12] && check(13) == d[13]
}

// repeated reports whether every digit is the same; such values pass the
// checksum but are never issued.
func repeated(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}
