package service

import "strings"

// DigitsOnly strips every non-ASCII-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone groups a phone number for display as "091 122 3344".
// Partial input is grouped as far as it goes.
func FormatPhone(phone string) string {
	d := DigitsOnly(phone)
	switch {
	case len(d) > 6:
		end := len(d)
		if end > 10 {
			end = 10
		}
		return d[:3] + " " + d[3:6] + " " + d[6:end]
	case len(d) > 3:
		return d[:3] + " " + d[3:]
	}
	return d
}

// NormalizeLookupPhone canonicalises a phone typed into the T-shirt lookup:
// digits only, and a nine digit number missing its leading zero gets one.
func NormalizeLookupPhone(phone string) string {
	d := DigitsOnly(phone)
	if len(d) == 9 && !strings.HasPrefix(d, "0") {
		return "0" + d
	}
	return d
}
