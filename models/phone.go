package models

import "strings"

// CountryCode is prefixed to Kenyan subscriber numbers.
const CountryCode = "254"

// NormalizePhone rewrites a phone number into the country-coded digit form
// M-Pesa expects: non-digits are dropped (including a leading "+"), a
// leading 0 becomes 254 and a bare subscriber number gets 254 prepended.
// Anything else is returned best-effort. NormalizePhone is idempotent.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	// no digits at all normalizes to "", never to a bare country code
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		digits = CountryCode + digits[1:]
	}
	if !strings.HasPrefix(digits, CountryCode) {
		digits = CountryCode + digits
	}
	return digits
}

// IsMobileMoneyPhone reports whether a normalized number is a full
// 12-digit 254 number.
func IsMobileMoneyPhone(normalized string) bool {
	return len(normalized) == 12 && strings.HasPrefix(normalized, CountryCode)
}

// SamePhone compares two numbers after normalization.
func SamePhone(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	return na != "" && na == nb
}
