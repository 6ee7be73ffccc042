// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "CA"

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	normalized, ok := ToE164(input)
	if !ok {
		return strings.TrimSpace(input)
	}
	return normalized
}

// ToE164 validates input and returns it in E.164 form.
//
// Numbers that already start with "+" are parsed as international numbers and,
// when they are already canonical E.164, returned byte-for-byte. They are never
// reinterpreted against DefaultRegion.
func ToE164(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	region := DefaultRegion
	if strings.HasPrefix(trimmed, "+") {
		region = ""
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}

	if region == "" && e164Pattern.MatchString(trimmed) {
		return trimmed, true
	}

	return phonenumbers.Format(number, phonenumbers.E164), true
}

// IsValid reports whether input parses to a valid phone number.
func IsValid(input string) bool {
	_, ok := ToE164(input)
	return ok
}
