package flow

import (
	"math/rand"
	"regexp"
	"strings"
)

var refPattern = regexp.MustCompile(`^[A-Za-z0-9\-/]+$`)

// ValidRefNumber accepts alphanumeric references such as REF-12345.
func ValidRefNumber(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 3 && refPattern.MatchString(s)
}

// ValidNIDA accepts a national ID: digits only, typical length.
func ValidNIDA(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 || len(s) > 20 {
		return false
	}
	return allDigits(s)
}

// ValidPhone accepts a phone number: digits with an optional leading plus.
func ValidPhone(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if len(s) < 9 || len(s) > 15 {
		return false
	}
	return allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// demoIdentifiers yield the canned in-review result; everything else that
// validates comes back as "no record found".
var demoIdentifiers = map[string]bool{
	"REF-12345": true,
	"DEMO":      true,
}

func isDemoIdentifier(s string) bool {
	return demoIdentifiers[strings.ToUpper(strings.TrimSpace(s))]
}

// NewTicketID generates a public ticket identifier: "DCT-" plus five random
// digits. Uniqueness is the store's responsibility; callers that need a
// guaranteed-unique value wrap this with an existence check.
func NewTicketID() string {
	digits := make([]byte, 5)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return "DCT-" + string(digits)
}
