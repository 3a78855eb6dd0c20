package utils

import (
	"strings"
	"unicode"
)

// SanitizeTaxID strips everything that is not a letter or digit and
// uppercases what remains. Applied to GST and PAN numbers on ingest.
func SanitizeTaxID(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
		}
	}
	return string(out)
}

// ValidatePAN checks the 10-character PAN layout: five letters, four digits,
// one letter. Layout only; no checksum exists for PAN.
func ValidatePAN(pan string) bool {
	if len(pan) != 10 {
		return false
	}
	for i, r := range pan {
		switch {
		case i < 5 || i == 9:
			if r < 'A' || r > 'Z' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// ValidateGST checks the 15-character GSTIN layout: two digit state code, an
// embedded PAN, entity digit, the literal Z, and a checksum character.
func ValidateGST(gst string) bool {
	if len(gst) != 15 {
		return false
	}
	if !isDigits(gst[:2]) {
		return false
	}
	if !ValidatePAN(gst[2:12]) {
		return false
	}
	if gst[13] != 'Z' {
		return false
	}
	last := gst[14]
	return (last >= '0' && last <= '9') || (last >= 'A' && last <= 'Z')
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.TrimSpace(s) != ""
}
