// Package cardid holds helpers for card identifiers: masking for logs and
// the digit checks used by the ISO 8583 link.
package cardid

import (
	"fmt"
	"strings"
)

// MaxLen is the longest card id the ISO 8583 link carries in field 2.
const MaxLen = 19

func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LastN returns the last n bytes of s, or s when it is shorter.
func LastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Mask hides all but the last four characters. Ids of four characters or
// less are masked entirely.
func Mask(id string) string {
	cleaned := Normalize(id)
	n := len(cleaned)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	return strings.Repeat("*", n-4) + LastN(cleaned, 4)
}

// Normalize strips spaces, tabs and dashes. It is used for display only;
// card lookups compare ids verbatim.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		default:
			return r
		}
	}, s)
}

// ValidateWire checks that id can travel in ISO 8583 field 2.
func ValidateWire(id string) error {
	if id == "" {
		return fmt.Errorf("card id is required")
	}
	if !IsDigits(id) {
		return fmt.Errorf("card id must contain digits only")
	}
	if l := len(id); l > MaxLen {
		return fmt.Errorf("card id length must be at most %d digits (got %d)", MaxLen, l)
	}
	return nil
}
