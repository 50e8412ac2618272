// Package phone normalizes contact phone numbers to the stored 10-digit form.
package phone

import "strings"

// Length is the number of digits a stored phone number has
const Length = 10

// Normalize strips every non-digit character and truncates to Length digits.
// "(555) 123-4567" becomes "5551234567".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == Length {
			break
		}
	}
	return b.String()
}

// Valid reports whether s is exactly Length ASCII digits
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders a stored number for display as "(555) 123-4567".
// Anything that is not a valid stored number is returned unchanged.
func Format(s string) string {
	if !Valid(s) {
		return s
	}
	return "(" + s[:3] + ") " + s[3:6] + "-" + s[6:]
}
