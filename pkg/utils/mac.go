package utils

import (
	"strings"
)

// NormalizeMAC converts a MAC address to upper-case colon-separated hex.
// Dashes and dots are accepted as separators; anything that is not
// six hex octets is returned upper-cased and trimmed so lookups stay
// case-insensitive even for unusual chassis IDs.
func NormalizeMAC(input string) string {
	input = strings.ToUpper(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	hex := strings.NewReplacer(":", "", "-", "", ".", "").Replace(input)
	if len(hex) != 12 || !isHex(hex) {
		return input
	}

	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return b.String()
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
