package utils

import (
	"math/rand"
	"strings"
)

var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789")

func GenerateRandomStringWithLength(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// NormalizeCode uppercases the input and keeps only letters, digits and
// underscores, with spaces and dashes folded to underscores. Result is
// truncated to maxLen.
func NormalizeCode(raw string, maxLen int) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == ' ', r == '-':
			sb.WriteRune('_')
		}
	}
	code := strings.Trim(sb.String(), "_")
	for strings.Contains(code, "__") {
		code = strings.ReplaceAll(code, "__", "_")
	}
	if len(code) > maxLen {
		code = code[:maxLen]
	}
	return code
}
