package licensecrypto

import "strings"

func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}
