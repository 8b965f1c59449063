package client

import (
	"strings"
	"unicode"
)

// ShortCode derives a node short code from a display name: lower-cased, with
// every run of characters other than letters and digits replaced by a single
// hyphen and no leading or trailing hyphen.
//
//	ShortCode("Edinburgh Office") == "edinburgh-office"
func ShortCode(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
