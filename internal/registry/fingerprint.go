package registry

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Fingerprint derives the stored comparison string for a seed phrase: a
// 32-bit rolling hash (h*31 + c over UTF-16 code units) as 8 hex digits,
// repeated 8 times. It is neither collision nor preimage resistant and only
// detects exact-string equality. Changing it invalidates every stored record.
func Fingerprint(seedPhrase string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(seedPhrase)) {
		h = h*31 + int32(unit)
	}
	return strings.Repeat(fmt.Sprintf("%08x", uint32(h)), 8)
}
