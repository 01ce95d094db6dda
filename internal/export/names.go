package export

import (
	"strings"
	"unicode/utf8"
)

// FileNameSubstitute replaces every character that is not allowed in a file
// name.
const FileNameSubstitute = '.'

// fallbackName is used when a label sanitizes to nothing usable.
const fallbackName = "account"

// maxNameBytes leaves room for a de-duplication suffix and extension within
// common 255-byte file name limits.
const maxNameBytes = 200

// SanitizeFileName turns an account label into a portable file name. The
// characters < > : " / \ | ? * and control characters are replaced with
// FileNameSubstitute.
func SanitizeFileName(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	for _, r := range label {
		switch {
		case r == utf8.RuneError, r < 0x20, r == 0x7f:
			b.WriteRune(FileNameSubstitute)
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune(FileNameSubstitute)
		default:
			b.WriteRune(r)
		}
	}

	name := strings.TrimSpace(b.String())
	if len(name) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}

	if strings.Trim(name, ".") == "" {
		return fallbackName
	}
	return name
}
