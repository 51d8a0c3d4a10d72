package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename
// component. Slashes, backslashes, colons, and asterisks become dashes; other
// unsafe characters are removed. Leading and trailing whitespace and dots are
// trimmed so the result never hides the extension or escapes the directory.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	cleaned := fileNameReplacer.Replace(name)
	return strings.TrimFunc(cleaned, func(r rune) bool {
		return r == '.' || r == ' ' || r == '\t'
	})
}

// SanitizeToken converts a string to a lowercase filesystem-safe token used
// for cache keys and directory names. Letters are lowercased, digits and
// hyphens are kept, everything else becomes an underscore. Returns "unknown"
// for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
