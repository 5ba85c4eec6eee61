package scheme

import (
	"strings"
	"unicode"
)

// Slugify turns a display name into a URL slug: letters and digits are kept
// lower-cased, spaces, hyphens and underscores become single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FormatSlugLabel turns "pm-kisan" into "Pm Kisan".
func FormatSlugLabel(slug string) string {
	parts := strings.Split(slug, "-")
	for i, w := range parts {
		if w == "" {
			continue
		}
		parts[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(parts, " ")
}
