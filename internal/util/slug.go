package util

import (
	"strings"
	"unicode"

	"portfolio-api/pkg/apierror"
)

// Slugify turns a title into a URL-safe slug: lowercase ASCII letters,
// digits and single hyphens, trimmed at both ends.
func Slugify(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", apierror.BadRequest("title cannot be empty")
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(trimmed) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '/', r == '.':
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(builder.String(), "-")
	if slug == "" {
		return "", apierror.BadRequest("title yields an empty slug")
	}

	return slug, nil
}
