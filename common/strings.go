package common

import (
	"bytes"
	"regexp"
	"strings"
)

func StringReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a lower-case ASCII slug from a display name: runs of characters other than
// [a-z0-9] collapse into a single '-', leading and trailing separators are trimmed.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
