package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts, handlers and unknown tags from rich text
// supplied by the back office before it is stored.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

var plainTextPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag, leaving plain text.
func StripHTML(s string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(s))
}
