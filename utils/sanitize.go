package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer      = bluemonday.UGCPolicy()
	plainSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}

// SanitizePlain strips every tag; used for titles and short messages.
func SanitizePlain(input string) string {
	return strings.TrimSpace(plainSanitizer.Sanitize(input))
}
