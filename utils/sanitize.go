package utils

import "github.com/microcosm-cc/bluemonday"

// Mini-program content is plain text, so the strict policy strips all markup
// instead of allowing a UGC subset.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user supplied free text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
