// Package pii screens conversation text for personally-identifiable content.
package pii

import "regexp"

// Detection is boolean only: the record is flagged, nothing is redacted.
var patterns = []*regexp.Regexp{
	// email address
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	// phone numbers: 555-123-4567, (555) 123-4567, +1 555 123 4567
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
	regexp.MustCompile(`\+\d{1,2}\s\d{3}\s\d{3}\s\d{4}`),
	// US social security number shape
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// IPv4 address
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

// Detect reports whether text matches any sensitive pattern.
func Detect(text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
