package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Control characters (except common whitespace)
var controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// CleanDisplayName normalizes a person or club name as observed in a
// feed: control characters dropped, whitespace collapsed to single
// spaces. Casing is preserved; identity matching happens downstream on
// a separately normalized key.
func CleanDisplayName(name string) string {
	name = controlCharPattern.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// ValidateDisplayName checks that a cleaned name is usable as an
// identity. Names arrive from scraped pages and curated files alike, so
// the bar is deliberately low: non-empty, bounded, and containing at
// least one letter.
func ValidateDisplayName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return fmt.Errorf("name %q contains no letters", name)
}

// ValidateUUID validates that a UUID is properly formatted
func ValidateUUID(uuid string) error {
	if uuid == "" {
		return fmt.Errorf("uuid is required")
	}

	// Standard UUID format: 8-4-4-4-12 hex characters
	uuidPattern := regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
	if !uuidPattern.MatchString(strings.ToLower(uuid)) {
		return fmt.Errorf("invalid UUID format")
	}

	return nil
}

// EscapeForLogging escapes free-text content for safe single-line logging
func EscapeForLogging(text string, maxLen int) string {
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}

	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, "\r", "\\r")
	text = strings.ReplaceAll(text, "\t", "\\t")

	return text
}
