package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatPeriod renders a tenure span for display.
// Examples: "2015 – 2018", "07.2021 – present".
func FormatPeriod(start, end *time.Time) string {
	if start == nil {
		return "unknown – " + formatEnd(end)
	}
	return formatMonthYear(*start) + " – " + formatEnd(end)
}

func formatEnd(end *time.Time) string {
	if end == nil {
		return "present"
	}
	return formatMonthYear(*end)
}

func formatMonthYear(t time.Time) string {
	if t.Month() == time.January && t.Day() == 1 {
		// Most historical records only carry the year.
		return t.Format("2006")
	}
	return t.Format("01.2006")
}

// FormatYears renders an overlap duration.
// Examples: "1 year", "4 years".
func FormatYears(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}

// TruncateText truncates text to maxLen characters, adding "..." if truncated.
// Also removes newlines for single-line display.
func TruncateText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return text[:maxLen-3] + "..."
}
