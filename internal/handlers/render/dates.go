package render

import (
	"fmt"
	"time"
)

// OrdinalSuffix returns the English ordinal suffix for a day of month
func OrdinalSuffix(day int) string {
	if day > 3 && day < 21 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// MastheadDate formats the header date, e.g. "18th Oct 2026"
func MastheadDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), OrdinalSuffix(t.Day()), t.Format("Jan"), t.Year())
}

// IssuanceDate formats the long British form, e.g. "18th of October 2026"
func IssuanceDate(t time.Time) string {
	return fmt.Sprintf("%d%s of %s %d", t.Day(), OrdinalSuffix(t.Day()), t.Format("January"), t.Year())
}
