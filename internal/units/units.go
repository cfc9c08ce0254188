// Package units formats paces, durations and labels for display and export.
package units

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// PaceFromSecondsPerMile renders a pace as m:ss. Minutes may exceed 59.
func PaceFromSecondsPerMile(secPerMile float64) string {
	return DurationFromSeconds(secPerMile)
}

// DurationFromSeconds renders seconds as m:ss where minutes may exceed 59.
func DurationFromSeconds(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// WeekStart returns midnight of the Monday that begins t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

var (
	underscores = regexp.MustCompile(`_+`)
	wordStart   = regexp.MustCompile(`\b[a-z]`)
)

// TitleCase converts an enum-style name to Title Case without underscores:
// INLINE_SKATE becomes "Inline Skate", CROSS-TRAIN becomes "Cross-Train".
func TitleCase(s string) string {
	out := underscores.ReplaceAllString(strings.ToLower(s), " ")
	return wordStart.ReplaceAllStringFunc(out, strings.ToUpper)
}
