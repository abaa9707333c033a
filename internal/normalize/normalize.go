// Package normalize cleans raw feed text and reduces the source's date
// representations to one canonical form. Every function is total: malformed
// input yields the empty string, never an error.
package normalize

import (
	"regexp"
	"strings"
	"time"
)

// controlRE matches C0 and C1 control characters left behind by the feed's
// legacy encoding.
var controlRE = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)

// punctReplacer maps cp1252 smart punctuation that survives in the feed as
// raw C1 code points. Applied before the control sweep so the replacements
// are not stripped.
var punctReplacer = strings.NewReplacer(
	"\u0091", "'",
	"\u0092", "'",
	"\u0093", `"`,
	"\u0094", `"`,
	"\u0096", "-",
	"\u0097", "-",
	"\u0099", "TM",
)

var (
	isoDateRE     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRE   = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
	usDateRE      = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	compactDateRE = regexp.MustCompile(`^\d{8}$`)
)

// CleanText repairs smart punctuation, strips control characters, and trims
// surrounding whitespace.
func CleanText(value string) string {
	text := punctReplacer.Replace(value)
	text = controlRE.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// NormalizeDate converts the four date shapes seen in source data
// (YYYY-MM-DD, YYYY/MM/DD, MM/DD/YYYY, YYYYMMDD) to canonical YYYY-MM-DD.
// Anything else yields the empty string, the uniform unknown sentinel.
func NormalizeDate(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	switch {
	case isoDateRE.MatchString(raw):
		return raw
	case slashDateRE.MatchString(raw):
		return strings.ReplaceAll(raw, "/", "-")
	case usDateRE.MatchString(raw):
		parts := strings.Split(raw, "/")
		return parts[2] + "-" + parts[0] + "-" + parts[1]
	case compactDateRE.MatchString(raw):
		return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return ""
}

// DaysBetween returns the calendar day count from start to end, both
// canonical dates. The second return value reports whether the count is
// valid; it is false when either side is empty or unparsable, or when end
// precedes start. Negative spans are data-quality failures, not results.
func DaysBetween(start, end string) (int, bool) {
	if start == "" || end == "" {
		return 0, false
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return 0, false
	}
	if e.Before(s) {
		return 0, false
	}
	return int(e.Sub(s).Hours() / 24), true
}
