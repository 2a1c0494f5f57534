package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// dateTimePatterns are coarse shape matchers tried in fixed order over the
// line-structured text. The first pattern that matches anywhere wins and its
// first match goes to the normalizer; patterns are not ranked by quality.
var dateTimePatterns = []*regexp.Regexp{
	// date with attached time, slash/dash format
	regexp.MustCompile(`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)\b`),
	// ISO-like date with optional time
	regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?)\b`),
	// date only
	regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`),
	// time only, as fallback
	regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)\b`),
}

// Shape classifiers for the normalizer. ISO comes first so a string like
// "2024-03-05 14:30:00" can never be misread as a dash date starting at "24".
var (
	isoDateTimeRE   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})\s+(\d{1,2}):(\d{2})(?::\d{2})?`)
	isoDateRE       = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	slashDateTimeRE = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\s+(\d{1,2}):(\d{2})(?::\d{2})?`)
	slashDateRE     = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	timeOnlyRE      = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::\d{2})?`)
)

// ExtractDateTime finds the first date/time fragment in the text and returns
// it normalized, or "" when nothing matches. Carriage returns are stripped
// but line breaks are kept, unlike the amount extractor.
func ExtractDateTime(text string) string {
	cleaned := strings.ReplaceAll(text, "\r", "")
	for _, re := range dateTimePatterns {
		if m := re.FindStringSubmatch(cleaned); len(m) >= 2 {
			if norm := NormalizeDateTime(m[1]); norm != "" {
				return norm
			}
		}
	}
	return ""
}

// NormalizeDateTime reformats a matched fragment to DD-MM-YYYY[ HH:MM], or
// bare HH:MM for time-only input. Slash/dash dates keep the source rule:
// output is second-part, first-part, year with no locale disambiguation, and
// two-digit years are promoted by prefixing "20". Seconds are dropped.
func NormalizeDateTime(raw string) string {
	s := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")

	if m := isoDateTimeRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s %s:%s", pad2(m[3]), pad2(m[2]), m[1], pad2(m[4]), m[5])
	}
	if m := isoDateRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", pad2(m[3]), pad2(m[2]), m[1])
	}
	if m := slashDateTimeRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s %s:%s", pad2(m[2]), pad2(m[1]), promoteYear(m[3]), pad2(m[4]), m[5])
	}
	if m := slashDateRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", pad2(m[2]), pad2(m[1]), promoteYear(m[3]))
	}
	if m := timeOnlyRE.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s:%s", pad2(m[1]), m[2])
	}
	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func promoteYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}
