package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPatterns is evaluated in order, most specific first. Only the first
// regex match of each pattern is considered; a match that fails the range
// check moves the cascade to the next pattern, never to a later match of the
// same one.
var amountPatterns = []*regexp.Regexp{
	// explicit total keywords; \b keeps "subtotal" from feeding this one
	regexp.MustCompile(`(?i)\b(?:total|grand\s*total|final\s*total|amount\s*due|balance\s*due)\b[:\s]*\$?([0-9,]+\.?[0-9]{0,2})`),
	// subtotal as fallback
	regexp.MustCompile(`(?i)\b(?:sub\s*total|subtotal|sub_total)\b[:\s]*\$?([0-9,]+\.?[0-9]{0,2})`),
	// amount keyword variants
	regexp.MustCompile(`(?i)\b(?:total\s*amount|amount\s*total|net\s*amount)\b[:\s]*\$?([0-9,]+\.?[0-9]{0,2})`),
	// currency symbol directly before a total/due keyword
	regexp.MustCompile(`(?i)\$\s*([0-9,]+\.?[0-9]{0,2})\s*(?:total|due|amount|balance)`),
	// line beginning/ending with total/amount
	regexp.MustCompile(`(?im)(?:^|\n)\s*(?:total|amount)[:\s]*\$?([0-9,]+\.?[0-9]{0,2})\s*(?:$|\n)`),
	// any $-prefixed number with two decimals, last resort
	regexp.MustCompile(`\$\s*([0-9,]+\.[0-9]{2})`),
}

// ExtractAmount runs the monetary pattern cascade over the OCR text and
// returns the first plausible amount as a string ("" when none). Line
// structure is deliberately flattened to spaces before matching; the date and
// merchant extractors keep it, and the two behaviors must stay different.
func ExtractAmount(text string) string {
	cleaned := strings.ReplaceAll(text, "\r", "")
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")

	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(cleaned)
		if len(m) < 2 {
			continue
		}
		amount := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			continue
		}
		// bound against OCR noise producing absurd values
		if v > 0 && v < 10000 {
			return amount
		}
	}
	return ""
}

// ParseTotal converts an extracted amount string to the numeric value stored
// in extracted_receipts. Empty or unparseable input maps to 0, never an error.
func ParseTotal(amount string) float64 {
	if amount == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
