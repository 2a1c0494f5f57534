package extract

import (
	"regexp"
	"strings"
)

// UnknownMerchant is the sentinel returned when no stage resolves a name.
const UnknownMerchant = "Unknown Merchant"

const headLines = 5 // merchant names live in the receipt header

var (
	hintTokenRE = regexp.MustCompile(`^([a-zA-Z0-9]+)`)

	// skip rules: lines that are clearly not business names
	numericLineRE = regexp.MustCompile(`^\d+$`)
	phoneLineRE   = regexp.MustCompile(`^[\d\s\-()]+$`)
	stateCodeRE   = regexp.MustCompile(`^[A-Z]{2,}\s+\d+`)

	// business-pattern cascade, tried in order per line
	businessPatterns = []*regexp.Regexp{
		// known business-entity suffixes
		regexp.MustCompile(`(?i)^[A-Za-z\s&\-.,']+(LLC|Inc|Corp|Ltd|Co\.|Company|Store|Market|Restaurant|Cafe|Shop|Pharmacy|Gas|Station|Hotel|Motel)\b`),
		// common business-category keywords
		regexp.MustCompile(`(?i)^[A-Za-z\s&\-.,']*(Restaurant|Cafe|Coffee|Market|Store|Shop|Gas|Pharmacy|Hotel|Motel|Bar|Grill)\b`),
		// generic clean short label
		regexp.MustCompile(`^[A-Za-z\s&\-.,'()]{3,50}$`),
	}

	cleanLabelRE = regexp.MustCompile(`^[A-Za-z\s&\-.,'()]+$`)
)

// hintFromFileName derives the lowercase merchant hint from an uploaded file
// name: the leading alphanumeric run of the segment after the first dash
// ("1700000000-starbucks-receipt.pdf" -> "starbucks").
func hintFromFileName(fileName string) string {
	parts := strings.SplitN(fileName, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	m := hintTokenRE.FindStringSubmatch(parts[1])
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// ExtractMerchant resolves the merchant name from the first few lines of the
// OCR text. Stage 1 matches the filename hint, stage 2 runs the business
// pattern cascade with skip rules, stage 3 falls back to the first clean
// short line. Returns UnknownMerchant when nothing qualifies.
func ExtractMerchant(text, fileName string) string {
	lines := nonEmptyLines(text)
	hint := hintFromFileName(fileName)

	if hint != "" {
		for i := 0; i < len(lines) && i < headLines; i++ {
			if strings.Contains(strings.ToLower(lines[i]), hint) {
				return lines[i]
			}
		}
	}

	for i := 0; i < len(lines) && i < headLines; i++ {
		line := lines[i]
		if numericLineRE.MatchString(line) ||
			phoneLineRE.MatchString(line) ||
			stateCodeRE.MatchString(line) ||
			len(line) < 3 || len(line) > 50 {
			continue
		}
		for _, re := range businessPatterns {
			if re.MatchString(line) {
				return line
			}
		}
	}

	for i := 0; i < len(lines) && i < 3; i++ {
		line := lines[i]
		if len(line) >= 3 && len(line) <= 50 && cleanLabelRE.MatchString(line) {
			return line
		}
	}

	return UnknownMerchant
}
