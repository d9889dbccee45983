package inference

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// detector claims a trimmed, non-empty value for one inferred type.
type detector struct {
	Type  models.InferredType
	Match func(value string) bool
}

// detectors run in order; the first match claims the value. Order matters:
// dates before phones (2024-01-15 has phone-like punctuation) and numbers
// before booleans and phones (bare digit strings are numbers).
var detectors = []detector{
	{models.InferredTypeUUID, isUUID},
	{models.InferredTypeEmail, isEmail},
	{models.InferredTypeURL, isURL},
	{models.InferredTypeDatetime, isDatetime},
	{models.InferredTypeDate, isDate},
	{models.InferredTypeCurrency, isCurrency},
	{models.InferredTypeNumber, isNumber},
	{models.InferredTypeBoolean, isBoolean},
	{models.InferredTypePhone, isPhone},
}

var (
	uuidPattern   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	urlPattern    = regexp.MustCompile(`(?i)^(https?://\S+|www\.\S+\.\S+)$`)
	numberPattern = regexp.MustCompile(`^[-+]?(?:(?:\d+|\d{1,3}(?:,\d{3})+)(?:\.\d+)?|\.\d+)(?:[eE][-+]?\d+)?$`)
	amountPattern = regexp.MustCompile(`^-?(?:\d+|\d{1,3}(?:,\d{3})+)(?:\.\d+)?$`)
	phonePattern  = regexp.MustCompile(`^\+?[\d\s().-]+(?:\s*(?:x|ext\.?)\s*\d{1,5})?$`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
	"1/2/06",
	"01-02-2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"02-Jan-06",
}

var datetimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04 PM",
	time.RFC1123,
	time.RFC1123Z,
}

var currencySymbols = []string{"$", "€", "£", "¥"}

var currencyCodes = []string{"usd", "eur", "gbp", "cad", "aud", "nzd", "chf", "jpy"}

var booleanWords = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"y": true, "n": true,
	"t": true, "f": true,
}

func isUUID(v string) bool {
	if !uuidPattern.MatchString(v) {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

func isEmail(v string) bool {
	return emailPattern.MatchString(v)
}

func isURL(v string) bool {
	return urlPattern.MatchString(v)
}

func isDate(v string) bool {
	return parsesWithAny(v, dateLayouts)
}

func isDatetime(v string) bool {
	return parsesWithAny(v, datetimeLayouts)
}

func parsesWithAny(v string, layouts []string) bool {
	if len(v) < 6 || len(v) > 40 || !strings.ContainsAny(v, "0123456789") {
		return false
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// isCurrency requires a currency symbol or ISO code around an amount.
// Accounting negatives like ($1,200.00) are accepted.
func isCurrency(v string) bool {
	s := v
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")

	marked := false
	for _, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			s, marked = strings.TrimPrefix(s, sym), true
			break
		}
		if strings.HasSuffix(s, sym) {
			s, marked = strings.TrimSuffix(s, sym), true
			break
		}
	}
	if !marked {
		lower := strings.ToLower(s)
		for _, code := range currencyCodes {
			if strings.HasPrefix(lower, code) {
				s, marked = s[len(code):], true
				break
			}
			if strings.HasSuffix(lower, code) {
				s, marked = s[:len(s)-len(code)], true
				break
			}
		}
	}
	if !marked {
		return false
	}
	return amountPattern.MatchString(strings.TrimSpace(s))
}

func isNumber(v string) bool {
	if !strings.ContainsAny(v, "0123456789") {
		return false
	}
	return numberPattern.MatchString(v)
}

func isBoolean(v string) bool {
	return booleanWords[strings.ToLower(v)]
}

// isPhone accepts 7-20 digits with phone punctuation: up to 15 for the
// number itself plus a five-digit extension. Bare digit strings
// are claimed earlier by the number detector.
func isPhone(v string) bool {
	if !phonePattern.MatchString(v) {
		return false
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 20
}
