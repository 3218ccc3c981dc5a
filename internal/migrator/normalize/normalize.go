// Package normalize holds the pure value normalizers used during catalog
// migration. None of them return errors: malformed input always degrades to
// an absent value so a single bad field never fails a record.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	YearMin = 1900
	YearMax = 2100
)

var (
	priceGroupRe = regexp.MustCompile(`-?\d[\d.,]*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ParsePrice extracts a positive decimal amount from a scraped price value.
// Accepts numbers and strings with currency symbols and thousands
// separators. Zero, negative and non-numeric placeholders ("צור קשר",
// "N/A", "") report absent, as do strings carrying more than one numeric
// group ("₪1,234 / ₪5,678"): a merged multi-source value cannot be
// attributed to a single amount.
func ParsePrice(v interface{}) (float64, bool) {
	switch p := v.(type) {
	case nil:
		return 0, false
	case float64:
		return checkPrice(p)
	case float32:
		return checkPrice(float64(p))
	case int:
		return checkPrice(float64(p))
	case int64:
		return checkPrice(float64(p))
	case string:
		groups := priceGroupRe.FindAllString(p, -1)
		if len(groups) != 1 {
			return 0, false
		}
		s := groups[0]
		// "1,234.50" and "1,234" both carry comma thousands separators;
		// a comma with no dot and exactly two trailing digits is treated
		// as a decimal comma ("1234,50").
		if strings.Contains(s, ",") {
			if !strings.Contains(s, ".") && commaLooksDecimal(s) {
				s = strings.Replace(s, ",", ".", 1)
			} else {
				s = strings.ReplaceAll(s, ",", "")
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return checkPrice(f)
	default:
		return 0, false
	}
}

func checkPrice(f float64) (float64, bool) {
	if f <= 0 {
		return 0, false
	}
	return f, true
}

func commaLooksDecimal(s string) bool {
	i := strings.LastIndex(s, ",")
	return strings.Count(s, ",") == 1 && len(s)-i-1 == 2
}

// ParseYear extracts a model year, accepting ints and numeric strings.
// Values outside [1900, 2100] and non-year tokens ("undefined") report
// absent.
func ParseYear(v interface{}) (int, bool) {
	switch y := v.(type) {
	case nil:
		return 0, false
	case int:
		return checkYear(y)
	case int64:
		return checkYear(int(y))
	case float64:
		if y != float64(int(y)) {
			return 0, false
		}
		return checkYear(int(y))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return 0, false
		}
		return checkYear(n)
	default:
		return 0, false
	}
}

func checkYear(y int) (int, bool) {
	if y < YearMin || y > YearMax {
		return 0, false
	}
	return y, true
}

// CleanText makes free text safe for JSON and delimited storage: control
// characters are stripped (basic whitespace kept), whitespace runs collapse
// to one space, double quotes become single quotes, backslashes become
// forward slashes, semicolons become ", ". Idempotent.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		case r == '"':
			b.WriteRune('\'')
		case r == '\\':
			b.WriteRune('/')
		case r == ';':
			b.WriteString(", ")
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}
