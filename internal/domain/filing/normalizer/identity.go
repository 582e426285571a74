package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name rules, applied in order after upper-casing.
var (
	commaRun        = regexp.MustCompile(`\s*,[\s,]*`)
	courtesyTitle   = regexp.MustCompile(`^(?:MR|MS|MRS|DR)\s+`)
	conjunction     = regexp.MustCompile(`\bAND\b|\+`)
	leadingThe      = regexp.MustCompile(`^THE\s+`)
	corporateSuffix = regexp.MustCompile(`(?:\s+(?:LTD|LLC|LLP|PLLC|INC|CORP|LP|PA|CO|LLLP|PLLP|PLC|PC))+\s*$`)
	ampersand       = regexp.MustCompile(`\s*&\s*`)
	hyphenRun       = regexp.MustCompile(`-+`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Address rules.
var (
	trailingZip   = regexp.MustCompile(`\b([A-Z]{2}|DISTRICT OF COLUMBIA|VIRGINIA|MARYLAND)[\s-]*\d{5}(?:-\d{4})?\s*$`)
	noiseChars    = regexp.MustCompile(`[()']`)
	unitMarker    = regexp.MustCompile(`\b(?:APT|APARTMENT|SUITE|STE|UNIT)\b\s*#?\s*\S*|#\s*\S*`)
	directionPair = regexp.MustCompile(`\b([NS])\s+([EW])\b`)
	capitolPrefix = regexp.MustCompile(`\b(NORTH|SOUTH|EAST)\s+CAPITOL\b`)
	eyeStreet     = regexp.MustCompile(`\bEYE\s+(ST|STREET)\b`)
	queStreet     = regexp.MustCompile(`\bQUE\s+(ST|STREET)\b`)
	nonWord       = regexp.MustCompile(`[^\w#]+`)
)

var stateNames = []struct {
	pattern *regexp.Regexp
	abbr    string
}{
	{regexp.MustCompile(`\bDISTRICT OF COLUMBIA\s*$`), "DC"},
	{regexp.MustCompile(`\bVIRGINIA\s*$`), "VA"},
	{regexp.MustCompile(`\bMARYLAND\s*$`), "MD"},
}

var streetTypes = map[string]string{
	"STREET":    "ST",
	"AVENUE":    "AVE",
	"AV":        "AVE",
	"BOULEVARD": "BLVD",
	"ROAD":      "RD",
	"DRIVE":     "DR",
	"LANE":      "LN",
	"COURT":     "CT",
	"PLACE":     "PL",
	"TERRACE":   "TER",
	"CIRCLE":    "CIR",
	"PARKWAY":   "PKWY",
	"HIGHWAY":   "HWY",
	"SQUARE":    "SQ",
	"PLAZA":     "PLZ",
	"ALLEY":     "ALY",
	"NORTHWEST": "NW",
	"NORTHEAST": "NE",
	"SOUTHWEST": "SW",
	"SOUTHEAST": "SE",
}

var ordinals = map[string]string{
	"FIRST":       "1ST",
	"SECOND":      "2ND",
	"THIRD":       "3RD",
	"FOURTH":      "4TH",
	"FIFTH":       "5TH",
	"SIXTH":       "6TH",
	"SEVENTH":     "7TH",
	"EIGHTH":      "8TH",
	"NINTH":       "9TH",
	"TENTH":       "10TH",
	"ELEVENTH":    "11TH",
	"TWELFTH":     "12TH",
	"THIRTEENTH":  "13TH",
	"FOURTEENTH":  "14TH",
	"FIFTEENTH":   "15TH",
	"SIXTEENTH":   "16TH",
	"SEVENTEENTH": "17TH",
	"EIGHTEENTH":  "18TH",
	"NINETEENTH":  "19TH",
	"TWENTIETH":   "20TH",
}

// NormalizeNameAndAddress builds the identity key used to aggregate records that refer to
// the same person or organization. The result is "<name>, <address>", or just the name
// when no address is given.
func NormalizeNameAndAddress(name, address string) string {
	n := normalizeName(name)
	a := normalizeAddress(address)
	if a == "" {
		return n
	}
	return n + ", " + a
}

func normalizeName(s string) string {
	s = strings.ToUpper(foldAccents(s))
	s = commaRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	s = courtesyTitle.ReplaceAllString(s, "")
	s = conjunction.ReplaceAllString(s, "&")
	s = leadingThe.ReplaceAllString(s, "")
	s = corporateSuffix.ReplaceAllString(s, "")
	s = ampersand.ReplaceAllString(s, "&")
	s = hyphenRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func normalizeAddress(s string) string {
	s = strings.ToUpper(foldAccents(s))
	s = commaRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	// A zip is only dropped after a state so "PO BOX 12345" keeps its number.
	s = trailingZip.ReplaceAllString(s, "$1")
	s = noiseChars.ReplaceAllString(s, "")
	s = unitMarker.ReplaceAllString(s, " # ")
	s = directionPair.ReplaceAllString(s, "$1$2")
	s = capitolPrefix.ReplaceAllStringFunc(s, func(m string) string {
		return m[:1] + " CAPITOL"
	})
	s = eyeStreet.ReplaceAllString(s, "I $1")
	s = queStreet.ReplaceAllString(s, "Q $1")
	s = strings.TrimSpace(s)
	for _, st := range stateNames {
		s = st.pattern.ReplaceAllString(s, st.abbr)
	}
	s = nonWord.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if abbr, ok := streetTypes[tok]; ok {
			tokens[i] = abbr
		} else if abbr, ok := ordinals[tok]; ok {
			tokens[i] = abbr
		}
	}
	return strings.Join(dropRepeatedTail(tokens), " ")
}

// dropRepeatedTail removes a city/state run printed twice at the end,
// e.g. "WASHINGTON DC WASHINGTON DC".
func dropRepeatedTail(tokens []string) []string {
	for k := 3; k >= 1; k-- {
		n := len(tokens)
		if n < 2*k {
			continue
		}
		if equalTokens(tokens[n-2*k:n-k], tokens[n-k:]) {
			return dropRepeatedTail(tokens[:n-k])
		}
	}
	return tokens
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// foldAccents strips combining marks so "José" and "Jose" produce the same key.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
