package normalizer

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
)

const suffixPattern = `(?:[Jj][Rr]|[Ss][Rr]|I{1,3}|IV|VI?)\.?`

var (
	personName  = regexp.MustCompile(`^(?:(\S+)\s+)?(?:(\S+)\s+)?(\S+(?:,?\s+` + suffixPattern + `)?)$`)
	suffixToken = regexp.MustCompile(`^` + suffixPattern + `$`)

	addressLastLine = regexp.MustCompile(`^(.+?),\s*([A-Za-z]{2})(?:-|\s+)(\d{5}(?:-\d{4})?)$`)
)

// ParseName splits "[First [Middle]] Last[ Suffix]" into its parts. The suffix stays
// with the last name.
func ParseName(s string) (Name, error) {
	s = strings.Join(strings.Fields(s), " ")
	m := personName.FindStringSubmatch(s)
	if m == nil {
		return Name{}, common.Errorf(common.KindNameFormat, "name does not match [First [Middle]] Last[ Suffix]").
			WithField("contributor_name").
			WithRaw(s)
	}

	n := Name{First: m[1], Middle: m[2], Last: m[3]}
	// "John Smith Jr" matches with Smith as middle name and "Smith Jr" with Smith as first
	// name; move it back onto the last name.
	switch {
	case n.Middle != "" && suffixToken.MatchString(n.Last):
		n.Last = n.Middle + " " + n.Last
		n.Middle = ""
	case n.First != "" && n.Middle == "" && suffixToken.MatchString(n.Last):
		n.Last = n.First + " " + n.Last
		n.First = ""
	}
	return n, nil
}

// ParseAddress decomposes a possibly multi-line address. The final line must read
// "<street and city>, <ST> <zip>"; earlier lines are street lines.
func ParseAddress(s string) (Address, error) {
	lines := nonBlankLines(s)
	if len(lines) == 0 {
		return Address{}, addressError(s)
	}

	last := lines[len(lines)-1]
	m := addressLastLine.FindStringSubmatch(last)
	if m == nil {
		return Address{}, addressError(last)
	}

	street := lines[:len(lines)-1]
	city := strings.TrimSpace(m[1])
	if i := strings.LastIndex(city, ","); i >= 0 {
		street = append(street, strings.TrimSpace(city[:i]))
		city = strings.TrimSpace(city[i+1:])
	}

	return Address{
		Street: strings.Join(street, ", "),
		City:   city,
		State:  strings.ToUpper(m[2]),
		Zip:    m[3],
	}, nil
}

func addressError(raw string) error {
	return common.Errorf(common.KindAddressFormat, "address does not end with <city>, <ST> <zip>").WithRaw(raw)
}

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// collapseLines joins the non-blank lines of s with ", ".
func collapseLines(s string) string {
	return strings.Join(nonBlankLines(s), ", ")
}

// splitNameBlock separates a name column that absorbed its wrapped address: the first
// line is the name, the rest belongs to the address.
func splitNameBlock(name, address string) (string, string) {
	lines := nonBlankLines(name)
	if len(lines) == 0 {
		return "", strings.TrimSpace(address)
	}
	rest := lines[1:]
	rest = append(rest, nonBlankLines(address)...)
	return lines[0], strings.Join(rest, "\n")
}
