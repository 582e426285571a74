package rows

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/layout"
)

// MaxContinuationLines is how many physical lines a row may wrap onto after its first.
const MaxContinuationLines = 5

var (
	rowStart     = regexp.MustCompile(`^\d`)
	subtotalLine = regexp.MustCompile(`^\s*Subtotal`)
)

// FieldClass says how a field behaves when its value wraps onto continuation lines.
type FieldClass int

const (
	// ClassFixed fields never wrap.
	ClassFixed FieldClass = iota
	// ClassAddress fields wrap line by line; pieces are joined with newlines.
	ClassAddress
	// ClassFreeText fields wrap like prose; pieces are joined with a space.
	ClassFreeText
)

var freeTextFields = map[string]bool{
	"occupation":                  true,
	"reason":                      true,
	"mode_of_payment":             true,
	"equipment_short_description": true,
	"purpose_of_expenditure":      true,
}

// Classify returns the wrap behaviour of a field.
func Classify(name string) FieldClass {
	if freeTextFields[name] {
		return ClassFreeText
	}
	if strings.Contains(name, "address") ||
		strings.Contains(name, "business") ||
		strings.Contains(name, "individual") ||
		strings.HasSuffix(name, "_name") {
		return ClassAddress
	}
	return ClassFixed
}

// AddressAlias returns the field that receives continuation text for an address-like field.
// A name column's overflow is the address printed beneath the name.
func AddressAlias(name string) string {
	if name == "individual" {
		return "payee_address"
	}
	if strings.HasSuffix(name, "_name") && !strings.Contains(name, "_address") {
		return strings.TrimSuffix(name, "_name") + "_address"
	}
	return name
}

// Assemble groups the table body of one page into rows. body holds the lines after the
// column header; l is the layout derived from that header.
//
// A row starts at a line beginning with a digit and takes every following line up to the
// next such line or a Subtotal line. The table must end at a Subtotal line.
func Assemble(body []string, l layout.Layout) ([]*Row, error) {
	i := 0
	for i < len(body) && strings.TrimSpace(body[i]) == "" {
		i++
	}

	var out []*Row
	for i < len(body) && rowStart.MatchString(body[i]) {
		row, err := startRow(body[i], l)
		if err != nil {
			return nil, err
		}
		i++

		continuations := 0
		for i < len(body) && !rowStart.MatchString(body[i]) && !subtotalLine.MatchString(body[i]) {
			line := body[i]
			i++
			if strings.TrimSpace(line) == "" {
				continue
			}
			continuations++
			if continuations > MaxContinuationLines {
				return nil, common.Errorf(common.KindUnexpectedContinuation,
					"row wraps onto more lines than the form allows").WithRaw(line)
			}
			if err := mergeContinuation(row, line, l); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}

	rest := strings.Join(body[i:], "\n")
	if !subtotalLine.MatchString(rest) {
		return nil, common.Errorf(common.KindTrailingContent,
			"table is not terminated by a Subtotal line").WithRaw(firstNonBlank(body[i:]))
	}

	return out, nil
}

func startRow(line string, l layout.Layout) (*Row, error) {
	row := NewRow()
	row.Raw = []string{line}
	values := l.Slice(line)
	for i, f := range l.Fields() {
		row.Set(f.Name, values[i])
	}
	if row.Get(layout.LineNumberField) == "" {
		return nil, common.Errorf(common.KindMissingLineNumber, "row has no line number").
			WithField(layout.LineNumberField).
			WithRaw(line)
	}
	return row, nil
}

func mergeContinuation(row *Row, line string, l layout.Layout) error {
	row.Raw = append(row.Raw, line)
	values := l.Slice(line)
	for i, f := range l.Fields() {
		v := values[i]
		if v == "" {
			continue
		}
		switch Classify(f.Name) {
		case ClassAddress:
			row.Append(AddressAlias(f.Name), v, "\n")
		case ClassFreeText:
			row.Append(f.Name, v, " ")
		default:
			return common.Errorf(common.KindUnexpectedContinuation,
				"field does not wrap but has a value on a continuation line").
				WithField(f.Name).
				WithRaw(line)
		}
	}
	return nil
}

func firstNonBlank(lines []string) string {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
