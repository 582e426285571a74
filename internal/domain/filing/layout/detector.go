package layout

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// A column title is a run of non-space text that may contain single spaces.
	// Two or more spaces separate titles.
	titlePattern = regexp.MustCompile(`\S+(?: \S+)*`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
)

type title struct {
	name string
	pos  int
}

// Detect derives a Layout from the header line of one table.
//
// Every field except the first starts one character before its title, so values that sit
// slightly left of their header still land in the right column. The first field gives up
// that character at its right edge instead. The amount field starts a further three
// characters to the left, taken from the previous field.
func Detect(header string) Layout {
	titles := scanTitles(header)
	if len(titles) == 0 {
		return Layout{}
	}

	fields := make([]Field, len(titles))
	for i, t := range titles {
		start := t.pos
		if i > 0 {
			start--
		}
		if t.name == AmountField {
			start -= amountSlack
		}
		if i > 0 && start < fields[i-1].Start {
			start = fields[i-1].Start
		}
		if start < 0 {
			start = 0
		}
		fields[i] = Field{Name: t.name, Start: start}
	}

	width := utf8.RuneCountInString(strings.TrimRight(header, " \t\r"))
	for i := range fields {
		if i+1 < len(fields) {
			fields[i].Length = fields[i+1].Start - fields[i].Start
			continue
		}
		fields[i].Length = width - fields[i].Start + lastFieldPadding
	}

	return newLayout(fields)
}

func scanTitles(header string) []title {
	matches := titlePattern.FindAllStringIndex(header, -1)
	titles := make([]title, 0, len(matches))
	seen := make(map[string]int, len(matches))
	for _, m := range matches {
		name := FieldName(header[m[0]:m[1]])
		if name == "" {
			continue
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		titles = append(titles, title{
			name: name,
			pos:  utf8.RuneCountInString(header[:m[0]]),
		})
	}
	return titles
}

// FieldName converts a column title into its field name: "#" becomes line_number,
// anything after a "/" is dropped, and the rest is lower_snake_case.
func FieldName(token string) string {
	token = strings.TrimSpace(token)
	if token == "#" {
		return LineNumberField
	}
	if i := strings.Index(token, "/"); i >= 0 {
		token = token[:i]
	}
	name := nonAlnum.ReplaceAllString(strings.ToLower(token), "_")
	return strings.Trim(name, "_")
}
