// Package fixtures renders synthetic report text in the shape pdftotext -layout produces,
// for tests across the filing packages.
package fixtures

import (
	"fmt"
	"strings"
)

// Column is one table column: its header title and the width reserved for it.
type Column struct {
	Title string
	Width int
}

// Table places values under fixed-width column titles.
type Table struct {
	Columns []Column
}

// Header renders the column header line.
func (t Table) Header() string {
	var b strings.Builder
	for i, c := range t.Columns {
		if i == len(t.Columns)-1 {
			b.WriteString(c.Title)
			break
		}
		b.WriteString(padRight(c.Title, c.Width))
	}
	return b.String()
}

// Line renders one physical line. values[i] is written at the start of column i; empty
// values leave the column blank.
func (t Table) Line(values ...string) string {
	buf := []rune(strings.Repeat(" ", t.width()+80))
	pos := 0
	for i, c := range t.Columns {
		if i < len(values) && values[i] != "" {
			copy(buf[pos:], []rune(values[i]))
		}
		pos += c.Width
	}
	return strings.TrimRight(string(buf), " ")
}

// Position returns the offset at which column i starts.
func (t Table) Position(i int) int {
	pos := 0
	for _, c := range t.Columns[:i] {
		pos += c.Width
	}
	return pos
}

func (t Table) width() int {
	w := 0
	for _, c := range t.Columns {
		w += c.Width
	}
	return w
}

// Page is one schedule page. Body holds every line after the column header, including
// the Subtotal line when the table ends on this page.
type Page struct {
	Schedule    string
	Description string
	Table       Table
	Body        []string
	// Raw replaces the whole page, header included, when set.
	Raw string
	// Number overrides the printed page number when non-zero.
	Number int
}

// Document is a whole report: two cover pages followed by schedule pages.
type Document struct {
	CommitteeID   string
	CommitteeName string
	// Deadline is printed on the cover as MM/DD/YYYY when set.
	Deadline string
	Pages    []Page
}

// Text renders the document with form feeds between pages.
func (d Document) Text() string {
	total := len(d.Pages) + 2

	cover := []string{
		"GOVERNMENT OF THE DISTRICT OF COLUMBIA\nOFFICE OF CAMPAIGN FINANCE\n\nREPORT OF RECEIPTS AND EXPENDITURES\n\n" +
			"Committee: " + d.CommitteeName + "\n" + d.deadlineLine(),
		"SUMMARY OF RECEIPTS AND EXPENDITURES\n\n    Total receipts this period          see schedules\n",
	}

	chunks := append([]string{}, cover...)
	for i, p := range d.Pages {
		if p.Raw != "" {
			chunks = append(chunks, p.Raw)
			continue
		}
		n := i + 3
		if p.Number != 0 {
			n = p.Number
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s - %s          Page %d of %d\n", d.CommitteeID, d.CommitteeName, n, total)
		fmt.Fprintf(&b, "SCHEDULE %s %s\n\n", p.Schedule, p.Description)
		if len(p.Table.Columns) > 0 {
			b.WriteString(p.Table.Header())
			b.WriteString("\n")
		}
		for _, line := range p.Body {
			b.WriteString(line)
			b.WriteString("\n")
		}
		chunks = append(chunks, b.String())
	}

	return strings.Join(chunks, "\f") + "\f"
}

func (d Document) deadlineLine() string {
	if d.Deadline == "" {
		return ""
	}
	return "Filing deadline: " + d.Deadline + "\n"
}

// Subtotal renders the line that closes a table.
func Subtotal(amount string) string {
	return "                                        Subtotal:                " + amount
}

// ContributionTable is the column layout of an individual contributions schedule.
func ContributionTable() Table {
	return Table{Columns: []Column{
		{"#", 5},
		{"Contributor Name/Address", 40},
		{"Employer Name/Address", 36},
		{"Occupation", 26},
		{"Mode of Payment", 18},
		{"Receipt Date", 16},
		{"Amount", 16},
	}}
}

// ExpenditureTable is the column layout of an ordinary expenditures schedule.
func ExpenditureTable() Table {
	return Table{Columns: []Column{
		{"#", 5},
		{"Business Name/Address", 40},
		{"Purpose of Expenditure", 32},
		{"Date", 16},
		{"Amount", 16},
	}}
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s + "  "
	}
	return s + strings.Repeat(" ", width-n)
}
