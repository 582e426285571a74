package fixtures

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// RowsPerPage is how many rows the generator prints before starting a new page.
const RowsPerPage = 8

// Contribution is one generated contribution, as printed and as it should normalize.
type Contribution struct {
	Line       int
	First      string
	Last       string
	Street     string
	City       string
	State      string
	Zip        string
	Employer   string
	Occupation string
	Mode       string
	Date       time.Time
	Amount     decimal.Decimal
}

// Name returns the printed contributor name.
func (c Contribution) Name() string {
	return c.First + " " + c.Last
}

// Expenditure is one generated ordinary expenditure.
type Expenditure struct {
	Line    int
	Payee   string
	Street  string
	City    string
	State   string
	Zip     string
	Purpose string
	Date    time.Time
	Amount  decimal.Decimal
}

// Generator produces realistic synthetic reports using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a random seed.
func NewGenerator() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// NewGeneratorWithSeed creates a generator with a fixed seed for reproducible output.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// CommitteeName returns a plausible committee name.
func (g *Generator) CommitteeName() string {
	return "Friends of " + g.word(g.faker.FirstName()) + " " + g.word(g.faker.LastName())
}

// CommitteeID returns an OCF-style committee identifier.
func (g *Generator) CommitteeID() string {
	return fmt.Sprintf("OCF-%05d", g.faker.Number(1, 99999))
}

// Contribution generates one individual contribution.
func (g *Generator) Contribution(line int) Contribution {
	return Contribution{
		Line:       line,
		First:      g.word(g.faker.FirstName()),
		Last:       g.word(g.faker.LastName()),
		Street:     g.street(),
		City:       g.city(),
		State:      g.faker.StateAbr(),
		Zip:        g.zip(),
		Employer:   clip(g.faker.Company(), 30),
		Occupation: clip(g.faker.JobTitle(), 22),
		Mode:       g.faker.RandomString([]string{"Check", "Credit Card", "Cash"}),
		Date:       g.faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)),
		Amount:     g.amount(1, 2000),
	}
}

// Expenditure generates one ordinary expenditure.
func (g *Generator) Expenditure(line int) Expenditure {
	return Expenditure{
		Line:    line,
		Payee:   clip(g.faker.Company(), 34),
		Street:  g.street(),
		City:    g.city(),
		State:   g.faker.StateAbr(),
		Zip:     g.zip(),
		Purpose: clip(g.faker.BuzzWord()+" services", 28),
		Date:    g.faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)),
		Amount:  g.amount(10, 5000),
	}
}

// Report builds a document with the requested number of contributions and expenditures,
// split across pages of RowsPerPage rows.
func (g *Generator) Report(contributions, expenditures int) (Document, []Contribution, []Expenditure) {
	doc := Document{
		CommitteeID:   g.CommitteeID(),
		CommitteeName: g.CommitteeName(),
		Deadline:      "01/31/2021",
	}

	cs := make([]Contribution, contributions)
	for i := range cs {
		cs[i] = g.Contribution(i + 1)
	}
	es := make([]Expenditure, expenditures)
	for i := range es {
		es[i] = g.Expenditure(i + 1)
	}

	table := ContributionTable()
	lines := make([][]string, len(cs))
	var total decimal.Decimal
	for i, c := range cs {
		lines[i] = ContributionLines(table, c)
		total = total.Add(c.Amount)
	}
	doc.Pages = append(doc.Pages, paginate("A", "Contributions from Individuals", table, lines, total)...)

	table = ExpenditureTable()
	lines = make([][]string, len(es))
	total = decimal.Zero
	for i, e := range es {
		lines[i] = ExpenditureLines(table, e)
		total = total.Add(e.Amount)
	}
	doc.Pages = append(doc.Pages, paginate("B", "Expenditures", table, lines, total)...)

	return doc, cs, es
}

// ContributionLines prints a contribution as a first line plus its address continuation lines.
func ContributionLines(t Table, c Contribution) []string {
	return []string{
		t.Line(fmt.Sprint(c.Line), c.Name(), c.Employer, c.Occupation, c.Mode, c.Date.Format("01/02/2006"), Dollars(c.Amount)),
		t.Line("", c.Street, "1 Employer Plaza"),
		t.Line("", c.City+", "+c.State+" "+c.Zip, "Washington, DC-20001"),
	}
}

// ExpenditureLines prints an expenditure as a first line plus its address continuation lines.
func ExpenditureLines(t Table, e Expenditure) []string {
	return []string{
		t.Line(fmt.Sprint(e.Line), e.Payee, e.Purpose, e.Date.Format("01/02/2006"), Dollars(e.Amount)),
		t.Line("", e.Street),
		t.Line("", e.City+", "+e.State+" "+e.Zip),
	}
}

// Dollars formats an amount the way the report prints it, e.g. $1,234.50.
func Dollars(d decimal.Decimal) string {
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String() + "." + frac
}

func paginate(code, description string, t Table, rowLines [][]string, total decimal.Decimal) []Page {
	var pages []Page
	for start := 0; start < len(rowLines) || start == 0; start += RowsPerPage {
		end := start + RowsPerPage
		if end >= len(rowLines) {
			end = len(rowLines)
		}
		page := Page{Schedule: code, Description: description, Table: t}
		for _, lines := range rowLines[start:end] {
			page.Body = append(page.Body, lines...)
		}
		page.Body = append(page.Body, "", Subtotal(Dollars(total)))
		pages = append(pages, page)
		if end == len(rowLines) {
			break
		}
	}
	return pages
}

func (g *Generator) street() string {
	return fmt.Sprintf("%d %s St NW", g.faker.Number(100, 9999), g.word(g.faker.LastName()))
}

func (g *Generator) city() string {
	return clip(g.word(g.faker.City()), 18)
}

func (g *Generator) zip() string {
	return fmt.Sprintf("%05d", g.faker.Number(10000, 99999))
}

func (g *Generator) amount(min, max int) decimal.Decimal {
	cents := g.faker.Number(min*100, max*100)
	return decimal.New(int64(cents), -2)
}

// word keeps the first whitespace-free token, so generated names satisfy the name pattern.
func (g *Generator) word(s string) string {
	fields := strings.Fields(strings.ReplaceAll(s, ",", ""))
	if len(fields) == 0 {
		return "Doe"
	}
	return fields[0]
}

func clip(s string, n int) string {
	s = strings.ReplaceAll(s, ",", "")
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}
