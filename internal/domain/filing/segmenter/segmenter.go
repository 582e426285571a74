// Package segmenter splits the text of a campaign-finance report into pages and classifies
// each page by its schedule.
//
// pdftotext separates pages with a form feed. Each report page after the two cover pages
// carries a header of the form
//
//	<committee id> - <committee name>      Page <n> of <total>
//	SCHEDULE <code> <description>
//
// followed by the column header and body of one table.
package segmenter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
)

// PageSeparator is the form feed pdftotext writes between pages.
const PageSeparator = "\f"

// Disposition records what the assembler should do with a page.
type Disposition string

const (
	// DispositionRows pages carry a contribution or expenditure table.
	DispositionRows Disposition = "rows"
	// DispositionMetadata pages belong to schedules with no layout rule; only the header is kept.
	DispositionMetadata Disposition = "metadata"
	// DispositionDropped pages belong to administrative schedules and are ignored.
	DispositionDropped Disposition = "dropped"
	// DispositionBoilerplate pages are intentionally empty.
	DispositionBoilerplate Disposition = "boilerplate"
)

var (
	pageHeader = regexp.MustCompile(
		`\A\s*(\S+) - (.+?)\s{2,}Page\s+(\d+)\s+of\s+(\d+)\s+SCHEDULE\s+([A-Za-z](?:-?[0-9A-Za-z]+)?)[ \t]*([^\n]*)`,
	)
	columnHeader = regexp.MustCompile(`^\s*#(\s|$)`)
)

// Page is one report page after the cover.
type Page struct {
	Number      int
	Total       int
	Schedule    string
	Description string
	Disposition Disposition
	// Header is the column header line of the page's table, empty for non-row pages.
	Header string
	// Body holds the lines after the column header.
	Body []string
}

// Letter returns the schedule letter, e.g. "A" for "A6".
func (p Page) Letter() string {
	if p.Schedule == "" {
		return ""
	}
	return p.Schedule[:1]
}

// Document is a report split into pages.
type Document struct {
	CommitteeID   string
	CommitteeName string
	// Cover holds the text of the skipped leading pages.
	Cover string
	Pages []Page
}

// Options tunes segmentation. The zero value is not useful; start from DefaultOptions.
type Options struct {
	// SkipPages is the number of leading cover pages that carry no schedule.
	SkipPages int
	// FirstPage is the page number expected on the first page after the cover.
	FirstPage int
	// BoilerplatePhrases mark a page without a header as intentionally empty.
	BoilerplatePhrases []string
	// AdministrativeCodes are schedule codes whose pages are dropped.
	AdministrativeCodes []string
	// AdministrativePhrases drop a page when found in the schedule description.
	AdministrativePhrases []string
}

// DefaultOptions returns the layout of the DC Report of Receipts and Expenditures.
func DefaultOptions() Options {
	return Options{
		SkipPages: 2,
		FirstPage: 3,
		BoilerplatePhrases: []string{
			"INTENTIONALLY LEFT BLANK",
			"CONTINUATION SHEET",
			"NO ACTIVITY TO REPORT",
		},
		AdministrativeCodes: []string{"A2", "A3", "A4"},
		AdministrativePhrases: []string{
			"PUBLIC FUND",
			"INTEREST",
			"OFFSET",
		},
	}
}

// Segmenter splits report text into pages. It is safe for concurrent use.
type Segmenter struct {
	opts        Options
	boilerplate *phraseMatcher
	admin       *phraseMatcher
	adminCodes  map[string]bool
}

// New creates a segmenter.
func New(opts Options) *Segmenter {
	codes := make(map[string]bool, len(opts.AdministrativeCodes))
	for _, c := range opts.AdministrativeCodes {
		codes[NormalizeCode(c)] = true
	}
	return &Segmenter{
		opts:        opts,
		boilerplate: newPhraseMatcher(opts.BoilerplatePhrases),
		admin:       newPhraseMatcher(opts.AdministrativePhrases),
		adminCodes:  codes,
	}
}

// Segment splits text into pages, validating page numbering.
func (s *Segmenter) Segment(text string) (*Document, error) {
	chunks := strings.Split(text, PageSeparator)

	doc := &Document{}
	skip := s.opts.SkipPages
	if skip > len(chunks) {
		skip = len(chunks)
	}
	doc.Cover = strings.Join(chunks[:skip], PageSeparator)

	expected := s.opts.FirstPage
	for _, chunk := range chunks[skip:] {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		m := pageHeader.FindStringSubmatchIndex(chunk)
		if m == nil {
			if s.boilerplate.matches(chunk) {
				doc.Pages = append(doc.Pages, Page{Number: expected, Disposition: DispositionBoilerplate})
				expected++
				continue
			}
			return nil, &common.ParseError{
				Kind:    common.KindFormat,
				Page:    expected,
				Message: "page header not recognized",
				RawData: firstLine(chunk),
			}
		}

		page, id, name, err := s.parsePage(chunk, m)
		if err != nil {
			return nil, err
		}
		if page.Number != expected {
			return nil, &common.ParseError{
				Kind:     common.KindSequence,
				Page:     page.Number,
				Schedule: page.Schedule,
				Message:  "expected page " + strconv.Itoa(expected) + ", found page " + strconv.Itoa(page.Number),
			}
		}
		if page.Number > page.Total {
			return nil, &common.ParseError{
				Kind:     common.KindSequence,
				Page:     page.Number,
				Schedule: page.Schedule,
				Message:  "page number exceeds declared total " + strconv.Itoa(page.Total),
			}
		}
		expected++

		if id != "" {
			doc.CommitteeID = id
		}
		if name != "" {
			doc.CommitteeName = name
		}
		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

func (s *Segmenter) parsePage(chunk string, m []int) (Page, string, string, error) {
	group := func(i int) string {
		return strings.TrimSpace(chunk[m[2*i]:m[2*i+1]])
	}

	number, _ := strconv.Atoi(group(3))
	total, _ := strconv.Atoi(group(4))
	page := Page{
		Number:      number,
		Total:       total,
		Schedule:    NormalizeCode(group(5)),
		Description: group(6),
	}
	page.Disposition = s.classify(page)

	if page.Disposition == DispositionRows {
		lines := strings.Split(chunk[m[1]:], "\n")
		idx := -1
		for i, line := range lines {
			if columnHeader.MatchString(line) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Page{}, "", "", &common.ParseError{
				Kind:     common.KindFormat,
				Page:     page.Number,
				Schedule: page.Schedule,
				Message:  "schedule page has no column header line",
			}
		}
		page.Header = strings.TrimRight(lines[idx], " \t\r")
		page.Body = trimCarriageReturns(lines[idx+1:])
	}

	return page, group(1), group(2), nil
}

func (s *Segmenter) classify(p Page) Disposition {
	if p.Letter() >= "C" {
		return DispositionMetadata
	}
	if s.adminCodes[p.Schedule] || s.admin.matches(p.Description) {
		return DispositionDropped
	}
	return DispositionRows
}

// NormalizeCode upper-cases a schedule code and strips hyphens: "a-6" becomes "A6".
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
}

func firstLine(chunk string) string {
	for _, line := range strings.Split(chunk, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func trimCarriageReturns(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line, "\r")
	}
	return out
}
