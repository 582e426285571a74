// Package parser turns the pdftotext -layout rendering of a DC Report of Receipts and
// Expenditures into normalized contribution and expenditure records.
//
// Parsing is pure: the same text always yields the same report or the same error, and any
// error aborts the whole document.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/layout"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/rows"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/segmenter"
)

var (
	coverDeadline = regexp.MustCompile(`(?i)\b(?:due|deadline)\b[^\n\d]{0,40}(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ErrInvalidDeadline is returned when a deadline override is not a recognizable date.
var ErrInvalidDeadline = errors.New("invalid deadline")

// PageSummary describes one report page after the cover.
type PageSummary struct {
	Number      int                   `json:"number"`
	Schedule    string                `json:"schedule,omitempty"`
	Description string                `json:"description,omitempty"`
	Disposition segmenter.Disposition `json:"disposition"`
	Rows        int                   `json:"rows"`
}

// Report is the parsed content of one filing.
type Report struct {
	CommitteeID   string        `json:"committee_id"`
	CommitteeName string        `json:"committee_name"`
	Deadline      string        `json:"deadline"`
	Pages         []PageSummary `json:"pages"`
	// RowsBySchedule maps a schedule letter ("A", "B") to its records in report order.
	RowsBySchedule map[string][]normalizer.Record `json:"rows_by_schedule"`
}

// Contributions returns every contribution in report order.
func (r *Report) Contributions() []*normalizer.Contribution {
	var out []*normalizer.Contribution
	for _, letter := range r.letters() {
		for _, rec := range r.RowsBySchedule[letter] {
			if c, ok := rec.(*normalizer.Contribution); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Expenditures returns every expenditure in report order.
func (r *Report) Expenditures() []*normalizer.Expenditure {
	var out []*normalizer.Expenditure
	for _, letter := range r.letters() {
		for _, rec := range r.RowsBySchedule[letter] {
			if e, ok := rec.(*normalizer.Expenditure); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// RecordCount returns the number of records across all schedules.
func (r *Report) RecordCount() int {
	n := 0
	for _, recs := range r.RowsBySchedule {
		n += len(recs)
	}
	return n
}

func (r *Report) letters() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range r.Pages {
		if p.Disposition != segmenter.DispositionRows || p.Schedule == "" {
			continue
		}
		l := p.Schedule[:1]
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// ParserConfig configures the report parser.
type ParserConfig struct {
	// Deadline overrides the filing deadline found on the cover (MM/DD/YYYY or YYYY-MM-DD).
	Deadline  string
	Segmenter segmenter.Options
}

// DefaultConfig returns a parser config for the current DC report layout.
func DefaultConfig() ParserConfig {
	return ParserConfig{
		Segmenter: segmenter.DefaultOptions(),
	}
}

// Parser assembles reports. It holds no per-document state and is safe for concurrent use.
type Parser struct {
	config    ParserConfig
	segmenter *segmenter.Segmenter
}

// NewParser creates a new parser with the given configuration
func NewParser(config ParserConfig) *Parser {
	return &Parser{
		config:    config,
		segmenter: segmenter.New(config.Segmenter),
	}
}

// WithDeadline returns a parser that reports the given deadline instead of the cover's.
func (p *Parser) WithDeadline(deadline string) *Parser {
	cfg := p.config
	cfg.Deadline = deadline
	return &Parser{config: cfg, segmenter: p.segmenter}
}

// Parse parses a full report.
func (p *Parser) Parse(text string) (*Report, error) {
	doc, err := p.segmenter.Segment(text)
	if err != nil {
		return nil, err
	}

	deadline, err := p.deadline(doc.Cover)
	if err != nil {
		return nil, err
	}

	report := &Report{
		CommitteeID:    doc.CommitteeID,
		CommitteeName:  doc.CommitteeName,
		Deadline:       deadline,
		Pages:          make([]PageSummary, 0, len(doc.Pages)),
		RowsBySchedule: make(map[string][]normalizer.Record),
	}

	run := lineRun{}
	for _, page := range doc.Pages {
		summary := PageSummary{
			Number:      page.Number,
			Schedule:    page.Schedule,
			Description: page.Description,
			Disposition: page.Disposition,
		}

		switch page.Disposition {
		case segmenter.DispositionRows:
			records, err := p.parsePage(page, &run)
			if err != nil {
				return nil, err
			}
			letter := page.Letter()
			report.RowsBySchedule[letter] = append(report.RowsBySchedule[letter], records...)
			summary.Rows = len(records)
		case segmenter.DispositionBoilerplate:
			// An empty page does not interrupt a schedule run.
		default:
			run.reset()
		}

		report.Pages = append(report.Pages, summary)
	}

	for _, recs := range report.RowsBySchedule {
		for _, rec := range recs {
			setCommittee(rec, report.CommitteeName)
		}
	}

	return report, nil
}

func (p *Parser) parsePage(page segmenter.Page, run *lineRun) ([]normalizer.Record, error) {
	l := layout.Detect(page.Header)
	if l.IsEmpty() {
		return nil, &common.ParseError{
			Kind:     common.KindFormat,
			Page:     page.Number,
			Schedule: page.Schedule,
			Message:  "column header has no fields",
			RawData:  page.Header,
		}
	}

	raw, err := rows.Assemble(page.Body, l)
	if err != nil {
		return nil, common.Locate(err, page.Number, page.Schedule)
	}

	run.enter(page.Schedule)
	records := make([]normalizer.Record, 0, len(raw))
	for _, row := range raw {
		rec, err := normalizer.Normalize(page.Schedule, row)
		if err != nil {
			return nil, common.Locate(err, page.Number, page.Schedule)
		}
		if want := run.next(); rec.Line() != want {
			return nil, &common.ParseError{
				Kind:     common.KindSequence,
				Page:     page.Number,
				Schedule: page.Schedule,
				Line:     rec.Line(),
				Field:    layout.LineNumberField,
				Message:  fmt.Sprintf("expected line %d, found line %d", want, rec.Line()),
				RawData:  strings.Join(row.Raw, "\n"),
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *Parser) deadline(cover string) (string, error) {
	if p.config.Deadline != "" {
		d := normalizer.FixDate(p.config.Deadline)
		if !isoDate.MatchString(d) {
			return "", fmt.Errorf("%w %q: want MM/DD/YYYY or YYYY-MM-DD", ErrInvalidDeadline, p.config.Deadline)
		}
		return d, nil
	}
	if m := coverDeadline.FindStringSubmatch(cover); m != nil {
		return normalizer.FixDate(m[1]), nil
	}
	return "", nil
}

// lineRun tracks line-number continuity within a run of pages sharing a schedule code.
type lineRun struct {
	code string
	last int
}

func (r *lineRun) enter(code string) {
	if code != r.code {
		r.code = code
		r.last = 0
	}
}

func (r *lineRun) next() int {
	r.last++
	return r.last
}

func (r *lineRun) reset() {
	r.code = ""
	r.last = 0
}

func setCommittee(rec normalizer.Record, name string) {
	switch r := rec.(type) {
	case *normalizer.Contribution:
		r.CommitteeName = name
	case *normalizer.Expenditure:
		r.CommitteeName = name
	}
}
