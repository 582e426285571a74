// Package service orchestrates report ingestion: extract, parse, resolve the committee,
// check contribution limits and persist.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/committee"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/extractor"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/limits"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/parser"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/repository"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/alert"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/storage"
)

var tracer = otel.Tracer("github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/service")

// DefaultLimitCents is the per-election individual contribution limit used when none is configured.
const DefaultLimitCents = 200000

// CommitteeResolver maps a printed committee name to a known committee.
type CommitteeResolver interface {
	Lookup(name string) (committee.Committee, bool, error)
}

// Alerter delivers operational alerts.
type Alerter interface {
	Send(ctx context.Context, msg *alert.Message) error
}

// PageCounter reads a PDF's page count.
type PageCounter func(path string) (int, error)

// Result is the outcome of processing one report.
type Result struct {
	FilingID    uuid.UUID            `json:"filing_id,omitempty"`
	Source      string               `json:"source,omitempty"`
	Fingerprint string               `json:"fingerprint"`
	Report      *parser.Report       `json:"report"`
	Committee   *committee.Committee `json:"committee,omitempty"`
	Limits      limits.Summary       `json:"limits"`
	// Duplicate is set when an identical report was already stored; nothing is saved again.
	Duplicate bool `json:"duplicate"`
}

// BatchItem is the outcome for one path of ProcessBatch.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// IngestSummary counts what an inbox run did with each file.
type IngestSummary struct {
	Processed  int
	Duplicates int
	Rejected   int
	Failed     int
}

// ProcessOptions carries per-report settings.
type ProcessOptions struct {
	// Deadline overrides the deadline printed on the cover.
	Deadline string
	// Source names where the text came from, for logs and the stored filing.
	Source string
}

// FilingService orchestrates report processing
type FilingService struct {
	extractor   extractor.TextExtractor
	parser      *parser.Parser
	repo        repository.FilingRepository // Optional: nil disables persistence
	committees  CommitteeResolver           // Optional: nil skips committee lookup
	storage     storage.Storage             // Optional: required by IngestInbox
	pageCounter PageCounter                 // Optional: nil skips the page check
	alerter     Alerter                     // Optional: nil disables alerts
	limitCents  int64
	workers     int
	logger      *slog.Logger
}

// NewFilingService creates a new filing service
func NewFilingService(ext extractor.TextExtractor, p *parser.Parser, logger *slog.Logger) *FilingService {
	return &FilingService{
		extractor:  ext,
		parser:     p,
		limitCents: DefaultLimitCents,
		workers:    4,
		logger:     logger,
	}
}

// WithRepository enables persistence of parsed reports
func (s *FilingService) WithRepository(repo repository.FilingRepository) *FilingService {
	s.repo = repo
	return s
}

// WithCommittees enables committee-name resolution
func (s *FilingService) WithCommittees(resolver CommitteeResolver) *FilingService {
	s.committees = resolver
	return s
}

// WithStorage sets the inbox used by IngestInbox
func (s *FilingService) WithStorage(store storage.Storage) *FilingService {
	s.storage = store
	return s
}

// WithPageCounter enables checking extracted text against the PDF's page count
func (s *FilingService) WithPageCounter(counter PageCounter) *FilingService {
	s.pageCounter = counter
	return s
}

// WithAlerter enables alerts for layout drift and stored reports with over-limit totals
func (s *FilingService) WithAlerter(a Alerter) *FilingService {
	s.alerter = a
	return s
}

// WithLimit sets the contribution limit in cents
func (s *FilingService) WithLimit(cents int64) *FilingService {
	if cents > 0 {
		s.limitCents = cents
	}
	return s
}

// WithWorkers sets how many reports ProcessBatch handles at once
func (s *FilingService) WithWorkers(n int) *FilingService {
	if n > 0 {
		s.workers = n
	}
	return s
}

// ProcessFile extracts the text of a PDF and processes it.
func (s *FilingService) ProcessFile(ctx context.Context, path string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "FilingService.ProcessFile", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	text, err := s.extractor.ExtractText(ctx, path)
	if err != nil {
		reportsProcessed.WithLabelValues(outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		return nil, fmt.Errorf("failed to extract report text: %w", err)
	}

	if s.pageCounter != nil {
		pages, err := s.pageCounter(path)
		if err != nil {
			s.logger.Warn("could not count pdf pages", slog.String("path", path), slog.Any("error", err))
		} else if err := extractor.VerifyPageCount(text, pages); err != nil {
			reportsProcessed.WithLabelValues(outcomeError).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "page count mismatch")
			return nil, fmt.Errorf("failed to verify extracted text: %w", err)
		}
	}

	return s.ProcessText(ctx, text, ProcessOptions{Source: path})
}

// ProcessText parses extracted report text, resolves its committee, totals contributions
// against the limit and stores the report unless an identical one is already stored.
func (s *FilingService) ProcessText(ctx context.Context, text string, opts ProcessOptions) (*Result, error) {
	ctx, span := tracer.Start(ctx, "FilingService.ProcessText", trace.WithAttributes(attribute.String("source", opts.Source)))
	defer span.End()

	return s.process(ctx, span, text, opts, s.repo != nil)
}

// Preview does everything ProcessText does except store the report.
func (s *FilingService) Preview(ctx context.Context, text string, opts ProcessOptions) (*Result, error) {
	ctx, span := tracer.Start(ctx, "FilingService.Preview", trace.WithAttributes(attribute.String("source", opts.Source)))
	defer span.End()

	return s.process(ctx, span, text, opts, false)
}

func (s *FilingService) process(ctx context.Context, span trace.Span, text string, opts ProcessOptions, persist bool) (*Result, error) {

	result := &Result{Source: opts.Source, Fingerprint: Fingerprint(text)}

	p := s.parser
	if opts.Deadline != "" {
		p = p.WithDeadline(opts.Deadline)
	}

	start := time.Now()
	report, err := p.Parse(text)
	parseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logParseError(opts.Source, err)
		s.alertDrift(ctx, opts.Source, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	result.Report = report

	contributions := report.Contributions()
	expenditures := report.Expenditures()
	recordsParsed.WithLabelValues(string(normalizer.KindContribution)).Add(float64(len(contributions)))
	recordsParsed.WithLabelValues(string(normalizer.KindExpenditure)).Add(float64(len(expenditures)))
	span.SetAttributes(
		attribute.String("committee", report.CommitteeName),
		attribute.Int("records", report.RecordCount()),
	)

	if s.committees != nil && report.CommitteeName != "" {
		c, ok, err := s.committees.Lookup(report.CommitteeName)
		if err != nil {
			s.logger.Warn("committee lookup failed",
				slog.String("committee", report.CommitteeName),
				slog.Any("error", err),
			)
		} else if ok {
			result.Committee = &c
		}
	}

	records := make([]normalizer.Record, 0, len(contributions))
	for _, c := range contributions {
		records = append(records, c)
	}
	result.Limits = limits.Aggregate(records, s.limitCents)

	if persist {
		if err := s.persist(ctx, result); err != nil {
			reportsProcessed.WithLabelValues(outcomeError).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			return nil, err
		}
	}

	if persist && !result.Duplicate {
		s.alertOverLimit(ctx, result)
	}

	outcome := outcomeParsed
	if result.Duplicate {
		outcome = outcomeDuplicate
	}
	reportsProcessed.WithLabelValues(outcome).Inc()

	s.logger.Info("report processed",
		slog.String("source", opts.Source),
		slog.String("committee", report.CommitteeName),
		slog.Int("contributions", len(contributions)),
		slog.Int("expenditures", len(expenditures)),
		slog.Int("over_limit", len(result.Limits.OverLimit())),
		slog.Bool("duplicate", result.Duplicate),
	)

	return result, nil
}

func (s *FilingService) persist(ctx context.Context, result *Result) error {
	exists, err := s.repo.FilingExists(ctx, result.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate filing: %w", err)
	}
	if exists {
		result.Duplicate = true
		return nil
	}

	report := result.Report
	if id := committeeID(result); id != "" {
		name := report.CommitteeName
		if result.Committee != nil {
			name = result.Committee.Name
		}
		if err := s.repo.UpsertCommittee(ctx, committee.Committee{ID: id, Name: name}); err != nil {
			return fmt.Errorf("failed to record committee: %w", err)
		}
	}

	filing := &repository.Filing{Fingerprint: result.Fingerprint, SourcePath: result.Source}
	if err := s.repo.SaveReport(ctx, filing, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	result.FilingID = filing.ID
	return nil
}

func committeeID(result *Result) string {
	if result.Report.CommitteeID != "" {
		return result.Report.CommitteeID
	}
	if result.Committee != nil {
		return result.Committee.ID
	}
	return ""
}

// ProcessBatch processes files concurrently, at most the configured number at a time.
// Items are returned in input order; a failed file does not stop the others. The returned
// error is non-nil only when ctx is cancelled.
func (s *FilingService) ProcessBatch(ctx context.Context, paths []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return err
			}
			items[i].Result, items[i].Err = s.ProcessFile(ctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, fmt.Errorf("batch interrupted: %w", err)
	}
	return items, nil
}

// IngestInbox processes every PDF in the inbox. Stored and duplicate reports move to the
// processed folder. Reports that fail to parse or whose text is missing pages move to the
// rejected folder. Files that fail for any other reason stay in the inbox for the next run.
func (s *FilingService) IngestInbox(ctx context.Context) (IngestSummary, error) {
	var summary IngestSummary
	if s.storage == nil {
		return summary, errors.New("ingest requires storage")
	}

	files, err := s.storage.List(ctx, storage.FolderInbox)
	if err != nil {
		return summary, fmt.Errorf("failed to list inbox: %w", err)
	}
	if len(files) == 0 {
		return summary, nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = s.storage.LocalPath(f)
	}

	items, batchErr := s.ProcessBatch(ctx, paths)
	for i, item := range items {
		file := files[i]
		switch {
		case item.Err == nil:
			if item.Result.Duplicate {
				summary.Duplicates++
			} else {
				summary.Processed++
			}
			s.move(ctx, file, storage.FolderProcessed)
		case common.IsDataDrift(item.Err), errors.Is(item.Err, extractor.ErrPageCountMismatch):
			summary.Rejected++
			s.move(ctx, file, storage.FolderRejected)
		default:
			summary.Failed++
		}
	}

	s.logger.Info("inbox ingest completed",
		slog.Int("processed", summary.Processed),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("rejected", summary.Rejected),
		slog.Int("failed", summary.Failed),
	)
	return summary, batchErr
}

func (s *FilingService) move(ctx context.Context, file *storage.FileInfo, to storage.Folder) {
	if _, err := s.storage.Move(ctx, file.ID, storage.FolderInbox, to); err != nil {
		s.logger.Error("failed to move report",
			slog.String("file", file.Name),
			slog.String("to", string(to)),
			slog.Any("error", err),
		)
	}
}

func (s *FilingService) logParseError(source string, err error) {
	kind, ok := common.KindOf(err)
	if !ok {
		reportsProcessed.WithLabelValues(outcomeError).Inc()
		s.logger.Error("report parse failed", slog.String("source", source), slog.Any("error", err))
		return
	}

	reportsProcessed.WithLabelValues(outcomeDrift).Inc()
	parseErrors.WithLabelValues(string(kind)).Inc()

	attrs := []any{slog.String("source", source), slog.String("kind", string(kind))}
	var pe *common.ParseError
	if errors.As(err, &pe) {
		attrs = append(attrs,
			slog.Int("page", pe.Page),
			slog.String("schedule", pe.Schedule),
			slog.Int("line", pe.Line),
			slog.String("raw", pe.RawData),
		)
	}
	attrs = append(attrs, slog.Any("error", err))
	s.logger.Warn("report layout drift", attrs...)
}

func (s *FilingService) alertDrift(ctx context.Context, source string, err error) {
	var pe *common.ParseError
	if s.alerter == nil || !errors.As(err, &pe) {
		return
	}
	s.sendAlert(ctx, &alert.Message{
		Title:    "report layout drift",
		Body:     pe.Error(),
		Severity: alert.SeverityWarning,
		Data: map[string]any{
			"source":   source,
			"kind":     string(pe.Kind),
			"page":     pe.Page,
			"schedule": pe.Schedule,
			"line":     pe.Line,
		},
	})
}

func (s *FilingService) alertOverLimit(ctx context.Context, result *Result) {
	over := result.Limits.OverLimit()
	if s.alerter == nil || len(over) == 0 {
		return
	}
	contributors := make([]string, 0, len(over))
	for _, t := range over {
		contributors = append(contributors, fmt.Sprintf("%s (%s)", t.Key, t.Amount.Display()))
	}
	s.sendAlert(ctx, &alert.Message{
		Title:    "contributions over limit",
		Body:     fmt.Sprintf("%s reported %d contributors over %s", result.Report.CommitteeName, len(over), result.Limits.Limit.Display()),
		Severity: alert.SeverityInfo,
		Data: map[string]any{
			"filing_id":    result.FilingID.String(),
			"committee":    result.Report.CommitteeName,
			"contributors": contributors,
		},
	})
}

func (s *FilingService) sendAlert(ctx context.Context, msg *alert.Message) {
	if err := s.alerter.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send alert", slog.String("title", msg.Title), slog.Any("error", err))
	}
}

// Fingerprint identifies report text by content.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
