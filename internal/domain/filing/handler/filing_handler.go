package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/committee"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/export"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/limits"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/parser"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/service"
)

// ServiceName is the fully-qualified name of the filing RPC service.
const ServiceName = "filing.v1.FilingService"

const (
	ParseReportProcedure         = "/" + ServiceName + "/ParseReport"
	IngestReportProcedure        = "/" + ServiceName + "/IngestReport"
	ExportContributionsProcedure = "/" + ServiceName + "/ExportContributions"
)

// Export formats accepted by ExportContributions.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// FilingProcessor is the part of the filing service the handler calls.
type FilingProcessor interface {
	Preview(ctx context.Context, text string, opts service.ProcessOptions) (*service.Result, error)
	ProcessText(ctx context.Context, text string, opts service.ProcessOptions) (*service.Result, error)
}

// ParseReportRequest carries the pdftotext -layout rendering of one report.
type ParseReportRequest struct {
	Text     string `json:"text"`
	Deadline string `json:"deadline,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ParseReportResponse is the parsed report flattened for clients.
type ParseReportResponse struct {
	FilingID      string                   `json:"filing_id,omitempty"`
	Fingerprint   string                   `json:"fingerprint"`
	CommitteeID   string                   `json:"committee_id"`
	CommitteeName string                   `json:"committee_name"`
	Deadline      string                   `json:"deadline"`
	Committee     *committee.Committee     `json:"committee,omitempty"`
	Pages         []parser.PageSummary     `json:"pages"`
	Contributions []export.ContributionRow `json:"contributions"`
	Expenditures  []export.ExpenditureRow  `json:"expenditures"`
	// RowsBySchedule holds each schedule letter's records as parsed, in report order.
	RowsBySchedule map[string][]json.RawMessage `json:"rows_by_schedule"`
	Limits         limits.Summary               `json:"limits"`
	Duplicate      bool                         `json:"duplicate"`
}

// ExportContributionsRequest asks for a report's contributions as a file.
type ExportContributionsRequest struct {
	Text     string `json:"text"`
	Deadline string `json:"deadline,omitempty"`
	Format   string `json:"format"`
}

// ExportContributionsResponse holds the rendered file.
type ExportContributionsResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// FilingHandler handles filing service RPCs
type FilingHandler struct {
	filingSvc FilingProcessor
	logger    *slog.Logger
}

// NewFilingHandler creates a new filing handler
func NewFilingHandler(filingSvc FilingProcessor, logger *slog.Logger) *FilingHandler {
	return &FilingHandler{
		filingSvc: filingSvc,
		logger:    logger,
	}
}

// NewHandler mounts the filing procedures and returns the path prefix to route to them.
func NewHandler(h *FilingHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ParseReportProcedure, connect.NewUnaryHandler(ParseReportProcedure, h.ParseReport, opts...))
	mux.Handle(IngestReportProcedure, connect.NewUnaryHandler(IngestReportProcedure, h.IngestReport, opts...))
	mux.Handle(ExportContributionsProcedure, connect.NewUnaryHandler(ExportContributionsProcedure, h.ExportContributions, opts...))
	return "/" + ServiceName + "/", mux
}

// ParseReport parses a report without storing it.
func (h *FilingHandler) ParseReport(ctx context.Context, req *connect.Request[ParseReportRequest]) (*connect.Response[ParseReportResponse], error) {
	if strings.TrimSpace(req.Msg.Text) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("text is required"))
	}

	result, err := h.filingSvc.Preview(ctx, req.Msg.Text, service.ProcessOptions{
		Deadline: req.Msg.Deadline,
		Source:   req.Msg.Source,
	})
	if err != nil {
		return nil, h.toConnectError("failed to parse report", err)
	}

	resp, err := newParseReportResponse(result)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(resp), nil
}

// IngestReport parses a report and stores it unless an identical one was stored before.
func (h *FilingHandler) IngestReport(ctx context.Context, req *connect.Request[ParseReportRequest]) (*connect.Response[ParseReportResponse], error) {
	if strings.TrimSpace(req.Msg.Text) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("text is required"))
	}

	result, err := h.filingSvc.ProcessText(ctx, req.Msg.Text, service.ProcessOptions{
		Deadline: req.Msg.Deadline,
		Source:   req.Msg.Source,
	})
	if err != nil {
		return nil, h.toConnectError("failed to ingest report", err)
	}

	resp, err := newParseReportResponse(result)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(resp), nil
}

// ExportContributions renders a report's contributions as CSV or XLSX.
func (h *FilingHandler) ExportContributions(ctx context.Context, req *connect.Request[ExportContributionsRequest]) (*connect.Response[ExportContributionsResponse], error) {
	if strings.TrimSpace(req.Msg.Text) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("text is required"))
	}

	format := strings.ToLower(req.Msg.Format)
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported format %q", req.Msg.Format))
	}

	result, err := h.filingSvc.Preview(ctx, req.Msg.Text, service.ProcessOptions{Deadline: req.Msg.Deadline})
	if err != nil {
		return nil, h.toConnectError("failed to parse report", err)
	}

	var buf bytes.Buffer
	resp := &ExportContributionsResponse{Filename: exportFilename(result.Report, format)}
	switch format {
	case FormatXLSX:
		err = export.WriteContributionsXLSX(&buf, result.Report.Contributions())
		resp.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = export.WriteContributionsCSV(&buf, result.Report.Contributions())
		resp.ContentType = "text/csv"
	}
	if err != nil {
		h.logger.Error("failed to export contributions", slog.String("format", format), slog.Any("error", err))
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	resp.Content = buf.Bytes()

	return connect.NewResponse(resp), nil
}

func (h *FilingHandler) toConnectError(msg string, err error) error {
	if common.IsDataDrift(err) || errors.Is(err, parser.ErrInvalidDeadline) {
		h.logger.Warn(msg, slog.Any("error", err))
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	h.logger.Error(msg, slog.Any("error", err))
	return connect.NewError(connect.CodeInternal, err)
}

func newParseReportResponse(result *service.Result) (*ParseReportResponse, error) {
	report := result.Report
	resp := &ParseReportResponse{
		Fingerprint:    result.Fingerprint,
		CommitteeID:    report.CommitteeID,
		CommitteeName:  report.CommitteeName,
		Deadline:       report.Deadline,
		Committee:      result.Committee,
		Pages:          report.Pages,
		Contributions:  make([]export.ContributionRow, 0),
		Expenditures:   make([]export.ExpenditureRow, 0),
		RowsBySchedule: make(map[string][]json.RawMessage, len(report.RowsBySchedule)),
		Limits:         result.Limits,
		Duplicate:      result.Duplicate,
	}
	if result.FilingID != uuid.Nil {
		resp.FilingID = result.FilingID.String()
	}
	for _, c := range report.Contributions() {
		resp.Contributions = append(resp.Contributions, export.NewContributionRow(c))
	}
	for _, e := range report.Expenditures() {
		resp.Expenditures = append(resp.Expenditures, export.NewExpenditureRow(e))
	}
	for letter, records := range report.RowsBySchedule {
		rows := make([]json.RawMessage, 0, len(records))
		for _, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("failed to encode schedule %s row %d: %w", letter, rec.Line(), err)
			}
			rows = append(rows, data)
		}
		resp.RowsBySchedule[letter] = rows
	}
	return resp, nil
}

func exportFilename(report *parser.Report, format string) string {
	name := report.CommitteeID
	if name == "" {
		name = "report"
	}
	if report.Deadline != "" {
		name += "_" + report.Deadline
	}
	return name + "_contributions." + format
}
