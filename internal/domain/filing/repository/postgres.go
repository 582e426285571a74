// Package repository persists parsed filings in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/committee"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/parser"
)

// Pool is the subset of pgxpool.Pool the repository uses.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Filing describes one stored report.
type Filing struct {
	ID            uuid.UUID `json:"id"`
	Fingerprint   string    `json:"fingerprint"`
	CommitteeID   string    `json:"committee_id"`
	CommitteeName string    `json:"committee_name"`
	Deadline      string    `json:"deadline"`
	SourcePath    string    `json:"source_path"`
	PageCount     int       `json:"page_count"`
	RecordCount   int       `json:"record_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// FilingRepository stores filings and their records.
type FilingRepository interface {
	SaveReport(ctx context.Context, filing *Filing, report *parser.Report) error
	FilingExists(ctx context.Context, fingerprint string) (bool, error)
	ListCommittees(ctx context.Context) ([]committee.Committee, error)
	UpsertCommittee(ctx context.Context, c committee.Committee) error
}

var (
	contributionColumns = []string{
		"filing_id", "schedule", "line_number", "variant", "contributor_name", "contributor_address",
		"contributor_type", "contribution_type", "employer_name", "employer_address", "occupation",
		"receipt_date", "amount", "amount_cents", "normalized",
	}
	expenditureColumns = []string{
		"filing_id", "schedule", "line_number", "variant", "payee_name", "payee_address",
		"purpose", "payment_date", "amount", "amount_cents", "normalized",
	}
)

// PostgresFilingRepository implements FilingRepository using PostgreSQL
type PostgresFilingRepository struct {
	pool Pool
}

// NewPostgresFilingRepository creates a new PostgreSQL-backed filing repository
func NewPostgresFilingRepository(pool Pool) *PostgresFilingRepository {
	return &PostgresFilingRepository{pool: pool}
}

// SaveReport stores the filing row and every record of the report in one transaction.
// A filing with no ID gets a new one.
func (r *PostgresFilingRepository) SaveReport(ctx context.Context, filing *Filing, report *parser.Report) error {
	if filing.ID == uuid.Nil {
		filing.ID = uuid.New()
	}
	filing.CommitteeID = report.CommitteeID
	filing.CommitteeName = report.CommitteeName
	filing.Deadline = report.Deadline
	filing.PageCount = len(report.Pages)
	filing.RecordCount = report.RecordCount()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO filings (
			id, fingerprint, committee_id, committee_name, deadline,
			source_path, page_count, record_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		filing.ID, filing.Fingerprint, filing.CommitteeID, filing.CommitteeName, nullable(filing.Deadline),
		filing.SourcePath, filing.PageCount, filing.RecordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert filing: %w", err)
	}

	if rows := contributionRows(filing.ID, report.Contributions()); len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"contributions"}, contributionColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to insert contributions: %w", err)
		}
	}

	if rows := expenditureRows(filing.ID, report.Expenditures()); len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"expenditures"}, expenditureColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to insert expenditures: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit filing: %w", err)
	}
	return nil
}

// FilingExists reports whether a filing with the given content fingerprint is stored.
func (r *PostgresFilingRepository) FilingExists(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM filings WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check filing: %w", err)
	}
	return exists, nil
}

// ListCommittees returns every known committee ordered by name.
func (r *PostgresFilingRepository) ListCommittees(ctx context.Context) ([]committee.Committee, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM committees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list committees: %w", err)
	}
	defer rows.Close()

	var committees []committee.Committee
	for rows.Next() {
		var c committee.Committee
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan committee: %w", err)
		}
		committees = append(committees, c)
	}
	return committees, rows.Err()
}

// UpsertCommittee records a committee, updating its name when the id is known.
func (r *PostgresFilingRepository) UpsertCommittee(ctx context.Context, c committee.Committee) error {
	if c.ID == "" {
		return errors.New("committee id is required")
	}
	query := `
		INSERT INTO committees (id, name, normalized_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			normalized_key = EXCLUDED.normalized_key
	`
	if _, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Key()); err != nil {
		return fmt.Errorf("failed to upsert committee: %w", err)
	}
	return nil
}

func contributionRows(filingID uuid.UUID, contributions []*normalizer.Contribution) [][]any {
	rows := make([][]any, 0, len(contributions))
	for _, c := range contributions {
		rows = append(rows, []any{
			filingID, c.Schedule, c.LineNumber, string(c.Variant), c.ContributorName, c.ContributorAddress,
			c.ContributorType, c.ContributionType, c.EmployerName, c.EmployerAddress, c.Occupation,
			c.ReceiptDate, c.Amount.String(), cents(c.Amount), c.Normalized,
		})
	}
	return rows
}

func expenditureRows(filingID uuid.UUID, expenditures []*normalizer.Expenditure) [][]any {
	rows := make([][]any, 0, len(expenditures))
	for _, e := range expenditures {
		rows = append(rows, []any{
			filingID, e.Schedule, e.LineNumber, string(e.Variant), e.PayeeName, e.PayeeAddress,
			e.PurposeOfExpenditure, e.PaymentDate, e.Amount.String(), cents(e.Amount), e.Normalized,
		})
	}
	return rows
}

// cents returns nil for non-numeric amounts so the column stays NULL.
func cents(a normalizer.Amount) *int64 {
	v, ok := a.Cents()
	if !ok {
		return nil
	}
	return &v
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
