package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/committee"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/fixtures"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/parser"
)

func generatedReport(t *testing.T, contributions, expenditures int) *parser.Report {
	t.Helper()
	doc, _, _ := fixtures.NewGeneratorWithSeed(11).Report(contributions, expenditures)
	report, err := parser.NewParser(parser.DefaultConfig()).Parse(doc.Text())
	require.NoError(t, err)
	return report
}

func TestSaveReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := generatedReport(t, 2, 1)
	filing := &Filing{ID: uuid.New(), Fingerprint: "abc123", SourcePath: "inbox/report.pdf"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO filings`).
		WithArgs(filing.ID, "abc123", report.CommitteeID, report.CommitteeName, pgxmock.AnyArg(),
			"inbox/report.pdf", 2, 3).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"contributions"}, contributionColumns).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"expenditures"}, expenditureColumns).WillReturnResult(1)
	mock.ExpectCommit()

	repo := NewPostgresFilingRepository(mock)
	require.NoError(t, repo.SaveReport(context.Background(), filing, report))

	assert.Equal(t, report.CommitteeID, filing.CommitteeID)
	assert.Equal(t, 3, filing.RecordCount)
	assert.Equal(t, 2, filing.PageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_NoExpenditures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := generatedReport(t, 1, 0)
	filing := &Filing{Fingerprint: "def456"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO filings`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"contributions"}, contributionColumns).WillReturnResult(1)
	mock.ExpectCommit()

	repo := NewPostgresFilingRepository(mock)
	require.NoError(t, repo.SaveReport(context.Background(), filing, report))

	assert.NotEqual(t, uuid.Nil, filing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := generatedReport(t, 1, 1)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO filings`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	repo := NewPostgresFilingRepository(mock)
	err = repo.SaveReport(context.Background(), &Filing{Fingerprint: "dup"}, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert filing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilingExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("abc123").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresFilingRepository(mock)
	exists, err := repo.FilingExists(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCommittees(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name FROM committees`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow("OCF-1", "Friends of Jane Doe").
			AddRow("OCF-2", "Ward 6 Democrats"))

	repo := NewPostgresFilingRepository(mock)
	committees, err := repo.ListCommittees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []committee.Committee{
		{ID: "OCF-1", Name: "Friends of Jane Doe"},
		{ID: "OCF-2", Name: "Ward 6 Democrats"},
	}, committees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCommittee(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := committee.Committee{ID: "OCF-1", Name: "Friends of Jane Doe"}
	mock.ExpectExec(`INSERT INTO committees`).
		WithArgs("OCF-1", "Friends of Jane Doe", "FRIENDS OF JANE DOE").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresFilingRepository(mock)
	require.NoError(t, repo.UpsertCommittee(context.Background(), c))
	assert.Error(t, repo.UpsertCommittee(context.Background(), committee.Committee{Name: "No ID"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRows(t *testing.T) {
	id := uuid.New()
	c := &normalizer.Contribution{
		Schedule: "A", LineNumber: 1, Variant: normalizer.ContributionIndividual,
		ContributorName: "Jane Doe", Amount: normalizer.FixAmount("N/A"), Normalized: "JANE DOE",
	}
	rows := contributionRows(id, []*normalizer.Contribution{c})
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(contributionColumns))
	assert.Equal(t, "N/A", rows[0][12])
	assert.Nil(t, rows[0][13])

	e := &normalizer.Expenditure{Schedule: "B", LineNumber: 2, Amount: normalizer.FixAmount("$1,250.50")}
	erows := expenditureRows(id, []*normalizer.Expenditure{e})
	require.Len(t, erows[0], len(expenditureColumns))
	cents := erows[0][9].(*int64)
	assert.Equal(t, int64(125050), *cents)
}
