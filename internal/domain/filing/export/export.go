// Package export writes normalized records as CSV and XLSX for downstream tooling.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
)

const contributionsSheet = "Contributions"

// ContributionRow is the exported column subset of a contribution.
type ContributionRow struct {
	CommitteeName      string `csv:"committee_name" json:"committee_name"`
	ContributorName    string `csv:"contributor_name" json:"contributor_name"`
	ContributorAddress string `csv:"contributor_address" json:"contributor_address"`
	ContributorType    string `csv:"contributor_type" json:"contributor_type"`
	ContributionType   string `csv:"contribution_type" json:"contribution_type"`
	EmployerName       string `csv:"employer_name" json:"employer_name"`
	EmployerAddress    string `csv:"employer_address" json:"employer_address"`
	Occupation         string `csv:"occupation" json:"occupation"`
	ReceiptDate        string `csv:"receipt_date" json:"receipt_date"`
	Amount             string `csv:"amount" json:"amount"`
	Normalized         string `csv:"normalized" json:"normalized"`
}

// ExpenditureRow is the exported column subset of an expenditure.
type ExpenditureRow struct {
	CommitteeName        string `csv:"committee_name" json:"committee_name"`
	PayeeName            string `csv:"payee_name" json:"payee_name"`
	PayeeAddress         string `csv:"payee_address" json:"payee_address"`
	PurposeOfExpenditure string `csv:"purpose_of_expenditure" json:"purpose_of_expenditure"`
	PaymentDate          string `csv:"payment_date" json:"payment_date"`
	Amount               string `csv:"amount" json:"amount"`
	Normalized           string `csv:"normalized" json:"normalized"`
}

var contributionHeader = []any{
	"committee_name", "contributor_name", "contributor_address", "contributor_type", "contribution_type",
	"employer_name", "employer_address", "occupation", "receipt_date", "amount", "normalized",
}

// NewContributionRow selects the exported columns of c.
func NewContributionRow(c *normalizer.Contribution) ContributionRow {
	return ContributionRow{
		CommitteeName:      c.CommitteeName,
		ContributorName:    c.ContributorName,
		ContributorAddress: c.ContributorAddress,
		ContributorType:    c.ContributorType,
		ContributionType:   c.ContributionType,
		EmployerName:       c.EmployerName,
		EmployerAddress:    c.EmployerAddress,
		Occupation:         c.Occupation,
		ReceiptDate:        c.ReceiptDate,
		Amount:             formatAmount(c.Amount),
		Normalized:         c.Normalized,
	}
}

// NewExpenditureRow selects the exported columns of e.
func NewExpenditureRow(e *normalizer.Expenditure) ExpenditureRow {
	return ExpenditureRow{
		CommitteeName:        e.CommitteeName,
		PayeeName:            e.PayeeName,
		PayeeAddress:         e.PayeeAddress,
		PurposeOfExpenditure: e.PurposeOfExpenditure,
		PaymentDate:          e.PaymentDate,
		Amount:               formatAmount(e.Amount),
		Normalized:           e.Normalized,
	}
}

// WriteContributionsCSV writes a header row followed by one row per contribution.
func WriteContributionsCSV(w io.Writer, contributions []*normalizer.Contribution) error {
	rows := make([]ContributionRow, 0, len(contributions))
	for _, c := range contributions {
		rows = append(rows, NewContributionRow(c))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write contributions CSV: %w", err)
	}
	return nil
}

// WriteExpendituresCSV writes a header row followed by one row per expenditure.
func WriteExpendituresCSV(w io.Writer, expenditures []*normalizer.Expenditure) error {
	rows := make([]ExpenditureRow, 0, len(expenditures))
	for _, e := range expenditures {
		rows = append(rows, NewExpenditureRow(e))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write expenditures CSV: %w", err)
	}
	return nil
}

// WriteContributionsXLSX writes the contributions as a single-sheet workbook. Numeric
// amounts are stored as numbers.
func WriteContributionsXLSX(w io.Writer, contributions []*normalizer.Contribution) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contributionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(contributionsSheet, "A1", &contributionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, c := range contributions {
		row := NewContributionRow(c)
		var amount any = row.Amount
		if c.Amount.Numeric {
			amount = c.Amount.Value.InexactFloat64()
		}
		values := []any{
			row.CommitteeName, row.ContributorName, row.ContributorAddress, row.ContributorType,
			row.ContributionType, row.EmployerName, row.EmployerAddress, row.Occupation,
			row.ReceiptDate, amount, row.Normalized,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(contributionsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatAmount(a normalizer.Amount) string {
	if a.Numeric {
		return a.Value.StringFixed(2)
	}
	return a.Text
}
