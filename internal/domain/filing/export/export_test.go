package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
)

func sampleContributions() []*normalizer.Contribution {
	return []*normalizer.Contribution{
		{
			CommitteeName:      "Friends of Jane",
			ContributorName:    "John Smith",
			ContributorAddress: "123 Main St NW, Washington, DC 20001",
			ContributorType:    "Individual",
			ContributionType:   "Check",
			EmployerName:       "Acme",
			Occupation:         "Engineer",
			ReceiptDate:        "2020-03-04",
			Amount:             normalizer.FixAmount("$1,234.5"),
			Normalized:         "JOHN SMITH, 123 MAIN ST NW WASHINGTON DC",
		},
		{
			CommitteeName:   "Friends of Jane",
			ContributorName: "Acme PAC",
			ReceiptDate:     "2020-03-05",
			Amount:          normalizer.FixAmount("In-kind"),
			Normalized:      "ACME PAC",
		},
	}
}

func TestWriteContributionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteContributionsCSV(&buf, sampleContributions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "committee_name,contributor_name,contributor_address,contributor_type,contribution_type,"+
		"employer_name,employer_address,occupation,receipt_date,amount,normalized", lines[0])
	assert.Equal(t, `Friends of Jane,John Smith,"123 Main St NW, Washington, DC 20001",Individual,Check,`+
		`Acme,,Engineer,2020-03-04,1234.50,"JOHN SMITH, 123 MAIN ST NW WASHINGTON DC"`, lines[1])
	assert.Equal(t, "Friends of Jane,Acme PAC,,,,,,,2020-03-05,In-kind,ACME PAC", lines[2])
}

func TestWriteExpendituresCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExpendituresCSV(&buf, []*normalizer.Expenditure{{
		CommitteeName:        "Friends of Jane",
		PayeeName:            "Print Shop",
		PurposeOfExpenditure: "Flyers",
		PaymentDate:          "2020-04-01",
		Amount:               normalizer.FixAmount("$250"),
		Normalized:           "PRINT SHOP",
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Friends of Jane,Print Shop,,Flyers,2020-04-01,250.00,PRINT SHOP", lines[1])
}

func TestWriteContributionsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteContributionsXLSX(&buf, sampleContributions()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(contributionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "committee_name", rows[0][0])
	assert.Equal(t, "John Smith", rows[1][1])
	assert.Equal(t, "In-kind", rows[2][9])
	assert.Equal(t, "ACME PAC", rows[2][10])
}
