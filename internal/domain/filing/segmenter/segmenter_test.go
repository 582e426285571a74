package segmenter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/common"
)

const cover = "COVER PAGE\f SUMMARY PAGE\f"

func page(n int, code, description string, lines ...string) string {
	var b strings.Builder
	b.WriteString("OCF-123 - Friends of Jane          Page ")
	b.WriteString(itoa(n))
	b.WriteString(" of 9\nSCHEDULE ")
	b.WriteString(code)
	b.WriteString(" ")
	b.WriteString(description)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestSegment(t *testing.T) {
	s := New(DefaultOptions())

	t.Run("row page", func(t *testing.T) {
		text := cover + page(3, "A", "Contributions", "", "#   Name      Amount", "1   Jane      $5.00", "Subtotal") + "\f"

		doc, err := s.Segment(text)
		require.NoError(t, err)
		assert.Equal(t, "OCF-123", doc.CommitteeID)
		assert.Equal(t, "Friends of Jane", doc.CommitteeName)
		assert.Equal(t, "COVER PAGE\f SUMMARY PAGE", doc.Cover)
		require.Len(t, doc.Pages, 1)

		p := doc.Pages[0]
		assert.Equal(t, 3, p.Number)
		assert.Equal(t, 9, p.Total)
		assert.Equal(t, "A", p.Schedule)
		assert.Equal(t, "A", p.Letter())
		assert.Equal(t, "Contributions", p.Description)
		assert.Equal(t, DispositionRows, p.Disposition)
		assert.Equal(t, "#   Name      Amount", p.Header)
		assert.Equal(t, []string{"1   Jane      $5.00", "Subtotal", ""}, p.Body)
	})

	t.Run("header on one line", func(t *testing.T) {
		text := cover + "OCF-9 - Committee  Page 3 of 3  SCHEDULE B-1 Equipment\n#  Source  Amount\nSubtotal\n"

		doc, err := s.Segment(text)
		require.NoError(t, err)
		assert.Equal(t, "B1", doc.Pages[0].Schedule)
		assert.Equal(t, "Equipment", doc.Pages[0].Description)
	})

	t.Run("dispositions", func(t *testing.T) {
		text := cover +
			page(3, "A2", "Public Funds") + "\f" +
			page(4, "B", "Offsets to Expenditures") + "\f" +
			"\n   THIS PAGE INTENTIONALLY LEFT BLANK\n\f" +
			"   \n\f" +
			page(6, "D", "Debts Owed", "  anything at all") + "\f"

		doc, err := s.Segment(text)
		require.NoError(t, err)
		require.Len(t, doc.Pages, 4)
		assert.Equal(t, DispositionDropped, doc.Pages[0].Disposition)
		assert.Equal(t, DispositionDropped, doc.Pages[1].Disposition)
		assert.Equal(t, DispositionBoilerplate, doc.Pages[2].Disposition)
		assert.Equal(t, 5, doc.Pages[2].Number)
		assert.Equal(t, DispositionMetadata, doc.Pages[3].Disposition)
		assert.Empty(t, doc.Pages[3].Body)
	})

	t.Run("last committee name wins", func(t *testing.T) {
		second := strings.Replace(page(4, "C", "Loans"), "Friends of Jane", "Friends of Jane Doe", 1)
		doc, err := s.Segment(cover + page(3, "C", "Loans") + "\f" + second)
		require.NoError(t, err)
		assert.Equal(t, "Friends of Jane Doe", doc.CommitteeName)
	})
}

func TestSegment_Errors(t *testing.T) {
	s := New(DefaultOptions())

	tests := []struct {
		name string
		text string
		kind common.ErrorKind
		page int
	}{
		{"unexpected page number", cover + page(3, "C", "x") + "\f" + page(5, "C", "x"), common.KindSequence, 5},
		{"unrecognized page", cover + "random text\n", common.KindFormat, 3},
		{"row page without column header", cover + page(3, "A", "Contributions", "1  Jane"), common.KindFormat, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Segment(tt.text)
			require.Error(t, err)

			var pe *common.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.page, pe.Page)
		})
	}

	t.Run("sentinel", func(t *testing.T) {
		_, err := s.Segment(cover + page(4, "C", "x"))
		assert.True(t, errors.Is(err, common.ErrSequence))
	})
}

func TestSegment_CustomOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipPages = 0
	opts.FirstPage = 1
	opts.AdministrativeCodes = []string{"b-9"}
	opts.BoilerplatePhrases = []string{"nothing to see"}

	doc, err := New(opts).Segment(page(1, "B9", "Misc") + "\f" + "NOTHING TO SEE here")
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, DispositionDropped, doc.Pages[0].Disposition)
	assert.Equal(t, DispositionBoilerplate, doc.Pages[1].Disposition)
	assert.Empty(t, doc.Cover)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "A6", NormalizeCode("a-6"))
	assert.Equal(t, "B", NormalizeCode(" B "))
}
