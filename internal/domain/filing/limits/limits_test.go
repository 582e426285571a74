package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
)

func contribution(name, key, amount string) *normalizer.Contribution {
	return &normalizer.Contribution{
		ContributorName: name,
		Normalized:      key,
		Amount:          normalizer.FixAmount(amount),
	}
}

func TestAggregate(t *testing.T) {
	records := []normalizer.Record{
		contribution("Jane Doe", "JANE DOE, 1 MAIN ST NW WASHINGTON DC", "$1,200.00"),
		contribution("Ms. Jane Doe", "JANE DOE, 1 MAIN ST NW WASHINGTON DC", "$900.50"),
		contribution("Bob Ray", "BOB RAY, 9 K ST NW WASHINGTON DC", "$50.00"),
		contribution("Bob Ray", "BOB RAY, 9 K ST NW WASHINGTON DC", "N/A"),
		&normalizer.Expenditure{PayeeName: "Print Shop", Normalized: "PRINT SHOP", Amount: normalizer.FixAmount("$5,000.00")},
	}

	summary := Aggregate(records, 200000)

	assert.Equal(t, int64(200000), summary.Limit.Amount())
	assert.Equal(t, 1, summary.Unpriced)
	require.Len(t, summary.Totals, 2)

	jane := summary.Totals[0]
	assert.Equal(t, "JANE DOE, 1 MAIN ST NW WASHINGTON DC", jane.Key)
	assert.Equal(t, []string{"Jane Doe", "Ms. Jane Doe"}, jane.Names)
	assert.Equal(t, 2, jane.Count)
	assert.Equal(t, int64(210050), jane.Amount.Amount())
	assert.True(t, jane.OverLimit)
	assert.Equal(t, int64(10050), jane.Excess.Amount())

	bob := summary.Totals[1]
	assert.Equal(t, int64(5000), bob.Amount.Amount())
	assert.False(t, bob.OverLimit)
	assert.True(t, bob.Excess.IsZero())

	over := summary.OverLimit()
	require.Len(t, over, 1)
	assert.Equal(t, jane.Key, over[0].Key)
	assert.Empty(t, summary.Duplicates)
}

func TestAggregate_AtLimitIsAllowed(t *testing.T) {
	summary := Aggregate([]normalizer.Record{
		contribution("Jane Doe", "JANE DOE", "$2,000.00"),
	}, 200000)

	assert.Empty(t, summary.OverLimit())
}

func TestNearDuplicates(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want [][]string
	}{
		{
			name: "one letter apart",
			keys: []string{"JANE DOE, 1 MAIN ST NW WASHINGTON DC", "JANE DOW, 1 MAIN ST NW WASHINGTON DC"},
			want: [][]string{{"JANE DOE, 1 MAIN ST NW WASHINGTON DC", "JANE DOW, 1 MAIN ST NW WASHINGTON DC"}},
		},
		{
			name: "different first word",
			keys: []string{"JANE DOE", "JANS DOE"},
			want: nil,
		},
		{
			name: "too far apart",
			keys: []string{"JANE DOE, 1 MAIN ST", "JANE DOE, 14 OAK AVE"},
			want: nil,
		},
		{
			name: "chained",
			keys: []string{"ACME CO", "ACME COR", "ACME CORP", "BOB RAY"},
			want: [][]string{{"ACME CO", "ACME COR", "ACME CORP"}},
		},
		{
			name: "repeated key",
			keys: []string{"BOB RAY", "BOB RAY"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearDuplicates(tt.keys))
		})
	}
}
