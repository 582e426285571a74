// Package limits totals contributions per contributor identity and flags totals over the
// per-election limit and identity keys that likely name the same contributor.
package limits

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
	"github.com/FACorreiaa/dc-campaign-finance/pkg/money"
)

// MaxKeyDistance is the largest edit distance at which two identity keys are reported as
// possible duplicates.
const MaxKeyDistance = 2

// Total is the sum of one contributor's contributions.
type Total struct {
	Key       string       `json:"key"`
	Names     []string     `json:"names"`
	Count     int          `json:"count"`
	Amount    *money.Money `json:"amount"`
	OverLimit bool         `json:"over_limit"`
	Excess    *money.Money `json:"excess"`
}

// Summary is the result of Aggregate.
type Summary struct {
	Limit *money.Money `json:"limit"`
	// Totals is ordered by amount, largest first, then by key.
	Totals []Total `json:"totals"`
	// Unpriced counts contributions whose amount is not numeric; they are not totalled.
	Unpriced int `json:"unpriced"`
	// Duplicates groups distinct keys that likely name the same contributor.
	Duplicates [][]string `json:"duplicates,omitempty"`
}

// OverLimit returns the totals that exceed the limit.
func (s Summary) OverLimit() []Total {
	var out []Total
	for _, t := range s.Totals {
		if t.OverLimit {
			out = append(out, t)
		}
	}
	return out
}

// Aggregate totals the contributions among records by identity key. Expenditures are ignored.
func Aggregate(records []normalizer.Record, limitCents int64) Summary {
	limit := money.New(limitCents)
	summary := Summary{Limit: limit}

	byKey := make(map[string]*Total)
	var keys []string
	for _, rec := range records {
		c, ok := rec.(*normalizer.Contribution)
		if !ok {
			continue
		}
		cents, ok := c.Amount.Cents()
		if !ok {
			summary.Unpriced++
			continue
		}
		t, seen := byKey[c.Normalized]
		if !seen {
			t = &Total{Key: c.Normalized, Amount: money.Zero()}
			byKey[c.Normalized] = t
			keys = append(keys, c.Normalized)
		}
		t.Count++
		t.Amount = t.Amount.Add(money.New(cents))
		if !contains(t.Names, c.ContributorName) {
			t.Names = append(t.Names, c.ContributorName)
		}
	}

	for _, k := range keys {
		t := byKey[k]
		t.Excess = t.Amount.Excess(limit)
		t.OverLimit = t.Excess.IsPositive()
		summary.Totals = append(summary.Totals, *t)
	}
	sort.SliceStable(summary.Totals, func(i, j int) bool {
		a, b := summary.Totals[i], summary.Totals[j]
		if cmp := a.Amount.Compare(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Key < b.Key
	})

	summary.Duplicates = NearDuplicates(keys)
	return summary
}

// NearDuplicates groups keys that share their first word and lie within MaxKeyDistance
// edits of another key in the group. Groups and their members are sorted.
func NearDuplicates(keys []string) [][]string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	parent := make([]int, len(sorted))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i] == sorted[j] || firstWord(sorted[i]) != firstWord(sorted[j]) {
				continue
			}
			if fuzzy.LevenshteinDistance(sorted[i], sorted[j]) <= MaxKeyDistance {
				parent[find(j)] = find(i)
			}
		}
	}

	groups := make(map[int][]string)
	var roots []int
	for i, k := range sorted {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		if i > 0 && sorted[i-1] == k {
			continue
		}
		groups[r] = append(groups[r], k)
	}

	var out [][]string
	for _, r := range roots {
		if len(groups[r]) > 1 {
			out = append(out, groups[r])
		}
	}
	return out
}

func firstWord(key string) string {
	word, _, _ := strings.Cut(key, " ")
	return strings.TrimSuffix(word, ",")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
