package segmenter

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// phraseMatcher finds any of a fixed set of phrases in one pass over a page, regardless
// of how many phrases are configured. Matching is case-insensitive.
type phraseMatcher struct {
	matcher *ahocorasick.Matcher
}

func newPhraseMatcher(phrases []string) *phraseMatcher {
	patterns := make([][]byte, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		patterns = append(patterns, []byte(p))
	}
	if len(patterns) == 0 {
		return &phraseMatcher{}
	}
	return &phraseMatcher{matcher: ahocorasick.NewMatcher(patterns)}
}

func (m *phraseMatcher) matches(text string) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	return len(m.matcher.Match([]byte(strings.ToUpper(text)))) > 0
}
