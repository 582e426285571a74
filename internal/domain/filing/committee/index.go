// Package committee resolves committee names printed in reports to known committees.
package committee

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/dc-campaign-finance/internal/domain/filing/normalizer"
)

// Committee is a registered political committee.
type Committee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key returns the normalized name used for exact matching.
func (c Committee) Key() string {
	return normalizer.NormalizeNameAndAddress(c.Name, "")
}

type document struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Index looks committees up by exact normalized name, then by fuzzy full-text match.
type Index struct {
	index    bleve.Index
	indexMu  sync.RWMutex
	byKey    map[string]Committee
	minScore float64
}

// NewIndex creates a committee index. An empty path keeps the index in memory;
// otherwise the index is created or reopened at path.
func NewIndex(path string, minScore float64) (*Index, error) {
	var (
		index bleve.Index
		err   error
	)

	if path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
		}
		index, err = bleve.New(path, buildIndexMapping())
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open committee index: %w", err)
	}

	return &Index{
		index:    index,
		byKey:    make(map[string]Committee),
		minScore: minScore,
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("key", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// Build replaces the indexed committees.
func (i *Index) Build(committees []Committee) error {
	i.indexMu.Lock()
	defer i.indexMu.Unlock()

	count, err := i.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to count committees: %w", err)
	}
	existing := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	existing.Size = int(count)
	existingResults, err := i.index.Search(existing)
	if err != nil {
		return fmt.Errorf("failed to list committees: %w", err)
	}

	batch := i.index.NewBatch()
	for _, hit := range existingResults.Hits {
		batch.Delete(hit.ID)
	}

	byKey := make(map[string]Committee, len(committees))
	for _, c := range committees {
		if c.ID == "" {
			return fmt.Errorf("committee %q has no id", c.Name)
		}
		doc := document{Name: c.Name, Key: c.Key()}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("failed to index committee %s: %w", c.ID, err)
		}
		byKey[doc.Key] = c
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}

	i.byKey = byKey
	return nil
}

// Lookup finds the committee a printed name refers to. Every word of the name must match,
// allowing one edit per word; the best hit must also reach the index's minimum score.
func (i *Index) Lookup(name string) (Committee, bool, error) {
	i.indexMu.RLock()
	defer i.indexMu.RUnlock()

	key := normalizer.NormalizeNameAndAddress(name, "")
	if key == "" {
		return Committee{}, false, nil
	}
	if c, ok := i.byKey[key]; ok {
		return c, true, nil
	}

	matchQuery := bleve.NewMatchQuery(name)
	matchQuery.SetField("name")
	matchQuery.SetFuzziness(1)
	matchQuery.SetOperator(query.MatchQueryOperatorAnd)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = 1
	searchRequest.Fields = []string{"name"}

	searchResults, err := i.index.Search(searchRequest)
	if err != nil {
		return Committee{}, false, fmt.Errorf("committee search failed: %w", err)
	}
	if len(searchResults.Hits) == 0 || searchResults.Hits[0].Score < i.minScore {
		return Committee{}, false, nil
	}

	hit := searchResults.Hits[0]
	c := Committee{ID: hit.ID}
	if n, ok := hit.Fields["name"].(string); ok {
		c.Name = n
	}
	return c, true, nil
}

// DocumentCount returns the number of indexed committees.
func (i *Index) DocumentCount() (uint64, error) {
	i.indexMu.RLock()
	defer i.indexMu.RUnlock()

	return i.index.DocCount()
}

// Close closes the index
func (i *Index) Close() error {
	i.indexMu.Lock()
	defer i.indexMu.Unlock()

	if i.index != nil {
		return i.index.Close()
	}
	return nil
}
