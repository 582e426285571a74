package committee

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewIndex("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	require.NoError(t, index.Build([]Committee{
		{ID: "OCF-100", Name: "Friends of Jane Doe"},
		{ID: "OCF-200", Name: "Committee to Elect Robert Smith"},
		{ID: "OCF-300", Name: "Ward 6 Democrats"},
	}))
	return index
}

func TestIndex_Lookup(t *testing.T) {
	index := newTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	tests := []struct {
		name   string
		input  string
		wantID string
		found  bool
	}{
		{"exact", "Friends of Jane Doe", "OCF-100", true},
		{"case and punctuation", "FRIENDS OF JANE DOE.", "OCF-100", true},
		{"typo", "Comittee to Elect Robert Smith", "OCF-200", true},
		{"unknown", "Citizens for Better Parks", "", false},
		{"partial words do not match", "Jane Doe for Mayor", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok, err := index.Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestIndex_BuildReplaces(t *testing.T) {
	index := newTestIndex(t)

	require.NoError(t, index.Build([]Committee{{ID: "OCF-900", Name: "Ward 1 Republicans"}}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	_, ok, err := index.Lookup("Friends of Jane Doe")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndex_BuildRequiresID(t *testing.T) {
	index, err := NewIndex("", 0)
	require.NoError(t, err)
	defer index.Close()

	assert.Error(t, index.Build([]Committee{{Name: "No ID"}}))
}

func TestIndex_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "committees.bleve")

	index, err := NewIndex(path, 0)
	require.NoError(t, err)
	require.NoError(t, index.Build([]Committee{{ID: "OCF-1", Name: "Friends of Jane Doe"}}))
	require.NoError(t, index.Close())

	reopened, err := NewIndex(path, 0)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	c, ok, err := reopened.Lookup("Friends of Jane Doe")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Committee{ID: "OCF-1", Name: "Friends of Jane Doe"}, c)
}
