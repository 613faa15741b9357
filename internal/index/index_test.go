package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/examvault/fragments"
)

func samplePapers() []fragments.PaperSummary {
	return []fragments.PaperSummary{
		{ID: "cet6_2022_06", Year: 2022, ItemCount: 25},
		{ID: "cet4_2021_12", Year: 2021, ItemCount: 25},
		{ID: "cet4_2021_06", Year: 2021, ItemCount: 20},
		{ID: "cet4_2020_12", Year: 2020, ItemCount: 25},
	}
}

func TestGet(t *testing.T) {
	x := Build(samplePapers())

	p, ok := x.Get("cet4_2021_06")
	require.True(t, ok)
	assert.Equal(t, 20, p.ItemCount)

	_, ok = x.Get("cet4_2021")
	assert.False(t, ok)
	assert.Equal(t, 4, x.Len())
}

func TestWithPrefix(t *testing.T) {
	x := Build(samplePapers())

	var ids []string
	for _, p := range x.WithPrefix("cet4_2021") {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"cet4_2021_06", "cet4_2021_12"}, ids)

	assert.Len(t, x.WithPrefix(""), 4)
	assert.Empty(t, x.WithPrefix("toefl"))
}

func TestLongestPrefix(t *testing.T) {
	x := Build(samplePapers())

	p, ok := x.LongestPrefix("cet4_2021_06_extra")
	require.True(t, ok)
	assert.Equal(t, "cet4_2021_06", p.ID)

	_, ok = x.LongestPrefix("cet5")
	assert.False(t, ok)
}

func TestBuildDuplicateReplaces(t *testing.T) {
	papers := append(samplePapers(), fragments.PaperSummary{ID: "cet4_2021_06", ItemCount: 99})
	x := Build(papers)

	p, ok := x.Get("cet4_2021_06")
	require.True(t, ok)
	assert.Equal(t, 99, p.ItemCount)
	assert.Equal(t, 4, x.Len())
}
