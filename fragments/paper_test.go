package fragments

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMergesAndRenumbers(t *testing.T) {
	root := t.TempDir()
	// Both fragments number their questions from 1; part 2 is written first on purpose.
	writeFragment(t, root, 2022, "paper9_2.json", header("Paper 9 part 2"), questions("b", 2, 1)...)
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)

	paper, err := newTestAggregator().Get(root, "paper9")
	require.NoError(t, err)

	require.Len(t, paper.Items, 5)
	wantText := []string{"a1", "a2", "a3", "b1", "b2"}
	for i, item := range paper.Items {
		assert.Equal(t, i+1, item[PositionKey])
		assert.Equal(t, wantText[i], item["text"])
	}
	assert.Equal(t, 5, paper.ItemCount)
	assert.Equal(t, 2, paper.FileCount)
	assert.Equal(t, []string{"paper9_1.json", "paper9_2.json"}, paper.Files)
	assert.Equal(t, "Paper 9", paper.Header["title"])
	assert.Equal(t, 2022, paper.Header["year"])
	assert.Equal(t, 2, paper.Header["file_count"])
	assert.Equal(t, 5, paper.Header["total_questions"])
}

func TestGetOverridesSourceNumbering(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2021, "p_1.json", header("p"), questions("x", 2, 40)...)
	writeFragment(t, root, 2021, "p_2.json", header("p"), questions("y", 2, 7)...)

	paper, err := newTestAggregator().Get(root, "p")
	require.NoError(t, err)

	for i, item := range paper.Items {
		assert.Equal(t, i+1, item[PositionKey])
	}
}

func TestGetNormalizesOptionsAndTags(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2020, "opts.json", header("options"),
		map[string]interface{}{"text": "json string", "options": `["A. one", "B. two"]`, "section_type": "news"},
		map[string]interface{}{"text": "broken json", "options": `["A. one", `},
		map[string]interface{}{"text": "comma list", "options": "A, B, ,C", "section_type": ""},
		map[string]interface{}{"text": "structured", "options": []string{"A", "B"}},
		map[string]interface{}{"text": "empty", "options": ""},
		map[string]interface{}{"text": "no options", "section_type": nil},
	)

	paper, err := newTestAggregator().Get(root, "opts")
	require.NoError(t, err)
	require.Len(t, paper.Items, 6)

	assert.Equal(t, []interface{}{"A. one", "B. two"}, paper.Items[0]["options"])
	assert.Equal(t, "news", paper.Items[0][TagKey])

	assert.Equal(t, []interface{}{}, paper.Items[1]["options"])
	assert.Equal(t, DefaultTag, paper.Items[1][TagKey])

	assert.Equal(t, []interface{}{"A", "B", "C"}, paper.Items[2]["options"])
	assert.Equal(t, DefaultTag, paper.Items[2][TagKey])

	assert.Equal(t, []interface{}{"A", "B"}, paper.Items[3]["options"])
	assert.Equal(t, []interface{}{}, paper.Items[4]["options"])

	_, hasOptions := paper.Items[5]["options"]
	assert.False(t, hasOptions)
	assert.Equal(t, DefaultTag, paper.Items[5][TagKey])
}

func TestGetStopsAtNewestBucket(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2021, "reused_1.json", header("old"), questions("old", 4, 1)...)
	writeFragment(t, root, 2023, "reused_1.json", header("new"), questions("new", 1, 1)...)

	paper, err := newTestAggregator().Get(root, "reused")
	require.NoError(t, err)

	assert.Equal(t, 2023, paper.Year)
	assert.Equal(t, "new", paper.Header["title"])
	assert.Len(t, paper.Items, 1)
}

func TestGetExactNameFallback(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)
	writeFragment(t, root, 2022, "paper9_2.json", header("Paper 9"), questions("b", 2, 1)...)

	paper, err := newTestAggregator().Get(root, "paper9_1")
	require.NoError(t, err)

	assert.Equal(t, []string{"paper9_1.json"}, paper.Files)
	assert.Len(t, paper.Items, 3)
}

func TestGetDerivedMatchTakesPrecedenceOverExactName(t *testing.T) {
	root := t.TempDir()
	// "paper_2021_2_1.json" is a batch of paper_2021_2; "paper_2021_2.json" is a batch of paper_2021.
	writeFragment(t, root, 2021, "paper_2021_2.json", header("2021"), questions("a", 1, 1)...)
	writeFragment(t, root, 2021, "paper_2021_2_1.json", header("2021-2"), questions("b", 2, 1)...)

	paper, err := newTestAggregator().Get(root, "paper_2021_2")
	require.NoError(t, err)
	assert.Equal(t, []string{"paper_2021_2_1.json"}, paper.Files)

	paper, err = newTestAggregator().Get(root, "paper_2021")
	require.NoError(t, err)
	assert.Equal(t, []string{"paper_2021_2.json"}, paper.Files)
}

func TestGetSkipsCorruptFragment(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)
	writeRaw(t, root, 2022, "paper9_2.json", `{"paper": `)
	writeFragment(t, root, 2022, "paper9_3.json", header("Paper 9"), questions("c", 2, 1)...)

	paper, err := newTestAggregator().Get(root, "paper9")
	require.NoError(t, err)

	assert.Equal(t, []string{"paper9_1.json", "paper9_3.json"}, paper.Files)
	assert.Equal(t, []string{"paper9_2.json"}, paper.Skipped)
	assert.Len(t, paper.Items, 5)
	assert.Equal(t, 5, paper.Items[4][PositionKey])
}

func TestGetNotFound(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)

	_, err := newTestAggregator().Get(root, "paper10")
	assert.True(t, errors.Is(err, ErrPaperNotFound))
}

func TestGetAllFragmentsCorruptIsNotFound(t *testing.T) {
	root := t.TempDir()
	writeRaw(t, root, 2022, "bad_1.json", `{`)
	writeRaw(t, root, 2022, "bad_2.json", `{"questions": []}`)

	_, err := newTestAggregator().Get(root, "bad")
	assert.True(t, errors.Is(err, ErrPaperNotFound))
}

func TestGetEmptyPaperIsFound(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "empty.json", header("Empty"))

	paper, err := newTestAggregator().Get(root, "empty")
	require.NoError(t, err)

	assert.NotNil(t, paper.Items)
	assert.Empty(t, paper.Items)
	assert.Zero(t, paper.ItemCount)
	assert.Equal(t, 1, paper.FileCount)
}

func TestGetMissingRoot(t *testing.T) {
	_, err := newTestAggregator().Get(filepath.Join(t.TempDir(), "missing"), "x")
	assert.True(t, errors.Is(err, ErrDatasetMissing))
}

func TestAggregationCompleteness(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2023, "cet4_a_1.json", header("A"), questions("a", 5, 1)...)
	writeFragment(t, root, 2023, "cet4_a_2.json", header("A"), questions("a", 3, 1)...)
	writeFragment(t, root, 2023, "cet4_a_10.json", header("A"), questions("a", 2, 1)...)
	writeFragment(t, root, 2022, "cet6_b.json", header("B"), questions("b", 7, 1)...)
	writeFragment(t, root, 2022, "cet6_c_1.json", header("C"), questions("c", 1, 1)...)
	writeRaw(t, root, 2022, "cet6_c_2.json", `[]`)
	writeFragment(t, root, 2021, "empty.json", header("E"))

	agg := newTestAggregator()
	papers, err := agg.List(root)
	require.NoError(t, err)
	require.Len(t, papers, 4)

	for _, summary := range papers {
		paper, err := agg.Get(root, summary.ID)
		require.NoError(t, err, summary.ID)
		assert.Equal(t, summary.ItemCount, len(paper.Items), summary.ID)
		assert.Equal(t, summary.FileCount, paper.FileCount, summary.ID)
		assert.ElementsMatch(t, summary.Files, paper.Files, summary.ID)
		for i, item := range paper.Items {
			assert.Equal(t, i+1, item[PositionKey])
		}
	}
}

func TestGetIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)
	writeFragment(t, root, 2022, "paper9_2.json", header("Paper 9"), questions("b", 2, 1)...)

	agg := newTestAggregator()
	first, err := agg.Get(root, "paper9")
	require.NoError(t, err)
	second, err := agg.Get(root, "paper9")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
