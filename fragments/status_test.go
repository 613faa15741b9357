package fragments

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	root := t.TempDir()
	writeFragment(t, root, 2022, "paper9_1.json", header("Paper 9"), questions("a", 3, 1)...)
	writeFragment(t, root, 2022, "paper9_2.json", header("Paper 9"), questions("b", 2, 1)...)
	writeFragment(t, root, 2021, "other.json", header("Other"), questions("o", 4, 1)...)
	writeRaw(t, root, 2021, "broken.json", `{`)

	status, err := newTestAggregator().Status(root)
	require.NoError(t, err)

	assert.Equal(t, []YearStatus{{Year: 2022, Files: 2}, {Year: 2021, Files: 2}}, status.Years)
	assert.Equal(t, 4, status.TotalFiles)
	assert.Equal(t, 2, status.PaperCount)
	assert.Equal(t, 9, status.ItemCount)
	assert.Equal(t, []string{filepath.Join(root, "2021", "broken.json")}, status.Skipped)
}

func TestStatusEmpty(t *testing.T) {
	status, err := newTestAggregator().Status(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, status.Years)
	assert.NotNil(t, status.Years)
	assert.Zero(t, status.TotalFiles)
}

func TestStatusMissingRoot(t *testing.T) {
	_, err := newTestAggregator().Status(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, ErrDatasetMissing))
}
