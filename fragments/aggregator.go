// Package fragments aggregates exam papers split across many JSON files.
//
// The dataset root holds one directory per year; each year holds fragment
// files. Fragments of the same paper share a logical id and differ only by a
// trailing batch number ("paper9_1.json", "paper9_2.json"). Discovery groups
// fragments into paper summaries; a detail fetch merges one paper's fragments
// into a single renumbered item sequence.
//
// Information Hiding:
// - Year-bucket traversal and ordering hidden
// - Fragment document layout (header/items keys) hidden
// - Per-file failures are logged and skipped, never surfaced to callers
package fragments

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/examvault/config"
	"github.com/richinex/examvault/internal/logging"
)

// Document keys of the fragment format.
const (
	HeaderKey   = "paper"
	ItemsKey    = "questions"
	PositionKey = "question_number"
	TagKey      = "section_type"
	OptionsKey  = "options"

	// DefaultTag is assigned to items without a section type.
	DefaultTag = "short"
)

var (
	// ErrDatasetMissing is returned when the dataset root does not exist.
	ErrDatasetMissing = errors.New("dataset directory does not exist")
	// ErrPaperNotFound is returned when no fragment of a logical id could be loaded.
	ErrPaperNotFound = errors.New("paper not found")

	errNoHeader = errors.New("fragment has no header object")
)

// Aggregator discovers and merges fragment files.
// It holds configuration only; every call rescans the filesystem.
type Aggregator struct {
	ext    string
	logger *zap.Logger
}

// New creates an aggregator. A nil logger discards log output.
func New(cfg config.DatasetConfig, logger *zap.Logger) *Aggregator {
	ext := cfg.Extension
	if ext == "" {
		ext = config.DefaultFragmentExt
	}
	return &Aggregator{ext: ext, logger: logging.OrNop(logger)}
}

// bucket is one year directory.
type bucket struct {
	year int
	path string
}

// yearBuckets lists year directories under root, newest first.
// Directories whose names are not integers are ignored.
func (a *Aggregator) yearBuckets(root string) ([]bucket, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, root)
		}
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var buckets []bucket
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		year, err := strconv.Atoi(entry.Name())
		if err != nil {
			a.logger.Debug("ignoring non-year directory", zap.String("dir", path))
			continue
		}
		buckets = append(buckets, bucket{year: year, path: path})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].year > buckets[j].year
	})
	return buckets, nil
}

// fragmentFiles lists fragment filenames in a bucket in lexical order.
// An unreadable bucket is logged and yields nothing.
func (a *Aggregator) fragmentFiles(b bucket) []string {
	entries, err := os.ReadDir(b.path)
	if err != nil {
		a.logger.Warn("skipping unreadable year directory", zap.String("dir", b.path), zap.Error(err))
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), a.ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}
