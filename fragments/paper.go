package fragments

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Paper is a logical paper merged from its fragments.
type Paper struct {
	ID        string                 `json:"id"`
	Year      int                    `json:"year"`
	Header    map[string]interface{} `json:"paper"`
	Items     []Item                 `json:"data"`
	ItemCount int                    `json:"count"`
	FileCount int                    `json:"file_count"`
	Files     []string               `json:"matching_files"`
	Skipped   []string               `json:"skipped_files,omitempty"`
}

// Get loads every fragment of the logical paper id and merges them.
//
// Year directories are searched newest first and the search stops at the first
// directory holding a matching file. Files match when their logical id equals
// id; when none do, a file whose name without extension equals id is used.
// Items are concatenated in filename order and renumbered from 1.
// ErrPaperNotFound is returned when no fragment could be loaded.
func (a *Aggregator) Get(root, id string) (Paper, error) {
	buckets, err := a.yearBuckets(root)
	if err != nil {
		return Paper{}, err
	}

	for _, b := range buckets {
		names := a.matchingFiles(a.fragmentFiles(b), id)
		if len(names) == 0 {
			continue
		}
		return a.merge(b, id, names)
	}
	return Paper{}, fmt.Errorf("%w: %s", ErrPaperNotFound, id)
}

// matchingFiles selects the fragments of id from a sorted bucket listing.
func (a *Aggregator) matchingFiles(names []string, id string) []string {
	var derived, exact []string
	for _, name := range names {
		if LogicalID(name, a.ext) == id {
			derived = append(derived, name)
		}
		if strings.TrimSuffix(name, a.ext) == id {
			exact = append(exact, name)
		}
	}
	if len(derived) > 0 {
		return derived
	}
	return exact
}

func (a *Aggregator) merge(b bucket, id string, names []string) (Paper, error) {
	paper := Paper{ID: id, Year: b.year, Items: []Item{}}

	for _, name := range names {
		path := filepath.Join(b.path, name)
		frag, err := loadFragment(path)
		if err != nil {
			a.logger.Warn("skipping fragment", zap.String("file", path), zap.Error(err))
			paper.Skipped = append(paper.Skipped, name)
			continue
		}
		if paper.Header == nil {
			paper.Header = maps.Clone(frag.header)
		}
		for _, item := range frag.items {
			a.normalizeItem(item, path)
			paper.Items = append(paper.Items, item)
		}
		paper.Files = append(paper.Files, name)
		a.logger.Debug("loaded fragment", zap.String("file", path), zap.Int("items", len(frag.items)))
	}

	if paper.Header == nil {
		return Paper{}, fmt.Errorf("%w: %s", ErrPaperNotFound, id)
	}

	for i, item := range paper.Items {
		item[PositionKey] = i + 1
	}

	paper.ItemCount = len(paper.Items)
	paper.FileCount = len(paper.Files)
	paper.Header["id"] = id
	paper.Header["year"] = b.year
	paper.Header["file_count"] = paper.FileCount
	paper.Header["matching_files"] = paper.Files
	paper.Header["total_questions"] = paper.ItemCount
	return paper, nil
}
