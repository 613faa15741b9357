package fragments

import (
	"maps"
	"path/filepath"

	"go.uber.org/zap"
)

// PaperSummary describes one logical paper found during discovery.
type PaperSummary struct {
	ID        string                 `json:"id"`
	Year      int                    `json:"year"`
	ItemCount int                    `json:"total_questions"`
	FileCount int                    `json:"file_count"`
	Files     []string               `json:"files"`
	Header    map[string]interface{} `json:"header"`
}

// YearStatus counts fragment files in one year directory.
type YearStatus struct {
	Year  int `json:"year"`
	Files int `json:"files"`
}

// scanResult is everything one pass over the dataset yields.
type scanResult struct {
	papers  []*PaperSummary
	years   []YearStatus
	files   int
	skipped []string
}

// List discovers logical papers under root.
// Papers are returned in first-encounter order: newest year first, then
// lexical filename order. Unreadable or malformed fragments are skipped.
func (a *Aggregator) List(root string) ([]PaperSummary, error) {
	scan, err := a.scan(root)
	if err != nil {
		return nil, err
	}

	out := make([]PaperSummary, 0, len(scan.papers))
	for _, p := range scan.papers {
		out = append(out, *p)
	}
	return out, nil
}

func (a *Aggregator) scan(root string) (scanResult, error) {
	buckets, err := a.yearBuckets(root)
	if err != nil {
		return scanResult{}, err
	}

	var result scanResult
	byID := make(map[string]*PaperSummary)

	for _, b := range buckets {
		names := a.fragmentFiles(b)
		result.years = append(result.years, YearStatus{Year: b.year, Files: len(names)})
		result.files += len(names)

		for _, name := range names {
			path := filepath.Join(b.path, name)
			frag, err := loadFragment(path)
			if err != nil {
				a.logger.Warn("skipping fragment", zap.String("file", path), zap.Error(err))
				result.skipped = append(result.skipped, path)
				continue
			}

			id := LogicalID(name, a.ext)
			if existing, ok := byID[id]; ok {
				existing.ItemCount += len(frag.items)
				existing.FileCount++
				existing.Files = append(existing.Files, name)
				continue
			}

			summary := &PaperSummary{
				ID:        id,
				Year:      b.year,
				ItemCount: len(frag.items),
				FileCount: 1,
				Files:     []string{name},
				Header:    maps.Clone(frag.header),
			}
			// The bucket name is authoritative; fragment year fields are not trusted.
			summary.Header["year"] = b.year
			summary.Header["id"] = id
			byID[id] = summary
			result.papers = append(result.papers, summary)
		}
	}
	return result, nil
}
