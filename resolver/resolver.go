// Package resolver locates exam audio assets on disk from paper metadata.
//
// Assets live under several base directories, in category folders whose names
// drifted over time, and follow a handful of naming conventions. Some are filed
// under the wrong category. The resolver generates every plausible filename,
// probes every search root, scores each hit and returns the best one.
//
// Information Hiding:
// - Candidate generation order (which doubles as the tie-break policy) is internal
// - Filesystem probing is injectable for tests
// - Results are immutable values carrying their own diagnostics
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinex/examvault/config"
	"github.com/richinex/examvault/model"
)

// Score weights.
const (
	ScoreCategoryTag   = 10 // filename carries the primary category tag
	ScorePrimaryRoot   = 5  // found under a primary category folder
	ScoreFullDate      = 3  // year_mm_seq
	ScorePartialDate   = 2  // year_m_seq
	ScoreYearMonthOnly = 1  // year_mm
)

// MatchClass tells whether the winning filename carries the primary category tag.
type MatchClass string

const (
	MatchPrimary   MatchClass = "primary"
	MatchSecondary MatchClass = "secondary"
)

// SearchRoot is one directory probed for assets.
// Category is empty for a bare base directory.
type SearchRoot struct {
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
	Folder   string `json:"folder,omitempty"`
	Rank     int    `json:"rank"`
}

// Hit is one existing candidate and its score.
type Hit struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Root     string `json:"root"`
	Score    int    `json:"score"`
}

// MatchResult is the outcome of a single resolution.
// When Found is false, Filename is the preferred candidate name and the
// Attempted* fields list everything that was tried.
type MatchResult struct {
	Found              bool         `json:"exists"`
	Filename           string       `json:"filename"`
	AbsolutePath       string       `json:"absolute_path,omitempty"`
	Root               string       `json:"root,omitempty"`
	Score              int          `json:"score,omitempty"`
	Class              MatchClass   `json:"match_type,omitempty"`
	PublicPath         string       `json:"public_path,omitempty"`
	Hits               []Hit        `json:"hits,omitempty"`
	Probes             int          `json:"probes"`
	AttemptedFilenames []string     `json:"attempted_filenames,omitempty"`
	AttemptedRoots     []SearchRoot `json:"attempted_roots,omitempty"`
}

// StatFunc reports file information for a path, like os.Stat.
type StatFunc func(name string) (fs.FileInfo, error)

// Resolver resolves descriptors against a configured media layout.
// Safe for concurrent use: it holds configuration only.
type Resolver struct {
	cfg  config.MediaConfig
	stat StatFunc
}

// New creates a resolver for the given media configuration.
func New(cfg config.MediaConfig) (*Resolver, error) {
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("resolver: no categories configured")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Resolver{cfg: cfg, stat: os.Stat}, nil
}

// WithStat replaces the filesystem probe.
func (r *Resolver) WithStat(fn StatFunc) *Resolver {
	r.stat = fn
	return r
}

// Resolve finds the best-matching asset for d.
// A missing asset is a normal result, never an error.
func (r *Resolver) Resolve(d model.Descriptor) MatchResult {
	cls := r.classify(d.Category)
	filenames := candidateFilenames(d, cls, r.cfg.Extension)
	roots := searchRoots(r.cfg.BaseDirs, r.cfg.AliasSuffixes, cls)

	var (
		result MatchResult
		best   *Hit
		bestAt SearchRoot
		probes int
	)
	for _, name := range filenames {
		for _, root := range roots {
			path := filepath.Join(root.Path, name)
			probes++
			if !r.exists(path) {
				continue
			}
			hit := Hit{
				Filename: name,
				Path:     path,
				Root:     root.Path,
				Score:    score(name, root, d, cls.primary),
			}
			result.Hits = append(result.Hits, hit)
			// Strict comparison: the first maximal hit wins.
			if best == nil || hit.Score > best.Score {
				h := hit
				best = &h
				bestAt = root
			}
		}
	}
	result.Probes = probes

	if best == nil {
		result.Filename = filenames[0]
		result.AttemptedFilenames = filenames
		result.AttemptedRoots = roots
		return result
	}

	result.Found = true
	result.Filename = best.Filename
	result.AbsolutePath = best.Path
	result.Root = bestAt.Path
	result.Score = best.Score
	result.Class = MatchSecondary
	if strings.HasPrefix(best.Filename, cls.primary.Tag+"_") {
		result.Class = MatchPrimary
	}
	result.PublicPath = publicPath(bestAt.Path, best.Filename, cls)
	return result
}

// classify picks the primary category for a record's category string.
func (r *Resolver) classify(category string) classification {
	category = strings.ToLower(strings.TrimSpace(category))

	primary := -1
	for i, c := range r.cfg.Categories {
		if matchesCategory(category, c) {
			primary = i
			break
		}
	}
	if primary < 0 {
		primary = len(r.cfg.Categories) - 1
		for i, c := range r.cfg.Categories {
			if c.Fallback {
				primary = i
				break
			}
		}
	}

	cls := classification{primary: r.cfg.Categories[primary]}
	for i, c := range r.cfg.Categories {
		if i != primary {
			cls.secondaries = append(cls.secondaries, c)
		}
	}
	return cls
}

func matchesCategory(category string, c config.CategoryConfig) bool {
	if category == "" {
		return false
	}
	if strings.EqualFold(category, c.Name) {
		return true
	}
	tokens := append([]string{c.Tag}, c.Match...)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(category, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// exists treats probe errors and directories as absent.
func (r *Resolver) exists(path string) bool {
	info, err := r.stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func score(filename string, root SearchRoot, d model.Descriptor, primary config.CategoryConfig) int {
	total := 0
	if strings.HasPrefix(filename, primary.Tag+"_") {
		total += ScoreCategoryTag
	}
	if root.Category == primary.Tag {
		total += ScorePrimaryRoot
	}

	mm := fmt.Sprintf("%02d", d.Month)
	switch {
	case strings.Contains(filename, fmt.Sprintf("%d_%s_%d", d.Year, mm, d.Sequence())):
		total += ScoreFullDate
	case strings.Contains(filename, fmt.Sprintf("%d_%d_%d", d.Year, d.Month, d.Sequence())):
		total += ScorePartialDate
	case strings.Contains(filename, fmt.Sprintf("%d_%s", d.Year, mm)):
		total += ScoreYearMonthOnly
	}
	return total
}

// publicPath maps the winning root to a web-visible path by the category folder
// name it contains, checking the primary folder first.
func publicPath(rootPath, filename string, cls classification) string {
	prefix := cls.primary.Prefix()
	if !strings.Contains(rootPath, cls.primary.Folder) {
		for _, c := range cls.secondaries {
			if strings.Contains(rootPath, c.Folder) {
				prefix = c.Prefix()
				break
			}
		}
	}
	return prefix + "/" + filename
}
