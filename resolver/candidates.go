package resolver

import (
	"fmt"
	"path/filepath"

	"github.com/richinex/examvault/config"
	"github.com/richinex/examvault/model"
)

// classification is the primary category plus the complementary ones, in search order.
type classification struct {
	primary     config.CategoryConfig
	secondaries []config.CategoryConfig
}

// ordered returns the primary category followed by the secondaries.
func (c classification) ordered() []config.CategoryConfig {
	out := make([]config.CategoryConfig, 0, 1+len(c.secondaries))
	out = append(out, c.primary)
	return append(out, c.secondaries...)
}

// candidateFilenames returns every filename hypothesis for d, most specific and
// primary-category names first. The order is a tie-break contract.
func candidateFilenames(d model.Descriptor, cls classification, ext string) []string {
	year, month, seq := d.Year, d.Month, d.Sequence()
	mm := fmt.Sprintf("%02d", month)

	var names []string
	for _, c := range cls.ordered() {
		tag := c.Tag
		names = append(names,
			fmt.Sprintf("%s_%d_%s_%d%s", tag, year, mm, seq, ext),
			fmt.Sprintf("%s_%d_%d_%d%s", tag, year, month, seq, ext),
			fmt.Sprintf("%s_%d_%s%s", tag, year, mm, ext),
			fmt.Sprintf("%s_%d_%d%s", tag, year, month, ext),
			fmt.Sprintf("%s_%d%s_%d%s", tag, year, mm, seq, ext),
			fmt.Sprintf("%s_%d%d_%d%s", tag, year, month, seq, ext),
		)
	}

	// Untagged fallback patterns.
	names = append(names,
		fmt.Sprintf("%d_%s_%d%s", year, mm, seq, ext),
		fmt.Sprintf("%d_%d_%d%s", year, month, seq, ext),
		fmt.Sprintf("%d%s_%d%s", year, mm, seq, ext),
		fmt.Sprintf("%d%d_%d%s", year, month, seq, ext),
	)

	return dedupe(names)
}

// searchRoots returns every directory to probe: per category (primary first),
// per base dir, the native folder then its aliases; then the bare base dirs.
func searchRoots(baseDirs, aliasSuffixes []string, cls classification) []SearchRoot {
	var roots []SearchRoot
	seen := make(map[string]bool)
	add := func(r SearchRoot) {
		r.Path = filepath.Clean(r.Path)
		if seen[r.Path] {
			return
		}
		seen[r.Path] = true
		r.Rank = len(roots)
		roots = append(roots, r)
	}

	for _, c := range cls.ordered() {
		for _, base := range baseDirs {
			add(SearchRoot{Path: filepath.Join(base, c.Folder), Category: c.Tag, Folder: c.Folder})
			for _, suffix := range aliasSuffixes {
				add(SearchRoot{Path: filepath.Join(base, c.Folder+suffix), Category: c.Tag, Folder: c.Folder + suffix})
			}
		}
	}
	for _, base := range baseDirs {
		add(SearchRoot{Path: base})
	}
	return roots
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
