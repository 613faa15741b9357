// Package index provides prefix lookup over discovered paper summaries.
// Uses go-radix for a compressed prefix tree keyed by logical id.
package index

import (
	"github.com/armon/go-radix"

	"github.com/richinex/examvault/fragments"
)

// Index maps logical ids to paper summaries.
//
// Logical ids share long prefixes ("cet4_2021_06_", "cet4_2021_12_"), so a
// radix tree keeps one node per shared run instead of one per character.
// Built from a single discovery pass; it is a snapshot, not a cache.
type Index struct {
	tree *radix.Tree
}

// Build indexes papers by id. A later duplicate id replaces an earlier one.
func Build(papers []fragments.PaperSummary) *Index {
	tree := radix.New()
	for _, p := range papers {
		tree.Insert(p.ID, p)
	}
	return &Index{tree: tree}
}

// Get looks up a paper by exact logical id.
func (x *Index) Get(id string) (fragments.PaperSummary, bool) {
	val, found := x.tree.Get(id)
	if !found {
		return fragments.PaperSummary{}, false
	}
	p, ok := val.(fragments.PaperSummary)
	return p, ok
}

// WithPrefix returns papers whose id starts with prefix, in id order.
// An empty prefix returns every paper.
func (x *Index) WithPrefix(prefix string) []fragments.PaperSummary {
	var out []fragments.PaperSummary
	x.tree.WalkPrefix(prefix, func(k string, v interface{}) bool {
		if p, ok := v.(fragments.PaperSummary); ok {
			out = append(out, p)
		}
		return false // continue walking
	})
	return out
}

// LongestPrefix returns the paper whose id is the longest prefix of query.
// Useful for mapping a fragment stem back to the paper it extends.
func (x *Index) LongestPrefix(query string) (fragments.PaperSummary, bool) {
	_, val, found := x.tree.LongestPrefix(query)
	if !found {
		return fragments.PaperSummary{}, false
	}
	p, ok := val.(fragments.PaperSummary)
	return p, ok
}

// Len returns the number of indexed papers.
func (x *Index) Len() int {
	return x.tree.Len()
}
