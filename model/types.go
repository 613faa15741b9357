// Package model provides domain types shared across packages.
package model

import "fmt"

// DefaultSequenceIndex is used when a paper record carries no paper number.
const DefaultSequenceIndex = 1

// Descriptor identifies an exam paper whose media asset should be located.
// Built by callers from a paper record; never mutated by the resolver.
type Descriptor struct {
	ID            string `json:"id,omitempty"`
	Category      string `json:"exam_type"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	SequenceIndex int    `json:"paper_number,omitempty"`
	Title         string `json:"title,omitempty"`
}

// Sequence returns the paper index, defaulting to 1 when unset.
func (d Descriptor) Sequence() int {
	if d.SequenceIndex < 1 {
		return DefaultSequenceIndex
	}
	return d.SequenceIndex
}

// String returns a short human-readable label.
func (d Descriptor) String() string {
	if d.Title != "" {
		return d.Title
	}
	return fmt.Sprintf("%s %d-%02d #%d", d.Category, d.Year, d.Month, d.Sequence())
}
