package fragments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogicalID(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{"paper9_1.json", "paper9"},
		{"paper9_12.json", "paper9"},
		{"paper9.json", "paper9"},
		{"cet4_2021_06.json", "cet4_2021"},          // a trailing number is always a batch marker
		{"paper_2021_2.json", "paper_2021"},          // ids ending in digits lose them
		{"paper_2021_2_2.json", "paper_2021_2"},      // only one suffix is stripped
		{"paper_2021_2_2_10.json", "paper_2021_2_2"}, // greedy prefix keeps inner markers
		{"paper_a.json", "paper_a"},
		{"paper_1a.json", "paper_1a"},
		{"_1.json", "_1"}, // nothing left to name the paper
		{"2021.json", "2021"},
		{"listening.v2_3.json", "listening.v2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LogicalID(tc.file, ".json"), "file %q", tc.file)
	}
	assert.Equal(t, 1, LogicalIDVersion)
}

func TestLogicalIDCustomExtension(t *testing.T) {
	assert.Equal(t, "paper9", LogicalID("paper9_1.jsonl", ".jsonl"))
	assert.Equal(t, "paper9_1.json", LogicalID("paper9_1.json", ".jsonl"))
}
