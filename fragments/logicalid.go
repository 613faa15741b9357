package fragments

import (
	"regexp"
	"strings"
)

// LogicalIDVersion identifies the filename-to-logical-id convention below.
// Bump it when the batch-suffix rule changes; callers may cache ids keyed on it.
//
// Version 1: a trailing "_<digits>" immediately before the extension is a batch
// marker and is removed together with the extension. Otherwise only the
// extension is removed. Exactly one suffix is stripped, so "paper_2021_2_2.json"
// belongs to "paper_2021_2" while "paper_2021_2.json" belongs to "paper_2021".
const LogicalIDVersion = 1

var batchSuffix = regexp.MustCompile(`^(.*)_\d+$`)

// LogicalID derives the logical paper id from a fragment filename.
func LogicalID(filename, ext string) string {
	stem := strings.TrimSuffix(filename, ext)
	if m := batchSuffix.FindStringSubmatch(stem); m != nil && m[1] != "" {
		return m[1]
	}
	return stem
}
