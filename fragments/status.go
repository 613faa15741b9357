package fragments

// Status summarizes the dataset on disk.
type Status struct {
	Years      []YearStatus `json:"years"`
	TotalFiles int          `json:"total_files"`
	PaperCount int          `json:"paper_count"`
	ItemCount  int          `json:"question_count"`
	Skipped    []string     `json:"skipped_files,omitempty"`
}

// Status scans root and reports per-year file counts and paper totals.
func (a *Aggregator) Status(root string) (Status, error) {
	scan, err := a.scan(root)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		Years:      scan.years,
		TotalFiles: scan.files,
		PaperCount: len(scan.papers),
		Skipped:    scan.skipped,
	}
	if status.Years == nil {
		status.Years = []YearStatus{}
	}
	for _, p := range scan.papers {
		status.ItemCount += p.ItemCount
	}
	return status, nil
}
