package resolver

import (
	"golang.org/x/sync/errgroup"

	"github.com/richinex/examvault/model"
)

// Resolution pairs a descriptor with its result.
type Resolution struct {
	Descriptor model.Descriptor `json:"paper"`
	Result     MatchResult      `json:"audio_info"`
}

// BatchReport is the outcome of ResolveAll.
type BatchReport struct {
	Results   []Resolution `json:"results"`
	Total     int          `json:"total"`
	Found     int          `json:"found"`
	Missing   int          `json:"missing"`
	Primary   int          `json:"primary_matches"`
	Secondary int          `json:"secondary_matches"`
}

// ResolveAll resolves every descriptor independently.
// Results keep input order regardless of completion order.
func (r *Resolver) ResolveAll(descriptors []model.Descriptor) BatchReport {
	results := make([]Resolution, len(descriptors))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			results[i] = Resolution{Descriptor: d, Result: r.Resolve(d)}
			return nil
		})
	}
	// Resolve never fails; Wait only joins the workers.
	_ = g.Wait()

	report := BatchReport{Results: results, Total: len(results)}
	for _, res := range results {
		if !res.Result.Found {
			report.Missing++
			continue
		}
		report.Found++
		switch res.Result.Class {
		case MatchPrimary:
			report.Primary++
		case MatchSecondary:
			report.Secondary++
		}
	}
	return report
}
