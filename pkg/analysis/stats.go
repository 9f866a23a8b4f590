package analysis

import "github.com/northcutted/scanmodel/pkg/types"

// Stats aggregates a batch of reports.
type Stats struct {
	Files          int
	Valid          int
	Invalid        int
	Succeeded      int // valid results with success=true
	Failed         int // valid results with success=false
	PatchesApplied int
	Findings       types.SeveritySummary
}

// Aggregate merges the valid results of a batch.
func Aggregate(reports []FileReport) Stats {
	stats := Stats{
		Files:    len(reports),
		Findings: types.Summarize(nil),
	}

	for _, r := range reports {
		if r.Result == nil {
			stats.Invalid++
			continue
		}
		stats.Valid++
		if r.Result.Success() {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		stats.PatchesApplied += len(r.Result.PatchesApplied())
		stats.Findings.Merge(types.Summarize(r.Result.Findings()))
	}

	return stats
}
