package model

// AggregateStats are the counters shown above the feed. Total always equals
// Applied + Skipped.
type AggregateStats struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// ComputeStats recomputes the counters with a single full pass. Anything that
// is not exactly "Applied" (failures included) is skipped.
func ComputeStats(records []ApplicationRecord) AggregateStats {
	var stats AggregateStats
	for _, r := range records {
		if r.IsApplied() {
			stats.Applied++
		} else {
			stats.Skipped++
		}
	}
	stats.Total = len(records)
	return stats
}
