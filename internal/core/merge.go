package core

// SourceRecords is the output of one source adapter, labeled for reporting.
type SourceRecords struct {
	Source  string
	Records []Record
}

// Merge concatenates source outputs in the given order without reordering
// records within a source. It returns the merged records and per-source counts.
func Merge(sources []SourceRecords) ([]Record, []SourceCount) {
	total := 0
	for _, s := range sources {
		total += len(s.Records)
	}

	merged := make([]Record, 0, total)
	counts := make([]SourceCount, 0, len(sources))
	for _, s := range sources {
		merged = append(merged, s.Records...)
		counts = append(counts, SourceCount{Source: s.Source, Count: len(s.Records)})
	}
	return merged, counts
}
