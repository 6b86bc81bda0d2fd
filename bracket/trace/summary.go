package trace

// TraceSummary aggregates statistics from a SessionTrace.
type TraceSummary struct {
	TotalVerdicts int            `json:"total_verdicts"`
	Eliminated    int            `json:"eliminated"` // items dropped by verdicts
	Requeued      int            `json:"requeued"`
	Undone        int            `json:"undone"`
	Redone        int            `json:"redone"`
	Rounds        int            `json:"rounds"` // round transitions recorded
	VerdictCounts map[string]int `json:"verdict_counts"`
	// MostCompared is the highest number of verdicts any single item took part in.
	MostCompared int `json:"most_compared"`
}

// Summarize computes aggregate statistics from a SessionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SessionTrace) *TraceSummary {
	summary := &TraceSummary{
		VerdictCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalVerdicts = len(st.Verdicts)
	compared := make(map[string]int)
	for _, v := range st.Verdicts {
		summary.VerdictCounts[v.Verdict]++
		summary.Eliminated += 2 - len(v.Kept)
		compared[v.Left]++
		compared[v.Right]++
	}
	for _, n := range compared {
		if n > summary.MostCompared {
			summary.MostCompared = n
		}
	}

	summary.Requeued = len(st.Requeues)
	for _, u := range st.Undos {
		if u.Redo {
			summary.Redone++
		} else {
			summary.Undone++
		}
	}
	summary.Rounds = len(st.Rounds)

	return summary
}
