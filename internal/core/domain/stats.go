package domain

// Stats is the read-only summary returned by get_stats.
type Stats struct {
	TotalRaised         Amount `json:"total_raised"`
	Goal                Amount `json:"goal"`
	ProgressBps         uint32 `json:"progress_bps"`
	ContributorCount    int    `json:"contributor_count"`
	AverageContribution Amount `json:"average_contribution"`
	LargestContribution Amount `json:"largest_contribution"`
}

// Stats computes progress (capped at 10000 bps), the contributor count,
// the average and the largest contribution.
func (l *Ledger) Stats() Stats {
	c := l.Campaign
	s := Stats{
		TotalRaised:      c.TotalRaised,
		Goal:             c.Goal,
		ContributorCount: l.Contributors.Len(),
	}
	if c.Goal > 0 {
		s.ProgressBps = MaxFeeBps
		if p, err := MulDiv(c.TotalRaised, MaxFeeBps, int64(c.Goal)); err == nil && p < MaxFeeBps {
			s.ProgressBps = uint32(p)
		}
	}
	if s.ContributorCount > 0 {
		s.AverageContribution = c.TotalRaised / Amount(s.ContributorCount)
	}
	for _, a := range l.Contributors.Items() {
		if v := l.ContributionOf(a); v > s.LargestContribution {
			s.LargestContribution = v
		}
	}
	return s
}
