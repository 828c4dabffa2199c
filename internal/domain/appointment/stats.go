package appointment

import "time"

// RevenueStats is the admin dashboard revenue breakdown.
type RevenueStats struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TodayRevenue     float64 `json:"today_revenue"`
	YesterdayRevenue float64 `json:"yesterday_revenue"`
	PendingRevenue   float64 `json:"pending_revenue"`
	CompletedRevenue float64 `json:"completed_revenue"`
}

// ComputeRevenueStats reduces an appointment list in a single pass.
// Today and yesterday bucket by local calendar date, yesterday being
// the calendar day of now minus 24 hours. Near midnight or timezone
// boundaries an appointment can land in a different bucket than a
// strict 24-hour window would give; that bucketing is intentional.
func ComputeRevenueStats(appts []*Appointment, now time.Time) RevenueStats {
	today := now.Format(SlotDateFormat)
	yesterday := now.Add(-24 * time.Hour).Format(SlotDateFormat)

	var stats RevenueStats
	for _, a := range appts {
		stats.TotalRevenue += a.Amount
		switch a.SlotDate.Format(SlotDateFormat) {
		case today:
			stats.TodayRevenue += a.Amount
		case yesterday:
			stats.YesterdayRevenue += a.Amount
		}
		if !a.Cancelled && !a.IsCompleted {
			stats.PendingRevenue += a.Amount
		}
		if a.IsCompleted {
			stats.CompletedRevenue += a.Amount
		}
	}
	return stats
}

// PercentageChange is the day-over-day revenue delta. Zero when
// yesterday had no revenue, whatever today's sum is.
func (s RevenueStats) PercentageChange() float64 {
	if s.YesterdayRevenue == 0 {
		return 0
	}
	return (s.TodayRevenue - s.YesterdayRevenue) / s.YesterdayRevenue * 100
}
