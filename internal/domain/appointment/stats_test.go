package appointment

import (
	"testing"
	"time"
)

func TestComputeRevenueStats(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	appts := []*Appointment{
		{Amount: 100, SlotDate: now},
		{Amount: 50, SlotDate: now.Add(-48 * time.Hour), Cancelled: true},
		{Amount: 200, SlotDate: now.Add(-24 * time.Hour), IsCompleted: true},
	}

	stats := ComputeRevenueStats(appts, now)
	if stats.TotalRevenue != 350 {
		t.Errorf("total: expected 350, got %v", stats.TotalRevenue)
	}
	if stats.TodayRevenue != 100 {
		t.Errorf("today: expected 100, got %v", stats.TodayRevenue)
	}
	if stats.YesterdayRevenue != 200 {
		t.Errorf("yesterday: expected 200, got %v", stats.YesterdayRevenue)
	}
	if stats.PendingRevenue != 100 {
		t.Errorf("pending: expected 100, got %v", stats.PendingRevenue)
	}
	if stats.CompletedRevenue != 200 {
		t.Errorf("completed: expected 200, got %v", stats.CompletedRevenue)
	}
}

func TestPercentageChange(t *testing.T) {
	s := RevenueStats{TodayRevenue: 100, YesterdayRevenue: 200}
	if got := s.PercentageChange(); got != -50 {
		t.Errorf("expected -50, got %v", got)
	}

	s = RevenueStats{TodayRevenue: 300, YesterdayRevenue: 100}
	if got := s.PercentageChange(); got != 200 {
		t.Errorf("expected 200, got %v", got)
	}
}

func TestPercentageChange_ZeroYesterday(t *testing.T) {
	s := RevenueStats{TodayRevenue: 9999, YesterdayRevenue: 0}
	if got := s.PercentageChange(); got != 0 {
		t.Errorf("expected 0 when yesterday is 0, got %v", got)
	}
}

func TestComputeRevenueStats_Empty(t *testing.T) {
	stats := ComputeRevenueStats(nil, time.Now())
	if stats != (RevenueStats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestComputeRevenueStats_CalendarBucketing(t *testing.T) {
	// 00:30 local: "yesterday" is now-24h's calendar day, so an
	// appointment 25 hours ago falls outside both buckets.
	now := time.Date(2026, time.May, 10, 0, 30, 0, 0, time.UTC)
	appts := []*Appointment{
		{Amount: 10, SlotDate: now.Add(-25 * time.Hour)},
		{Amount: 20, SlotDate: now.Add(-2 * time.Hour)},
	}
	stats := ComputeRevenueStats(appts, now)
	if stats.YesterdayRevenue != 20 {
		t.Errorf("yesterday: expected 20, got %v", stats.YesterdayRevenue)
	}
	if stats.TodayRevenue != 0 {
		t.Errorf("today: expected 0, got %v", stats.TodayRevenue)
	}
}
