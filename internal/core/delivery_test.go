package core_test

import (
	"testing"
	"time"

	"supplies-agent/internal/core"
)

func TestEstimateDelivery_LeadTimeBands(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		quantity int
		want     string
	}{
		{1, "2025-03-01"},
		{10, "2025-03-01"},
		{11, "2025-03-02"},
		{100, "2025-03-02"},
		{101, "2025-03-05"},
		{1000, "2025-03-05"},
		{1001, "2025-03-08"},
		{5000, "2025-03-08"},
	}
	for _, tt := range tests {
		got := core.EstimateDelivery("2025-03-01", tt.quantity, now)
		if got != tt.want {
			t.Errorf("EstimateDelivery(2025-03-01, %d) = %s, want %s", tt.quantity, got, tt.want)
		}
	}
}

func TestEstimateDelivery_BadDateFallsBackToNow(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }

	if got := core.EstimateDelivery("not-a-date", 50, now); got != "2025-06-16" {
		t.Errorf("fallback delivery = %s, want 2025-06-16", got)
	}
	if got := core.EstimateDelivery("", 5, now); got != "2025-06-15" {
		t.Errorf("fallback delivery = %s, want 2025-06-15", got)
	}
}

func TestEstimateDelivery_AcceptsTimestampDates(t *testing.T) {
	now := time.Now
	if got := core.EstimateDelivery("2025-03-01T09:30:00", 10, now); got != "2025-03-01" {
		t.Errorf("timestamp order date = %s, want 2025-03-01", got)
	}
}
