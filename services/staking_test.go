package services

import (
	"math"
	"testing"
	"time"
)

func TestStakeAccruedReward(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		amount       float64
		dailyRate    float64
		durationDays int
		now          time.Time
		want         float64
	}{
		{
			name:   "half way through a gold stake",
			amount: 20000, dailyRate: 8.0, durationDays: 60,
			now:  start.AddDate(0, 0, 30),
			want: 20000 * 0.08 * 30,
		},
		{
			name:   "exactly at maturity",
			amount: 20000, dailyRate: 8.0, durationDays: 60,
			now:  start.AddDate(0, 0, 60),
			want: 20000 * 0.08 * 60,
		},
		{
			name:   "accrual caps at duration",
			amount: 20000, dailyRate: 8.0, durationDays: 60,
			now:  start.AddDate(0, 0, 90),
			want: 20000 * 0.08 * 60,
		},
		{
			name:   "before start accrues nothing",
			amount: 20000, dailyRate: 8.0, durationDays: 60,
			now:  start.AddDate(0, 0, -1),
			want: 0,
		},
		{
			name:   "fractional day",
			amount: 1000, dailyRate: 1.0, durationDays: 30,
			now:  start.Add(12 * time.Hour),
			want: 1000 * 0.01 * 0.5,
		},
		{
			name:   "starter tier full term",
			amount: 100, dailyRate: 0.5, durationDays: 30,
			now:  start.AddDate(0, 0, 30),
			want: 100 * 0.005 * 30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stakeAccruedReward(tt.amount, tt.dailyRate, start, tt.durationDays, tt.now)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("stakeAccruedReward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStakeAccruedReward_Monotonic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := -1.0
	for day := 0; day <= 90; day++ {
		got := stakeAccruedReward(5000, 1.2, start, 45, start.AddDate(0, 0, day))
		if got < prev {
			t.Fatalf("accrual decreased at day %d: %v < %v", day, got, prev)
		}
		prev = got
	}
}

func TestTierByName(t *testing.T) {
	tier, ok := tierByName("gold")
	if !ok {
		t.Fatal("gold tier should exist")
	}
	if tier.MinAmount != 20000 || tier.DailyRate != 8.0 || tier.DurationDays != 60 {
		t.Errorf("gold tier = %+v, unexpected config", tier)
	}

	if _, ok := tierByName("platinum"); ok {
		t.Error("unknown tier should not resolve")
	}
}
