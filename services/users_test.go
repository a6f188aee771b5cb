package services

import (
	"errors"
	"testing"
	"time"
)

func TestApplyCheckIn(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	thisMorning := now.Add(-3 * time.Hour)
	threeDaysAgo := now.Add(-72 * time.Hour)

	tests := []struct {
		name         string
		last         *time.Time
		streak       int
		wantStreak   int
		wantConflict bool
	}{
		{name: "first ever check-in", last: nil, streak: 0, wantStreak: 1},
		{name: "consecutive day extends streak", last: &yesterday, streak: 4, wantStreak: 5},
		{name: "same day conflicts", last: &thisMorning, streak: 4, wantConflict: true},
		{name: "long gap resets to one", last: &threeDaysAgo, streak: 9, wantStreak: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, err := applyCheckIn(tt.last, tt.streak, now)
			if tt.wantConflict {
				var sc *StateConflictError
				if !errors.As(err, &sc) {
					t.Fatalf("expected StateConflictError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if streak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", streak, tt.wantStreak)
			}
		})
	}
}

func TestNewReferralCode(t *testing.T) {
	for i := 0; i < 10; i++ {
		code := newReferralCode()
		if len(code) != 8 {
			t.Fatalf("referral code length = %d, want 8", len(code))
		}
		for _, r := range code {
			if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
				t.Fatalf("referral code %q contains unexpected character %q", code, r)
			}
		}
	}
}
