package services

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"xnrt-rewards-system/models"

	"gorm.io/gorm"
)

func TestMiningFinalReward(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		boostPct int
		adBoosts int
		want     float64
	}{
		{name: "no boost", base: 100, boostPct: 0, adBoosts: 0, want: 100},
		{name: "percentage boost only", base: 100, boostPct: 20, adBoosts: 0, want: 120},
		{name: "ad boosts only", base: 100, boostPct: 0, adBoosts: 3, want: 130},
		{name: "boost and ads stack", base: 100, boostPct: 50, adBoosts: 2, want: 170},
		{name: "ads are flat, not boosted", base: 200, boostPct: 100, adBoosts: 1, want: 410},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := miningFinalReward(tt.base, tt.boostPct, tt.adBoosts)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("miningFinalReward(%v, %d, %d) = %v, want %v", tt.base, tt.boostPct, tt.adBoosts, got, tt.want)
			}
		})
	}
}

func TestValidateSessionStart(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		last         *models.MiningSession
		wantConflict bool
	}{
		{
			name: "first session ever",
			last: nil,
		},
		{
			name: "previous session still active",
			last: &models.MiningSession{
				Status:  models.MiningActive,
				EndTime: now.Add(time.Hour),
			},
			wantConflict: true,
		},
		{
			name: "cooldown not over",
			last: &models.MiningSession{
				Status:        models.MiningCompleted,
				NextAvailable: now.Add(time.Hour),
			},
			wantConflict: true,
		},
		{
			name: "cooldown passed",
			last: &models.MiningSession{
				Status:        models.MiningCompleted,
				NextAvailable: now.Add(-time.Minute),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionStart(tt.last, now)
			if tt.wantConflict {
				var sc *StateConflictError
				if !errors.As(err, &sc) {
					t.Errorf("expected StateConflictError, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected start to be allowed, got %v", err)
			}
		})
	}
}

func TestSessionInsertErr(t *testing.T) {
	// Two concurrent starts can both pass validation; the loser's insert
	// hits the one-active-session index and must surface as a conflict,
	// not a 500.
	var sc *StateConflictError
	if err := sessionInsertErr(gorm.ErrDuplicatedKey); !errors.As(err, &sc) {
		t.Errorf("duplicate key should map to StateConflictError, got %v", err)
	}
	if err := sessionInsertErr(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)); !errors.As(err, &sc) {
		t.Errorf("wrapped duplicate key should map to StateConflictError, got %v", err)
	}

	passthrough := errors.New("connection reset")
	if err := sessionInsertErr(passthrough); !errors.Is(err, passthrough) {
		t.Errorf("unrelated errors must pass through, got %v", err)
	}
}

func TestValidateSessionClaim(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		sess         models.MiningSession
		wantConflict bool
	}{
		{
			name: "claim before end time",
			sess: models.MiningSession{
				Status:  models.MiningActive,
				EndTime: now.Add(time.Minute),
			},
			wantConflict: true,
		},
		{
			name: "claim exactly at end time",
			sess: models.MiningSession{
				Status:  models.MiningActive,
				EndTime: now,
			},
		},
		{
			name: "claim after end time",
			sess: models.MiningSession{
				Status:  models.MiningActive,
				EndTime: now.Add(-time.Hour),
			},
		},
		{
			name: "already completed",
			sess: models.MiningSession{
				Status:  models.MiningCompleted,
				EndTime: now.Add(-time.Hour),
			},
			wantConflict: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionClaim(&tt.sess, now)
			if tt.wantConflict {
				var sc *StateConflictError
				if !errors.As(err, &sc) {
					t.Errorf("expected StateConflictError, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected claim to be allowed, got %v", err)
			}
		})
	}
}
