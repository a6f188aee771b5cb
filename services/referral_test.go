package services

import (
	"math"
	"testing"
)

func TestCommissionRateForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{level: 1, want: 0.06},
		{level: 2, want: 0.03},
		{level: 3, want: 0.01},
		{level: 0, want: 0},
		{level: 4, want: 0},
		{level: -1, want: 0},
	}
	for _, tt := range tests {
		if got := commissionRateForLevel(tt.level); got != tt.want {
			t.Errorf("commissionRateForLevel(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestCommissionPlan_FullChain(t *testing.T) {
	// C earned 1000; B referred C, A referred B, X referred A.
	plan := commissionPlan([]string{"B", "A", "X"}, 1000)
	if len(plan) != 3 {
		t.Fatalf("expected 3 credits, got %d", len(plan))
	}

	want := []struct {
		id     string
		level  int
		amount float64
	}{
		{"B", 1, 60},
		{"A", 2, 30},
		{"X", 3, 10},
	}
	for i, w := range want {
		got := plan[i]
		if got.ReferrerID != w.id || got.Level != w.level {
			t.Errorf("credit %d = {%s L%d}, want {%s L%d}", i, got.ReferrerID, got.Level, w.id, w.level)
		}
		if math.Abs(got.Amount-w.amount) > 1e-9 {
			t.Errorf("credit %d amount = %v, want %v", i, got.Amount, w.amount)
		}
	}
}

func TestCommissionPlan_ShortChain(t *testing.T) {
	// Depth-1 chain: only the direct referrer gets paid, and the missing
	// levels are not an error.
	plan := commissionPlan([]string{"B"}, 500)
	if len(plan) != 1 {
		t.Fatalf("expected 1 credit, got %d", len(plan))
	}
	if plan[0].Level != 1 || math.Abs(plan[0].Amount-30) > 1e-9 {
		t.Errorf("credit = L%d %.2f, want L1 30.00", plan[0].Level, plan[0].Amount)
	}
}

func TestCommissionPlan_TwoHops(t *testing.T) {
	// C referred by B referred by A; C earns 1000 gross.
	plan := commissionPlan([]string{"B", "A"}, 1000)
	if len(plan) != 2 {
		t.Fatalf("expected 2 credits, got %d", len(plan))
	}
	if math.Abs(plan[0].Amount-60) > 1e-9 {
		t.Errorf("B commission = %v, want 60", plan[0].Amount)
	}
	if math.Abs(plan[1].Amount-30) > 1e-9 {
		t.Errorf("A commission = %v, want 30", plan[1].Amount)
	}
}

func TestCommissionPlan_DeepChainCutAtThree(t *testing.T) {
	plan := commissionPlan([]string{"1", "2", "3", "4", "5"}, 1000)
	if len(plan) != 3 {
		t.Fatalf("expected cut at 3 credits, got %d", len(plan))
	}
	for i, credit := range plan {
		if credit.Level != i+1 {
			t.Errorf("credit %d has level %d", i, credit.Level)
		}
	}
}

func TestCommissionPlan_Degenerate(t *testing.T) {
	if got := commissionPlan(nil, 1000); len(got) != 0 {
		t.Errorf("no ancestors should yield no credits, got %d", len(got))
	}
	if got := commissionPlan([]string{"B"}, 0); len(got) != 0 {
		t.Errorf("zero gross should yield no credits, got %d", len(got))
	}
	if got := commissionPlan([]string{"B"}, -50); len(got) != 0 {
		t.Errorf("negative gross should yield no credits, got %d", len(got))
	}
}
