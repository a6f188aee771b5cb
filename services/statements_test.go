package services

import (
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
)

func TestAmountField(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  float64
		want   string
	}{
		{name: "gold stake principal groups thousands", format: "%.2f", value: 20000, want: `"20,000.00"`},
		{name: "small amount", format: "%.2f", value: 12.5, want: `"12.50"`},
		{name: "commission precision", format: "%.4f", value: 1200.06, want: `"1,200.0600"`},
		{name: "zero", format: "%.2f", value: 0, want: `"0.00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amountField(tt.format, tt.value); got != tt.want {
				t.Errorf("amountField(%q, %v) = %s, want %s", tt.format, tt.value, got, tt.want)
			}
		})
	}
}

func TestAmountFieldSurvivesCSVParsing(t *testing.T) {
	// A grouped amount must stay a single column when the row is read back.
	row := fmt.Sprintf("%s,%s,%s,%s\n", "2026-08-01", "deposit", "approved", amountField("%.2f", 20000))
	rec, err := csv.NewReader(strings.NewReader(row)).Read()
	if err != nil {
		t.Fatalf("rendered row does not parse as CSV: %v", err)
	}
	if len(rec) != 4 {
		t.Fatalf("parsed %d columns, want 4: %v", len(rec), rec)
	}
	if rec[3] != "20,000.00" {
		t.Errorf("amount column = %q, want %q", rec[3], "20,000.00")
	}
}
