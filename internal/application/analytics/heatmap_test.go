package analytics

import (
	"testing"

	"trade-journal/internal/domain/journal"
)

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		winRate float64
		trades  int
		want    Severity
	}{
		{0, 0, SeverityEmpty},
		{100, 0, SeverityEmpty},
		{100, 2, SeverityInsufficient},
		{10, 1, SeverityInsufficient},
		{70, 3, SeverityExcellent},
		{69.9, 3, SeverityGood},
		{55, 10, SeverityGood},
		{45, 10, SeverityFair},
		{30, 10, SeverityWeak},
		{29.9, 10, SeverityPoor},
	}
	for _, c := range cases {
		if got := ClassifySeverity(c.winRate, c.trades); got != c.want {
			t.Errorf("ClassifySeverity(%v, %d) = %q, want %q", c.winRate, c.trades, got, c.want)
		}
	}
}

func TestHeatmap(t *testing.T) {
	records := []journal.TradeRecord{
		rec(1, func(r *journal.TradeRecord) { r.EA = "A"; r.Timeframe = "M15"; r.GrossPnl = pnl(1) }),
		rec(2, func(r *journal.TradeRecord) { r.EA = "A"; r.Timeframe = "M15"; r.GrossPnl = pnl(1) }),
		rec(3, func(r *journal.TradeRecord) { r.EA = "A"; r.Timeframe = "M15"; r.GrossPnl = pnl(-1) }),
		rec(4, func(r *journal.TradeRecord) { r.EA = "B"; r.Timeframe = "H1"; r.GrossPnl = pnl(1) }),
		rec(5, func(r *journal.TradeRecord) { r.Timeframe = "H1" }),
	}
	grid := Heatmap(records)

	if len(grid.EAs) != 3 || grid.EAs[0] != "A" || grid.EAs[1] != "B" || grid.EAs[2] != NoEA {
		t.Fatalf("EAs should be the sorted distinct observed values: %v", grid.EAs)
	}
	if len(grid.Timeframes) != 2 || grid.Timeframes[0] != "H1" || grid.Timeframes[1] != "M15" {
		t.Fatalf("timeframes should be the sorted distinct observed values: %v", grid.Timeframes)
	}
	if len(grid.Cells) != 3 {
		t.Fatalf("grid is sparse; expected 3 observed cells, got %d", len(grid.Cells))
	}

	var aM15 *HeatCell
	for i := range grid.Cells {
		if grid.Cells[i].EA == "A" && grid.Cells[i].Timeframe == "M15" {
			aM15 = &grid.Cells[i]
		}
	}
	if aM15 == nil {
		t.Fatal("missing A/M15 cell")
	}
	if aM15.Trades != 3 || aM15.Wins != 2 {
		t.Fatalf("A/M15 counts wrong: %+v", aM15)
	}
	if aM15.Severity != SeverityGood {
		t.Fatalf("66%% over 3 trades should classify good, got %q", aM15.Severity)
	}
	// Cells below the sample threshold ignore their win rate.
	for _, c := range grid.Cells {
		if c.Trades < 3 && c.Severity != SeverityInsufficient {
			t.Fatalf("thin cell misclassified: %+v", c)
		}
	}
}
