package analytics

import (
	"sort"

	"trade-journal/internal/domain/journal"
)

// Severity classifies a heat cell for rendering.
type Severity string

const (
	SeverityEmpty        Severity = "empty"        // no trades at all
	SeverityInsufficient Severity = "insufficient" // too few trades to judge
	SeverityExcellent    Severity = "excellent"
	SeverityGood         Severity = "good"
	SeverityFair         Severity = "fair"
	SeverityWeak         Severity = "weak"
	SeverityPoor         Severity = "poor"
)

// Fixed classification policy; the thresholds are not derived from data.
const (
	minSampleTrades   = 3
	excellentWinRate  = 70
	goodWinRate       = 55
	fairWinRate       = 45
	weakWinRate       = 30
)

// ClassifySeverity maps (winRate, trades) to a severity bucket. Zero
// trades is always "empty"; below the minimum sample size the win rate is
// ignored entirely.
func ClassifySeverity(winRate float64, trades int) Severity {
	switch {
	case trades == 0:
		return SeverityEmpty
	case trades < minSampleTrades:
		return SeverityInsufficient
	case winRate >= excellentWinRate:
		return SeverityExcellent
	case winRate >= goodWinRate:
		return SeverityGood
	case winRate >= fairWinRate:
		return SeverityFair
	case winRate >= weakWinRate:
		return SeverityWeak
	default:
		return SeverityPoor
	}
}

// HeatCell is one (EA, timeframe) cell of the heat grid.
type HeatCell struct {
	EA        string   `json:"ea"`
	Timeframe string   `json:"timeframe"`
	Trades    int      `json:"trades"`
	Wins      int      `json:"wins"`
	WinRate   float64  `json:"win_rate"`
	Severity  Severity `json:"severity"`
}

// HeatGrid is the sparse EA x timeframe grid. EAs and Timeframes are the
// sorted distinct values observed in the input; an absent cell means zero
// trades for that pair.
type HeatGrid struct {
	EAs        []string   `json:"eas"`
	Timeframes []string   `json:"timeframes"`
	Cells      []HeatCell `json:"cells"`
}

// Heatmap builds the EA x timeframe grid over the records. Cells are
// emitted sorted by EA then timeframe so the output is deterministic.
func Heatmap(records []journal.TradeRecord) HeatGrid {
	type pair struct{ ea, tf string }
	cells := make(map[pair]*HeatCell)
	for _, r := range records {
		p := pair{dim(r.EA, NoEA), dim(r.Timeframe, NoTimeframe)}
		c := cells[p]
		if c == nil {
			c = &HeatCell{EA: p.ea, Timeframe: p.tf}
			cells[p] = c
		}
		c.Trades++
		if r.IsWin() {
			c.Wins++
		}
	}

	grid := HeatGrid{}
	seenEA := make(map[string]bool)
	seenTF := make(map[string]bool)
	for p, c := range cells {
		if c.Trades > 0 {
			c.WinRate = float64(c.Wins) / float64(c.Trades) * 100
		}
		c.Severity = ClassifySeverity(c.WinRate, c.Trades)
		grid.Cells = append(grid.Cells, *c)
		if !seenEA[p.ea] {
			seenEA[p.ea] = true
			grid.EAs = append(grid.EAs, p.ea)
		}
		if !seenTF[p.tf] {
			seenTF[p.tf] = true
			grid.Timeframes = append(grid.Timeframes, p.tf)
		}
	}
	sort.Strings(grid.EAs)
	sort.Strings(grid.Timeframes)
	sort.Slice(grid.Cells, func(i, j int) bool {
		if grid.Cells[i].EA != grid.Cells[j].EA {
			return grid.Cells[i].EA < grid.Cells[j].EA
		}
		return grid.Cells[i].Timeframe < grid.Cells[j].Timeframe
	})
	return grid
}
