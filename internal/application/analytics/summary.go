package analytics

import (
	"trade-journal/internal/domain/journal"
)

// Summary is the headline view over the filtered snapshot.
type Summary struct {
	Trades        int     `json:"trades"`
	Closed        int     `json:"closed"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	GrossPnl      float64 `json:"gross_pnl"`
	NetPnl        float64 `json:"net_pnl"`
	Fees          float64 `json:"fees"`
	Swap          float64 `json:"swap"`
	AvgDurationMS int64   `json:"avg_duration_ms"`
}

// Summarize computes headline totals in one pass. The average duration
// only covers records where both timestamps parse and the delta is
// positive; everything else is excluded from the average, not counted as
// zero.
func Summarize(records []journal.TradeRecord) Summary {
	var s Summary
	var durTotal int64
	var durCount int64
	for _, r := range records {
		s.Trades++
		if r.IsClosed() {
			s.Closed++
		}
		if r.IsWin() {
			s.Wins++
		} else if r.IsLoss() {
			s.Losses++
		}
		s.GrossPnl += journal.SafeNumber(r.GrossPnl)
		s.NetPnl += journal.SafeNumber(r.NetPnl)
		s.Fees += journal.SafeNumber(r.Fee)
		s.Swap += journal.SafeNumber(r.Swap)
		if d := journal.DurationMS(r.OpenTime, r.CloseTime); d > 0 {
			durTotal += d
			durCount++
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if durCount > 0 {
		s.AvgDurationMS = durTotal / durCount
	}
	return s
}
