package analytics

import (
	"strings"
	"time"

	"trade-journal/internal/domain/journal"
)

// UnknownReason is the sentinel bucket for trades without a close reason.
const UnknownReason = "UNKNOWN"

// Bin is one fixed-domain bucket (weekday or hour).
type Bin struct {
	Index   int     `json:"index"`
	Label   string  `json:"label"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
	Pnl     float64 `json:"pnl"`
}

func (b *Bin) add(r journal.TradeRecord) {
	b.Trades++
	b.Pnl += journal.SafeNumber(r.GrossPnl)
	if r.IsWin() {
		b.Wins++
	} else if r.IsLoss() {
		b.Losses++
	}
}

func (b *Bin) finalize() {
	if b.Trades > 0 {
		b.WinRate = float64(b.Wins) / float64(b.Trades) * 100
	}
}

// dayDisplayOrder re-maps the Sunday-based 0-6 computation order to the
// Monday-first presentation order.
var dayDisplayOrder = [7]int{1, 2, 3, 4, 5, 6, 0}

var dayLabels = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayOfWeekBins buckets records by the UTC calendar weekday of their open
// timestamp. All seven buckets are pre-seeded and always emitted, Monday
// through Sunday. Records whose open timestamp does not parse fall into no
// bucket at all (unlike the hour bins, which zero-fallback).
func DayOfWeekBins(records []journal.TradeRecord) []Bin {
	var buckets [7]Bin
	for i := range buckets {
		buckets[i].Index = i
		buckets[i].Label = dayLabels[i]
	}
	for _, r := range records {
		d, ok := journal.DayOfWeek(r.OpenTime)
		if !ok {
			continue
		}
		buckets[d].add(r)
	}
	out := make([]Bin, 0, 7)
	for _, d := range dayDisplayOrder {
		buckets[d].finalize()
		out = append(out, buckets[d])
	}
	return out
}

// HourOfDayBins buckets records by the wall-clock hour of their open
// timestamp in the given civil zone. All 24 buckets are pre-seeded and
// emitted in natural 0-23 order. Unparseable timestamps land in hour 0 by
// the documented HourOfDay fallback.
func HourOfDayBins(records []journal.TradeRecord, loc *time.Location) []Bin {
	buckets := make([]Bin, 24)
	for i := range buckets {
		buckets[i].Index = i
		buckets[i].Label = hourLabel(i)
	}
	for _, r := range records {
		h := journal.HourOfDay(r.OpenTime, loc)
		buckets[h].add(r)
	}
	for i := range buckets {
		buckets[i].finalize()
	}
	return buckets
}

func hourLabel(h int) string {
	const digits = "0123456789"
	return string([]byte{digits[h/10], digits[h%10]}) + ":00"
}

// ByCloseReason groups records by the upper-cased close-reason tag, with a
// sentinel bucket for missing reasons, sorted by trade count descending.
func ByCloseReason(records []journal.TradeRecord) []AggregateRow {
	return GroupBy(records, func(r journal.TradeRecord) (GroupKey, bool) {
		reason := strings.ToUpper(strings.TrimSpace(r.CloseReason))
		if reason == "" {
			reason = UnknownReason
		}
		return Key(reason), true
	})
}
