package analytics

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"trade-journal/internal/domain/journal"
)

// ExportColumns is the fixed export column order. The exporter and the
// importer share this layout; notes always come last.
var ExportColumns = []string{
	"id", "symbol", "timeframe", "session", "open_time", "close_time",
	"side", "volume", "entry_price", "exit_price", "pips", "target_rr",
	"gross_pnl", "net_pnl", "fee", "swap", "close_reason",
	"ea", "signal", "score", "tp1", "tp2", "tp3", "sl",
	"candle_pattern", "price_pattern", "trend", "emotion", "notes",
}

// ExportCSV serializes the records with the fixed column order and
// standard CSV quoting. Missing values render as empty cells, never as
// "null" or "NaN".
func ExportCSV(records []journal.TradeRecord) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(ExportColumns); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Symbol,
			r.Timeframe,
			r.Session,
			r.OpenTime,
			r.CloseTime,
			string(r.Side),
			num(r.Volume),
			num(r.EntryPrice),
			num(r.ExitPrice),
			num(r.Pips),
			r.TargetRR,
			num(r.GrossPnl),
			num(r.NetPnl),
			num(r.Fee),
			num(r.Swap),
			r.CloseReason,
			r.EA,
			r.Signal,
			r.Score,
			r.TP1,
			r.TP2,
			r.TP3,
			r.SL,
			r.CandlePattern,
			r.PricePattern,
			r.Trend,
			r.Emotion,
			r.Notes,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func num(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
