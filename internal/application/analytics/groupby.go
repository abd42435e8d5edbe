package analytics

import (
	"sort"
	"strings"

	"trade-journal/internal/domain/journal"
)

// Sentinels substituted for missing dimension values so that "missing"
// can never collide with a legitimate empty-looking tag.
const (
	NoEA        = "no EA"
	NoSymbol    = "no symbol"
	NoTimeframe = "no timeframe"
)

// labelSeparator only appears in display labels; grouping itself keys on
// the typed tuple, so tag text can never collide with it.
const labelSeparator = " | "

// GroupKey is a comparable tuple of up to four dimension values.
type GroupKey struct {
	dims [4]string
	n    int
}

// Key builds a GroupKey from 1-4 dimension values.
func Key(dims ...string) GroupKey {
	var k GroupKey
	k.n = len(dims)
	copy(k.dims[:], dims)
	return k
}

// Parts returns the populated dimension values in order.
func (k GroupKey) Parts() []string {
	return k.dims[:k.n]
}

// Label joins the dimensions for display.
func (k GroupKey) Label() string {
	return strings.Join(k.Parts(), labelSeparator)
}

func (k GroupKey) less(other GroupKey) bool {
	for i := 0; i < k.n && i < other.n; i++ {
		if k.dims[i] != other.dims[i] {
			return k.dims[i] < other.dims[i]
		}
	}
	return k.n < other.n
}

// AggregateRow is the generic per-group result shape shared by every
// grouping this package produces.
type AggregateRow struct {
	Dims    []string `json:"dims"`
	Label   string   `json:"label"`
	Trades  int      `json:"trades"`
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses"`
	WinRate float64  `json:"win_rate"`
	Pnl     float64  `json:"pnl"`

	key GroupKey
}

// KeyFunc extracts the group key for one record. Returning ok=false skips
// the record for this grouping (used by four-dimension confluences whose
// fourth tag is absent).
type KeyFunc func(journal.TradeRecord) (GroupKey, bool)

type tally struct {
	trades int
	wins   int
	losses int
	pnl    float64
}

// GroupBy runs one pass over records, accumulating per-key counts, win and
// loss counts and summed gross P&L. Wins and losses are strict: a zero or
// missing gross P&L increments neither. Rows come back sorted by trade
// count descending; ties are broken by key ascending so the output is
// deterministic.
func GroupBy(records []journal.TradeRecord, keyFn KeyFunc) []AggregateRow {
	groups := make(map[GroupKey]*tally)
	for _, r := range records {
		k, ok := keyFn(r)
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &tally{}
			groups[k] = g
		}
		g.trades++
		g.pnl += journal.SafeNumber(r.GrossPnl)
		if r.IsWin() {
			g.wins++
		} else if r.IsLoss() {
			g.losses++
		}
	}

	rows := make([]AggregateRow, 0, len(groups))
	for k, g := range groups {
		row := AggregateRow{
			Dims:   k.Parts(),
			Label:  k.Label(),
			Trades: g.trades,
			Wins:   g.wins,
			Losses: g.losses,
			Pnl:    g.pnl,
			key:    k,
		}
		if g.trades > 0 {
			row.WinRate = float64(g.wins) / float64(g.trades) * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Trades != rows[j].Trades {
			return rows[i].Trades > rows[j].Trades
		}
		return rows[i].key.less(rows[j].key)
	})
	return rows
}

// dim trims a tag value and substitutes the sentinel when it is missing.
func dim(v, sentinel string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return sentinel
	}
	return v
}

// ByEA groups the records by automated-strategy name.
func ByEA(records []journal.TradeRecord) []AggregateRow {
	return GroupBy(records, func(r journal.TradeRecord) (GroupKey, bool) {
		return Key(dim(r.EA, NoEA)), true
	})
}

// BySymbol groups the records by instrument symbol.
func BySymbol(records []journal.TradeRecord) []AggregateRow {
	return GroupBy(records, func(r journal.TradeRecord) (GroupKey, bool) {
		return Key(dim(r.Symbol, NoSymbol)), true
	})
}

// ByTimeframe groups the records by chart timeframe.
func ByTimeframe(records []journal.TradeRecord) []AggregateRow {
	return GroupBy(records, func(r journal.TradeRecord) (GroupKey, bool) {
		return Key(dim(r.Timeframe, NoTimeframe)), true
	})
}

// ConfluenceDim names the optional fourth confluence dimension.
type ConfluenceDim string

const (
	DimNone    ConfluenceDim = ""
	DimPattern ConfluenceDim = "pattern"
	DimCandle  ConfluenceDim = "candle"
	DimEmotion ConfluenceDim = "emotion"
	DimSession ConfluenceDim = "session"
)

// Confluences groups by EA x symbol x timeframe, optionally extended by a
// fourth tag. The three base dimensions always substitute sentinels for
// missing values; when a fourth dimension is requested, records lacking
// that tag are skipped entirely instead of getting a sentinel.
func Confluences(records []journal.TradeRecord, fourth ConfluenceDim) []AggregateRow {
	return GroupBy(records, func(r journal.TradeRecord) (GroupKey, bool) {
		base := [3]string{dim(r.EA, NoEA), dim(r.Symbol, NoSymbol), dim(r.Timeframe, NoTimeframe)}
		if fourth == DimNone {
			return Key(base[0], base[1], base[2]), true
		}
		var tag string
		switch fourth {
		case DimPattern:
			tag = r.PricePattern
		case DimCandle:
			tag = r.CandlePattern
		case DimEmotion:
			tag = r.Emotion
		case DimSession:
			tag = r.Session
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return GroupKey{}, false
		}
		return Key(base[0], base[1], base[2], tag), true
	})
}

// Sniper confluence policy: a minimum sample size before a combination is
// ranked, and how many combinations to surface.
const (
	sniperMinTrades = 5
	sniperTopN      = 10
)

// SniperConfluences filters the EA x symbol x timeframe aggregate down to
// rows with enough trades, re-sorts by win rate descending (trade count
// breaks ties) and keeps the top entries.
func SniperConfluences(records []journal.TradeRecord) []AggregateRow {
	rows := Confluences(records, DimNone)
	kept := rows[:0]
	for _, row := range rows {
		if row.Trades >= sniperMinTrades {
			kept = append(kept, row)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].WinRate != kept[j].WinRate {
			return kept[i].WinRate > kept[j].WinRate
		}
		if kept[i].Trades != kept[j].Trades {
			return kept[i].Trades > kept[j].Trades
		}
		return kept[i].key.less(kept[j].key)
	})
	if len(kept) > sniperTopN {
		kept = kept[:sniperTopN]
	}
	return kept
}
