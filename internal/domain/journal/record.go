package journal

import (
	"math"
	"strings"
	"time"
)

// Side 表示交易方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord 一筆已平倉或持倉中的交易，欄位多數可缺漏。
// 時間戳以原始字串保存，解析一律走 ParseInstant 的寬鬆規則。
type TradeRecord struct {
	ID        int64  `json:"id"`
	Ticket    string `json:"ticket,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	Session   string `json:"session,omitempty"`
	Side      Side   `json:"side,omitempty"`

	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`

	Volume     *float64 `json:"volume,omitempty"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`
	Pips       *float64 `json:"pips,omitempty"`
	TargetRR   string   `json:"target_rr,omitempty"`
	GrossPnl   *float64 `json:"gross_pnl,omitempty"`
	NetPnl     *float64 `json:"net_pnl,omitempty"`
	Fee        *float64 `json:"fee,omitempty"`
	Swap       *float64 `json:"swap,omitempty"`

	CloseReason string `json:"close_reason,omitempty"`

	EA           string `json:"ea,omitempty"`
	Signal       string `json:"signal,omitempty"`
	Score        string `json:"score,omitempty"`
	TP1          string `json:"tp1,omitempty"`
	TP2          string `json:"tp2,omitempty"`
	TP3          string `json:"tp3,omitempty"`
	SL           string `json:"sl,omitempty"`
	CandlePattern string `json:"candle_pattern,omitempty"`
	PricePattern  string `json:"price_pattern,omitempty"`
	Trend        string `json:"trend,omitempty"`
	Emotion      string `json:"emotion,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// IsClosed 以平倉時間是否存在判定。
func (r TradeRecord) IsClosed() bool {
	return strings.TrimSpace(r.CloseTime) != ""
}

// IsWin 僅以毛損益正負判定；零或缺漏兩者皆非。
func (r TradeRecord) IsWin() bool {
	return r.GrossPnl != nil && *r.GrossPnl > 0
}

// IsLoss 見 IsWin。
func (r TradeRecord) IsLoss() bool {
	return r.GrossPnl != nil && *r.GrossPnl < 0
}

// SafeNumber 將缺漏或 NaN 的數值一律化為 0，供下游彙總安心相加。
func SafeNumber(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

// instantLayouts are tried in order; the journal stores whatever the
// importer or the client sent, so parsing stays permissive.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant 寬鬆解析 ISO 風格時間字串；失敗回傳 ok=false，不報錯。
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HourOfDay 回傳時間戳在指定民用時區的 0-23 時；無法解析時回傳 0。
// 0 是既定的 fallback，呼叫端不把它當錯誤。
func HourOfDay(ts string, loc *time.Location) int {
	t, ok := ParseInstant(ts)
	if !ok {
		return 0
	}
	return t.In(loc).Hour()
}

// DayOfWeek 回傳 UTC 日曆的星期幾（0=Sunday）。與 HourOfDay 不同，
// 無法解析時回傳 ok=false，該筆交易不落入任何桶。
func DayOfWeek(ts string) (int, bool) {
	t, ok := ParseInstant(ts)
	if !ok {
		return 0, false
	}
	return int(t.UTC().Weekday()), true
}

// DurationMS 回傳持倉毫秒數；任一端缺漏、無法解析或差值非正時回傳 0。
func DurationMS(openTS, closeTS string) int64 {
	open, ok := ParseInstant(openTS)
	if !ok {
		return 0
	}
	closed, ok := ParseInstant(closeTS)
	if !ok {
		return 0
	}
	d := closed.Sub(open)
	if d <= 0 {
		return 0
	}
	return d.Milliseconds()
}
