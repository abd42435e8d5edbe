package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trade-journal/internal/domain/journal"
)

// TradeWriter 定義批次寫入介面；重複 id 由儲存層跳過、不報錯。
type TradeWriter interface {
	BulkInsert(ctx context.Context, userID string, records []journal.TradeRecord) (int, error)
}

// UseCase 從 CSV 批次匯入交易紀錄。
type UseCase struct {
	trades TradeWriter
}

func NewUseCase(trades TradeWriter) *UseCase {
	return &UseCase{trades: trades}
}

// Failure 描述被跳過的資料列。
type Failure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result 匯入結果摘要。Skipped 含重複 id 與無法解析的列。
type Result struct {
	Inserted int       `json:"inserted"`
	Skipped  int       `json:"skipped"`
	Failures []Failure `json:"failures,omitempty"`
}

// ImportCSV 讀取與匯出格式相同的 CSV（首列為欄名，未知欄位忽略），
// 逐列寬鬆解析後批次寫入。id 為必填唯一鍵，缺漏或無法解析的列跳過。
func (uc *UseCase) ImportCSV(ctx context.Context, userID string, r io.Reader) (Result, error) {
	var result Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 列長不一致交由逐欄對應處理

	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["id"]; !ok {
		return result, fmt.Errorf("csv header missing id column")
	}

	var records []journal.TradeRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Failures = append(result.Failures, Failure{Line: line, Reason: err.Error()})
			continue
		}
		rec, err := parseRow(cols, row)
		if err != nil {
			result.Skipped++
			result.Failures = append(result.Failures, Failure{Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return result, nil
	}
	inserted, err := uc.trades.BulkInsert(ctx, userID, records)
	if err != nil {
		return result, fmt.Errorf("bulk insert: %w", err)
	}
	result.Inserted = inserted
	result.Skipped += len(records) - inserted
	return result, nil
}

func parseRow(cols map[string]int, row []string) (journal.TradeRecord, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	idText := cell("id")
	if idText == "" {
		return journal.TradeRecord{}, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return journal.TradeRecord{}, fmt.Errorf("invalid id %q", idText)
	}

	rec := journal.TradeRecord{
		ID:            id,
		Ticket:        cell("ticket"),
		Symbol:        cell("symbol"),
		Timeframe:     cell("timeframe"),
		Session:       cell("session"),
		Side:          journal.Side(strings.ToUpper(cell("side"))),
		OpenTime:      cell("open_time"),
		CloseTime:     cell("close_time"),
		Volume:        numCell(cell("volume")),
		EntryPrice:    numCell(cell("entry_price")),
		ExitPrice:     numCell(cell("exit_price")),
		Pips:          numCell(cell("pips")),
		TargetRR:      cell("target_rr"),
		GrossPnl:      numCell(cell("gross_pnl")),
		NetPnl:        numCell(cell("net_pnl")),
		Fee:           numCell(cell("fee")),
		Swap:          numCell(cell("swap")),
		CloseReason:   cell("close_reason"),
		EA:            cell("ea"),
		Signal:        cell("signal"),
		Score:         cell("score"),
		TP1:           cell("tp1"),
		TP2:           cell("tp2"),
		TP3:           cell("tp3"),
		SL:            cell("sl"),
		CandlePattern: cell("candle_pattern"),
		PricePattern:  cell("price_pattern"),
		Trend:         cell("trend"),
		Emotion:       cell("emotion"),
		Notes:         cell("notes"),
	}
	return rec, nil
}

// numCell 寬鬆轉數字：空白或無法解析一律視為缺漏。
func numCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
