package analytics

import (
	"context"
	"fmt"
	"time"

	"trade-journal/internal/domain/journal"
)

// DefaultSnapshotLimit bounds the working set; the engines are sized for a
// few thousand records recomputed wholesale on every filter change.
const DefaultSnapshotLimit = 2000

// TradeReader 提供交易快照查詢，依開倉時間遞減、id 遞減排序。
type TradeReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]journal.TradeRecord, error)
}

// QueryUseCase 取得使用者的交易快照並套用過濾條件；其餘統計一律是
// 對快照呼叫本套件的純函式，重算整批、不做增量更新。
type QueryUseCase struct {
	trades TradeReader
	limit  int
	loc    *time.Location
}

// NewQueryUseCase 建立查詢用例。limit <= 0 時套用預設上限。
func NewQueryUseCase(trades TradeReader, limit int, loc *time.Location) *QueryUseCase {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	return &QueryUseCase{trades: trades, limit: limit, loc: loc}
}

// Location 回傳時區設定，供 hour-of-day 分桶使用。
func (uc *QueryUseCase) Location() *time.Location {
	return uc.loc
}

// Snapshot 取得快照並套用過濾條件。取得失敗時回傳錯誤，由呼叫端以
// 「快照為空」的行為對待後續統計。
func (uc *QueryUseCase) Snapshot(ctx context.Context, userID string, state journal.FilterState) ([]journal.TradeRecord, error) {
	records, err := uc.trades.ListRecent(ctx, userID, uc.limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return ApplyFilters(records, state), nil
}
