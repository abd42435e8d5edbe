package postgres

import (
	"context"
	"database/sql"

	"trade-journal/internal/domain/journal"
)

const tradeColumns = `id, ticket, symbol, timeframe, session, side, open_time, close_time,
       volume, entry_price, exit_price, pips, target_rr, gross_pnl, net_pnl, fee, swap,
       close_reason, ea, signal, score, tp1, tp2, tp3, sl,
       candle_pattern, price_pattern, trend, emotion, notes`

// TradeRepo 以 Postgres 儲存使用者的交易紀錄。
type TradeRepo struct {
	db *sql.DB
}

// NewTradeRepo 建立新實例。
func NewTradeRepo(db *sql.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

// ListRecent 取使用者最近的交易，open_time 字串遞減、id 遞減,作為統計快照。
func (r *TradeRepo) ListRecent(ctx context.Context, userID string, limit int) ([]journal.TradeRecord, error) {
	const q = `
SELECT ` + tradeColumns + `
FROM trades
WHERE user_id = $1
ORDER BY open_time DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Insert 寫入單筆交易。ID 為 0 時由資料庫配號。
func (r *TradeRepo) Insert(ctx context.Context, userID string, rec journal.TradeRecord) (int64, error) {
	if rec.ID != 0 {
		const q = `
INSERT INTO trades (id, user_id, ticket, symbol, timeframe, session, side, open_time, close_time,
                    volume, entry_price, exit_price, pips, target_rr, gross_pnl, net_pnl, fee, swap,
                    close_reason, ea, signal, score, tp1, tp2, tp3, sl,
                    candle_pattern, price_pattern, trend, emotion, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
RETURNING id;
`
		var id int64
		if err := r.db.QueryRowContext(ctx, q, append([]interface{}{rec.ID, userID}, tradeArgs(rec)...)...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	const q = `
INSERT INTO trades (user_id, ticket, symbol, timeframe, session, side, open_time, close_time,
                    volume, entry_price, exit_price, pips, target_rr, gross_pnl, net_pnl, fee, swap,
                    close_reason, ea, signal, score, tp1, tp2, tp3, sl,
                    candle_pattern, price_pattern, trend, emotion, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)
RETURNING id;
`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, append([]interface{}{userID}, tradeArgs(rec)...)...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// BulkInsert 批次寫入,重複 id 靜默略過,回傳實際寫入筆數。
func (r *TradeRepo) BulkInsert(ctx context.Context, userID string, records []journal.TradeRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO trades (id, user_id, ticket, symbol, timeframe, session, side, open_time, close_time,
                    volume, entry_price, exit_price, pips, target_rr, gross_pnl, net_pnl, fee, swap,
                    close_reason, ea, signal, score, tp1, tp2, tp3, sl,
                    candle_pattern, price_pattern, trend, emotion, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
ON CONFLICT (id) DO NOTHING;
`
	inserted := 0
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, q, append([]interface{}{rec.ID, userID}, tradeArgs(rec)...)...)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Delete 刪除使用者自己的交易,找不到時回傳 sql.ErrNoRows。
func (r *TradeRepo) Delete(ctx context.Context, userID string, id int64) error {
	const q = `DELETE FROM trades WHERE id = $1 AND user_id = $2;`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func tradeArgs(rec journal.TradeRecord) []interface{} {
	return []interface{}{
		rec.Ticket, rec.Symbol, rec.Timeframe, rec.Session, string(rec.Side), rec.OpenTime, rec.CloseTime,
		nullFloat(rec.Volume), nullFloat(rec.EntryPrice), nullFloat(rec.ExitPrice), nullFloat(rec.Pips),
		rec.TargetRR, nullFloat(rec.GrossPnl), nullFloat(rec.NetPnl), nullFloat(rec.Fee), nullFloat(rec.Swap),
		rec.CloseReason, rec.EA, rec.Signal, rec.Score, rec.TP1, rec.TP2, rec.TP3, rec.SL,
		rec.CandlePattern, rec.PricePattern, rec.Trend, rec.Emotion, rec.Notes,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (journal.TradeRecord, error) {
	var rec journal.TradeRecord
	var side string
	var volume, entry, exit, pips, gross, net, fee, swap sql.NullFloat64
	if err := row.Scan(
		&rec.ID, &rec.Ticket, &rec.Symbol, &rec.Timeframe, &rec.Session, &side, &rec.OpenTime, &rec.CloseTime,
		&volume, &entry, &exit, &pips, &rec.TargetRR, &gross, &net, &fee, &swap,
		&rec.CloseReason, &rec.EA, &rec.Signal, &rec.Score, &rec.TP1, &rec.TP2, &rec.TP3, &rec.SL,
		&rec.CandlePattern, &rec.PricePattern, &rec.Trend, &rec.Emotion, &rec.Notes,
	); err != nil {
		return journal.TradeRecord{}, err
	}
	rec.Side = journal.Side(side)
	rec.Volume = floatPtr(volume)
	rec.EntryPrice = floatPtr(entry)
	rec.ExitPrice = floatPtr(exit)
	rec.Pips = floatPtr(pips)
	rec.GrossPnl = floatPtr(gross)
	rec.NetPnl = floatPtr(net)
	rec.Fee = floatPtr(fee)
	rec.Swap = floatPtr(swap)
	return rec, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
