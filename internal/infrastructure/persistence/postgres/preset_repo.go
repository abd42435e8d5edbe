package postgres

import (
	"context"
	"database/sql"
	"time"
)

// FilterPresetStore 以使用者為鍵保存整份 preset JSON 文件。
type FilterPresetStore struct {
	db *sql.DB
}

func NewFilterPresetStore(db *sql.DB) *FilterPresetStore {
	return &FilterPresetStore{db: db}
}

func (s *FilterPresetStore) SaveDoc(ctx context.Context, userID string, doc []byte) error {
	const q = `
INSERT INTO filter_presets (user_id, doc, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW();
`
	_, err := s.db.ExecContext(ctx, q, userID, doc)
	return err
}

func (s *FilterPresetStore) LoadDoc(ctx context.Context, userID string) ([]byte, error) {
	const q = `
SELECT user_id, doc, updated_at FROM filter_presets WHERE user_id = $1 LIMIT 1;
`
	var (
		uID string
		doc []byte
	)
	if err := s.db.QueryRowContext(ctx, q, userID).Scan(&uID, &doc, new(time.Time)); err != nil {
		return nil, err
	}
	return doc, nil
}

// NotFound 判斷是否為未找到錯誤。
func (s *FilterPresetStore) NotFound(err error) bool {
	return err == sql.ErrNoRows
}
