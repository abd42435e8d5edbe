package journal

import (
	"errors"
	"strings"
)

// FilterState 七個皆可留空的查詢條件。日期為 civil date（2006-01-02），
// 其餘為大小寫不敏感的完全比對。
type FilterState struct {
	DateFrom  string `json:"date_from,omitempty"`
	DateTo    string `json:"date_to,omitempty"`
	EA        string `json:"ea,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	Side      string `json:"side,omitempty"`
	Session   string `json:"session,omitempty"`
}

// IsEmpty 回傳是否完全未設定條件。
func (f FilterState) IsEmpty() bool {
	return f == FilterState{}
}

// FilterPreset 使用者命名後保存的 FilterState 快照。名稱為唯一鍵，
// 同名覆寫。
type FilterPreset struct {
	Name   string      `json:"name"`
	Filter FilterState `json:"filter"`
}

// Validate 檢查 preset 基本合理性。
func (p FilterPreset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name is required")
	}
	return nil
}
