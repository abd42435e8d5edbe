package presets

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	"trade-journal/internal/domain/journal"
)

// DocumentStore 以單一文件保存整份 preset 清單（read-modify-write 整份
// 文件，不做逐筆操作）。
type DocumentStore interface {
	LoadDoc(ctx context.Context, userID string) ([]byte, error)
	SaveDoc(ctx context.Context, userID string, doc []byte) error
	NotFound(err error) bool
}

// UseCase 管理使用者命名的 FilterState 快照。儲存層故障不得阻斷過濾
// 與統計，讀寫失敗一律降級為「沒有 preset」。
type UseCase struct {
	store DocumentStore
}

// NewUseCase 建立 preset 用例。
func NewUseCase(store DocumentStore) *UseCase {
	return &UseCase{store: store}
}

// List 回傳依名稱排序的 preset 清單。文件缺漏、讀取失敗或內容毀損都
// 視為空清單。
func (uc *UseCase) List(ctx context.Context, userID string) []journal.FilterPreset {
	doc, err := uc.store.LoadDoc(ctx, userID)
	if err != nil {
		if !uc.store.NotFound(err) {
			log.Printf("[presets] load failed for user %s: %v", userID, err)
		}
		return nil
	}
	var items []journal.FilterPreset
	if err := json.Unmarshal(doc, &items); err != nil {
		// Malformed payload means "no presets", not an error.
		log.Printf("[presets] malformed document for user %s: %v", userID, err)
		return nil
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Load 以名稱（大小寫敏感、完全比對）取回 preset。
func (uc *UseCase) Load(ctx context.Context, userID, name string) (journal.FilterPreset, bool) {
	for _, p := range uc.List(ctx, userID) {
		if p.Name == name {
			return p, true
		}
	}
	return journal.FilterPreset{}, false
}

// Save 以名稱 upsert；同名覆寫。preset 本身不合法時回傳錯誤，儲存層
// 寫入失敗則記錄後放行。
func (uc *UseCase) Save(ctx context.Context, userID string, preset journal.FilterPreset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	items := uc.List(ctx, userID)
	replaced := false
	for i := range items {
		if items[i].Name == preset.Name {
			items[i] = preset
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, preset)
	}
	uc.persist(ctx, userID, items)
	return nil
}

// Delete 移除指定名稱的 preset；不存在時不動作。
func (uc *UseCase) Delete(ctx context.Context, userID, name string) {
	items := uc.List(ctx, userID)
	kept := items[:0]
	for _, p := range items {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(items) {
		return
	}
	uc.persist(ctx, userID, kept)
}

func (uc *UseCase) persist(ctx context.Context, userID string, items []journal.FilterPreset) {
	if items == nil {
		items = []journal.FilterPreset{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		log.Printf("[presets] marshal failed for user %s: %v", userID, err)
		return
	}
	if err := uc.store.SaveDoc(ctx, userID, doc); err != nil {
		log.Printf("[presets] save failed for user %s: %v", userID, err)
	}
}
