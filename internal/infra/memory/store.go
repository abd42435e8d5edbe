package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	authDomain "trade-journal/internal/domain/auth"
	"trade-journal/internal/domain/journal"
	authinfra "trade-journal/internal/infrastructure/auth"
)

var errNotFound = errors.New("not found")

// Store 為無資料庫模式使用的記憶體儲存,實作所有 repository 介面。
type Store struct {
	mu         sync.RWMutex
	users      map[string]authDomain.User
	sessions   map[string]sessionRecord
	challenges map[string]authDomain.OTPChallenge
	trades     map[string]map[int64]journal.TradeRecord // userID -> id -> record
	presetDocs map[string][]byte
	idSeq      int64
	tradeSeq   int64
}

type sessionRecord struct {
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent string
	IPAddress string
	CreatedAt time.Time
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:      make(map[string]authDomain.User),
		sessions:   make(map[string]sessionRecord),
		challenges: make(map[string]authDomain.OTPChallenge),
		trades:     make(map[string]map[int64]journal.TradeRecord),
		presetDocs: make(map[string][]byte),
	}
}

func (s *Store) nextID() string {
	s.idSeq++
	return fmt.Sprintf("id-%d", s.idSeq)
}

// SeedUsers 建立預設帳號供登入測試。
func (s *Store) SeedUsers() {
	hash := func(p string) string {
		h, err := authinfra.HashPassword(p)
		if err != nil {
			return p
		}
		return h
	}
	s.AddUser("admin@example.com", hash("password123"), "Admin", authDomain.RoleAdmin, false)
	s.AddUser("user@example.com", hash("password123"), "User", authDomain.RoleUser, false)
}

// AddUser 建立帳號並回傳其 ID。
func (s *Store) AddUser(email, passwordHash, name string, role authDomain.Role, otp bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.users[id] = authDomain.User{
		ID:         id,
		Email:      email,
		Name:       name,
		Role:       role,
		Status:     authDomain.StatusActive,
		Password:   passwordHash,
		OTPEnabled: otp,
	}
	return id
}

// UserRepository impl
// FindByEmail 依 email 查詢使用者。
func (s *Store) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return authDomain.User{}, fmt.Errorf("user not found")
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, fmt.Errorf("user not found")
	}
	return u, nil
}

// SessionStore impl
func (s *Store) SaveSession(ctx context.Context, sess authDomain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sessionRecord{
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt,
		RevokedAt: sess.RevokedAt,
		UserAgent: sess.UserAgent,
		IPAddress: sess.IPAddress,
		CreatedAt: sess.CreatedAt,
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (authDomain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[token]
	if !ok {
		return authDomain.Session{}, fmt.Errorf("session not found")
	}
	return authDomain.Session{
		Token:     token,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		RevokedAt: rec.RevokedAt,
		UserAgent: rec.UserAgent,
		IPAddress: rec.IPAddress,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *Store) RevokeSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[token]
	if !ok {
		return fmt.Errorf("session not found")
	}
	now := time.Now()
	rec.RevokedAt = &now
	s.sessions[token] = rec
	return nil
}

// OTPStore impl
func (s *Store) SaveChallenge(ctx context.Context, ch authDomain.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = ch
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id string) (authDomain.OTPChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.challenges[id]
	if !ok {
		return authDomain.OTPChallenge{}, fmt.Errorf("challenge not found")
	}
	return ch, nil
}

func (s *Store) UpdateChallenge(ctx context.Context, ch authDomain.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[ch.ID]; !ok {
		return fmt.Errorf("challenge not found")
	}
	s.challenges[ch.ID] = ch
	return nil
}

// TradeReader impl
// ListRecent 回傳使用者最近的交易,open_time 字串遞減、id 遞減。
func (s *Store) ListRecent(ctx context.Context, userID string, limit int) ([]journal.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []journal.TradeRecord
	for _, rec := range s.trades[userID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenTime != out[j].OpenTime {
			return out[i].OpenTime > out[j].OpenTime
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Insert 寫入單筆交易,ID 為 0 時自動配號。
func (s *Store) Insert(ctx context.Context, userID string, rec journal.TradeRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trades[userID] == nil {
		s.trades[userID] = make(map[int64]journal.TradeRecord)
	}
	if rec.ID == 0 {
		s.tradeSeq++
		rec.ID = s.tradeSeq
	} else if rec.ID > s.tradeSeq {
		s.tradeSeq = rec.ID
	}
	s.trades[userID][rec.ID] = rec
	return rec.ID, nil
}

// TradeWriter impl
// BulkInsert 批次寫入,重複 id 靜默略過,回傳實際寫入筆數。
func (s *Store) BulkInsert(ctx context.Context, userID string, records []journal.TradeRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trades[userID] == nil {
		s.trades[userID] = make(map[int64]journal.TradeRecord)
	}
	inserted := 0
	for _, rec := range records {
		if _, exists := s.trades[userID][rec.ID]; exists {
			continue
		}
		s.trades[userID][rec.ID] = rec
		if rec.ID > s.tradeSeq {
			s.tradeSeq = rec.ID
		}
		inserted++
	}
	return inserted, nil
}

// Delete 刪除使用者自己的交易,找不到時回傳 sql.ErrNoRows。
func (s *Store) Delete(ctx context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trades[userID][id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.trades[userID], id)
	return nil
}

// DocumentStore impl
func (s *Store) SaveDoc(ctx context.Context, userID string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presetDocs[userID] = doc
	return nil
}

func (s *Store) LoadDoc(ctx context.Context, userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.presetDocs[userID]
	if !ok {
		return nil, errNotFound
	}
	return doc, nil
}

// NotFound 判斷是否為未找到錯誤。
func (s *Store) NotFound(err error) bool {
	return errors.Is(err, errNotFound)
}
