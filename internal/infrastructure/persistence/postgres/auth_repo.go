package postgres

import (
	"context"
	"database/sql"
	"time"

	authDomain "trade-journal/internal/domain/auth"
	authinfra "trade-journal/internal/infrastructure/auth"
)

// AuthRepo 提供使用者、refresh session 與 OTP 挑戰的存取。
type AuthRepo struct {
	db *sql.DB
}

// NewAuthRepo 建立 AuthRepo。
func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// FindByEmail 依 email 查詢使用者。
func (r *AuthRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, password_hash, role, status, otp_enabled
FROM users
WHERE email = $1
LIMIT 1;
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByID 依 ID 查詢使用者。
func (r *AuthRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, password_hash, role, status, otp_enabled
FROM users
WHERE id = $1
LIMIT 1;
`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *AuthRepo) scanUser(row *sql.Row) (authDomain.User, error) {
	var u authDomain.User
	var role, status string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &role, &status, &u.OTPEnabled); err != nil {
		return authDomain.User{}, err
	}
	u.Role = authDomain.Role(role)
	u.Status = authDomain.Status(status)
	return u, nil
}

// SaveSession 寫入 refresh session。
func (r *AuthRepo) SaveSession(ctx context.Context, sess authDomain.Session) error {
	const q = `
INSERT INTO auth_sessions (user_id, refresh_token_id, expires_at, user_agent, ip_address)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.db.ExecContext(ctx, q, sess.UserID, sess.Token, sess.ExpiresAt, sess.UserAgent, sess.IPAddress)
	return err
}

// GetSession 依 token 取得 session。
func (r *AuthRepo) GetSession(ctx context.Context, token string) (authDomain.Session, error) {
	const q = `
SELECT user_id, refresh_token_id, expires_at, revoked_at, user_agent, ip_address, created_at
FROM auth_sessions
WHERE refresh_token_id = $1
LIMIT 1;
`
	var sess authDomain.Session
	var revoked sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, token).Scan(
		&sess.UserID, &sess.Token, &sess.ExpiresAt, &revoked, &sess.UserAgent, &sess.IPAddress, &sess.CreatedAt,
	); err != nil {
		return authDomain.Session{}, err
	}
	if revoked.Valid {
		t := revoked.Time
		sess.RevokedAt = &t
	}
	return sess, nil
}

// RevokeSession 將 session 標記為撤銷。
func (r *AuthRepo) RevokeSession(ctx context.Context, token string) error {
	const q = `UPDATE auth_sessions SET revoked_at = $2 WHERE refresh_token_id = $1 AND revoked_at IS NULL;`
	_, err := r.db.ExecContext(ctx, q, token, time.Now())
	return err
}

// SaveChallenge 寫入 OTP 挑戰。
func (r *AuthRepo) SaveChallenge(ctx context.Context, ch authDomain.OTPChallenge) error {
	const q = `
INSERT INTO otp_challenges (id, user_id, code_hash, expires_at, attempts)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.db.ExecContext(ctx, q, ch.ID, ch.UserID, ch.CodeHash, ch.ExpiresAt, ch.Attempts)
	return err
}

// GetChallenge 依 ID 取得 OTP 挑戰。
func (r *AuthRepo) GetChallenge(ctx context.Context, id string) (authDomain.OTPChallenge, error) {
	const q = `
SELECT id, user_id, code_hash, expires_at, attempts, consumed_at, created_at
FROM otp_challenges
WHERE id = $1
LIMIT 1;
`
	var ch authDomain.OTPChallenge
	var consumed sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&ch.ID, &ch.UserID, &ch.CodeHash, &ch.ExpiresAt, &ch.Attempts, &consumed, &ch.CreatedAt,
	); err != nil {
		return authDomain.OTPChallenge{}, err
	}
	if consumed.Valid {
		t := consumed.Time
		ch.ConsumedAt = &t
	}
	return ch, nil
}

// UpdateChallenge 更新嘗試次數與消耗時間。
func (r *AuthRepo) UpdateChallenge(ctx context.Context, ch authDomain.OTPChallenge) error {
	const q = `UPDATE otp_challenges SET attempts = $2, consumed_at = $3 WHERE id = $1;`
	var consumed interface{}
	if ch.ConsumedAt != nil {
		consumed = *ch.ConsumedAt
	}
	_, err := r.db.ExecContext(ctx, q, ch.ID, ch.Attempts, consumed)
	return err
}

// SeedDefaults 建立預設帳號(admin/user),重複執行為冪等。
func (r *AuthRepo) SeedDefaults(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	users := []struct {
		email string
		name  string
		role  authDomain.Role
	}{
		{"admin@example.com", "Admin", authDomain.RoleAdmin},
		{"user@example.com", "User", authDomain.RoleUser},
	}
	for _, u := range users {
		hash, err := authinfra.HashPassword("password123")
		if err != nil {
			return err
		}
		if err := upsertUserTx(ctx, tx, u.email, u.name, hash, string(u.role)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertUserTx(ctx context.Context, tx *sql.Tx, email, name, passwordHash, role string) error {
	const q = `
INSERT INTO users (email, display_name, password_hash, role, status)
VALUES ($1, $2, $3, $4, 'active')
ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role;
`
	_, err := tx.ExecContext(ctx, q, email, name, passwordHash, role)
	return err
}
