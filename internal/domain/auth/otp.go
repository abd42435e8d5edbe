package auth

import (
	"context"
	"time"
)

// MaxOTPAttempts 一組驗證碼允許的最大嘗試次數。
const MaxOTPAttempts = 5

// OTPChallenge 一次性驗證碼挑戰。驗證碼以 bcrypt 雜湊保存，原文只在
// 發送通道出現一次。
type OTPChallenge struct {
	ID         string
	UserID     string
	CodeHash   string
	ExpiresAt  time.Time
	Attempts   int
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Usable 檢查挑戰是否仍可驗證。
func (c OTPChallenge) Usable(now time.Time) bool {
	if c.ExpiresAt.Before(now) {
		return false
	}
	if c.ConsumedAt != nil && !c.ConsumedAt.IsZero() {
		return false
	}
	return c.Attempts < MaxOTPAttempts
}

// OTPStore 保存一次性驗證碼挑戰。
type OTPStore interface {
	SaveChallenge(ctx context.Context, ch OTPChallenge) error
	GetChallenge(ctx context.Context, id string) (OTPChallenge, error)
	UpdateChallenge(ctx context.Context, ch OTPChallenge) error
}
