package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-journal/internal/domain/auth"
)

// UserRepository 存取使用者。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// PasswordHasher 驗證與產生雜湊，密碼與 OTP 驗證碼共用。
type PasswordHasher interface {
	Compare(hashed, plain string) bool
	Hash(plain string) (string, error)
}

// TokenIssuer 簽發/驗證 token。
type TokenIssuer interface {
	Issue(ctx context.Context, user auth.User, meta auth.TokenMeta) (auth.TokenPair, error)
	Refresh(ctx context.Context, token string) (auth.TokenPair, error)
	RevokeRefresh(ctx context.Context, token string) error
}

// CodeGenerator 產生一次性驗證碼與挑戰識別碼。
type CodeGenerator interface {
	Code() (string, error)
	ChallengeID() (string, error)
}

// CodeSender 將驗證碼送達使用者（Telegram、郵件等）。
type CodeSender interface {
	SendMessage(ctx context.Context, text string) error
}

// Permission 表示功能權限。
type Permission string

const (
	PermUserManage   Permission = "user:manage"
	PermTradesRead   Permission = "trades:read"
	PermTradesWrite  Permission = "trades:write"
	PermTradesImport Permission = "trades:import"
	PermStatsQuery   Permission = "stats:query"
	PermPresetsWrite Permission = "presets:write"
)

// RolePermissions 簡化權限表。
var RolePermissions = map[auth.Role][]Permission{
	auth.RoleAdmin: {
		PermUserManage,
		PermTradesRead,
		PermTradesWrite,
		PermTradesImport,
		PermStatsQuery,
		PermPresetsWrite,
	},
	auth.RoleUser: {
		PermTradesRead,
		PermTradesWrite,
		PermTradesImport,
		PermStatsQuery,
		PermPresetsWrite,
	},
}

// LoginUseCase 驗證帳密；啟用 OTP 的帳號改發一次性驗證碼挑戰，
// 由 VerifyOTP 換發 token。
type LoginUseCase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	otps   auth.OTPStore
	codes  CodeGenerator
	sender CodeSender
	otpTTL time.Duration
	now    func() time.Time
}

// NewLoginUseCase 建立登入用例。sender 可為 nil，此時 OTP 帳號無法登入。
func NewLoginUseCase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, otps auth.OTPStore, codes CodeGenerator, sender CodeSender, otpTTL time.Duration) *LoginUseCase {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &LoginUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		otps:   otps,
		codes:  codes,
		sender: sender,
		otpTTL: otpTTL,
		now:    time.Now,
	}
}

type LoginInput struct {
	Email    string
	Password string
	Meta     auth.TokenMeta
}

// LoginResult 二擇一：直接取得 token，或進入 OTP 第二因子。
type LoginResult struct {
	User        auth.User
	Token       auth.TokenPair
	OTPRequired bool
	ChallengeID string
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return out, errors.New("email and password required")
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return out, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return out, errors.New("user disabled or locked")
	}
	if !uc.hasher.Compare(user.Password, input.Password) {
		return out, errors.New("invalid credentials")
	}

	out.User = user
	if user.OTPEnabled {
		challengeID, err := uc.issueChallenge(ctx, user)
		if err != nil {
			return out, err
		}
		out.OTPRequired = true
		out.ChallengeID = challengeID
		return out, nil
	}

	token, err := uc.tokens.Issue(ctx, user, input.Meta)
	if err != nil {
		return out, fmt.Errorf("issue token: %w", err)
	}
	out.Token = token
	return out, nil
}

// ResendOTP 針對尚未過期的挑戰重新發碼，舊挑戰立即作廢。
func (uc *LoginUseCase) ResendOTP(ctx context.Context, challengeID string) (string, error) {
	ch, err := uc.otps.GetChallenge(ctx, challengeID)
	if err != nil {
		return "", fmt.Errorf("get challenge: %w", err)
	}
	if !ch.Usable(uc.now()) {
		return "", errors.New("challenge expired")
	}
	user, err := uc.users.FindByID(ctx, ch.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	consumed := uc.now()
	ch.ConsumedAt = &consumed
	if err := uc.otps.UpdateChallenge(ctx, ch); err != nil {
		return "", fmt.Errorf("retire challenge: %w", err)
	}
	return uc.issueChallenge(ctx, user)
}

type VerifyOTPInput struct {
	ChallengeID string
	Code        string
	Meta        auth.TokenMeta
}

// VerifyOTP 驗證一次性驗證碼並換發 token。錯誤的驗證碼會累積嘗試次
// 數，到達上限後整組挑戰作廢。
func (uc *LoginUseCase) VerifyOTP(ctx context.Context, input VerifyOTPInput) (LoginResult, error) {
	var out LoginResult
	if strings.TrimSpace(input.ChallengeID) == "" || strings.TrimSpace(input.Code) == "" {
		return out, errors.New("challenge id and code required")
	}

	ch, err := uc.otps.GetChallenge(ctx, input.ChallengeID)
	if err != nil {
		return out, fmt.Errorf("get challenge: %w", err)
	}
	now := uc.now()
	if !ch.Usable(now) {
		return out, errors.New("challenge expired")
	}

	if !uc.hasher.Compare(ch.CodeHash, strings.TrimSpace(input.Code)) {
		ch.Attempts++
		if err := uc.otps.UpdateChallenge(ctx, ch); err != nil {
			return out, fmt.Errorf("record attempt: %w", err)
		}
		return out, errors.New("invalid code")
	}

	ch.ConsumedAt = &now
	if err := uc.otps.UpdateChallenge(ctx, ch); err != nil {
		return out, fmt.Errorf("consume challenge: %w", err)
	}

	user, err := uc.users.FindByID(ctx, ch.UserID)
	if err != nil {
		return out, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() {
		return out, errors.New("user disabled or locked")
	}

	token, err := uc.tokens.Issue(ctx, user, input.Meta)
	if err != nil {
		return out, fmt.Errorf("issue token: %w", err)
	}
	out.User = user
	out.Token = token
	return out, nil
}

func (uc *LoginUseCase) issueChallenge(ctx context.Context, user auth.User) (string, error) {
	if uc.sender == nil {
		return "", errors.New("otp delivery channel not configured")
	}
	code, err := uc.codes.Code()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	id, err := uc.codes.ChallengeID()
	if err != nil {
		return "", fmt.Errorf("generate challenge id: %w", err)
	}
	hash, err := uc.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	now := uc.now()
	ch := auth.OTPChallenge{
		ID:        id,
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: now.Add(uc.otpTTL),
		CreatedAt: now,
	}
	if err := uc.otps.SaveChallenge(ctx, ch); err != nil {
		return "", fmt.Errorf("save challenge: %w", err)
	}
	msg := fmt.Sprintf("Trading journal verification code: %s (valid %d minutes)", code, int(uc.otpTTL.Minutes()))
	if err := uc.sender.SendMessage(ctx, msg); err != nil {
		return "", fmt.Errorf("send code: %w", err)
	}
	return ch.ID, nil
}

// RefreshUseCase 以 refresh token 換發新 token。
type RefreshUseCase struct {
	tokens TokenIssuer
}

func NewRefreshUseCase(tokens TokenIssuer) *RefreshUseCase {
	return &RefreshUseCase{tokens: tokens}
}

func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	if refreshToken == "" {
		return auth.TokenPair{}, errors.New("refresh token required")
	}
	return uc.tokens.Refresh(ctx, refreshToken)
}

// LogoutUseCase 處理 refresh token 作廢。
type LogoutUseCase struct {
	tokens TokenIssuer
}

func NewLogoutUseCase(tokens TokenIssuer) *LogoutUseCase {
	return &LogoutUseCase{tokens: tokens}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return errors.New("refresh token required")
	}
	return uc.tokens.RevokeRefresh(ctx, refreshToken)
}

// Authorizer 檢查角色/權限。
type Authorizer struct {
	users UserRepository
}

func NewAuthorizer(users UserRepository) *Authorizer {
	return &Authorizer{users: users}
}

func (a *Authorizer) HasPermission(role auth.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// AuthorizeInput 定義授權需求。
type AuthorizeInput struct {
	UserID   string
	Required []Permission
}

// AuthorizeResult 回傳授權結果。
type AuthorizeResult struct {
	Allowed bool
	Reason  string
}

// Authorize 檢查使用者是否具備所有所需權限。
func (a *Authorizer) Authorize(ctx context.Context, input AuthorizeInput) (AuthorizeResult, error) {
	user, err := a.users.FindByID(ctx, input.UserID)
	if err != nil {
		return AuthorizeResult{Allowed: false, Reason: "user not found"}, err
	}
	if !user.IsActive() {
		return AuthorizeResult{Allowed: false, Reason: "user inactive"}, nil
	}
	for _, perm := range input.Required {
		if !a.HasPermission(user.Role, perm) {
			return AuthorizeResult{Allowed: false, Reason: fmt.Sprintf("missing permission %s", perm)}, nil
		}
	}
	return AuthorizeResult{Allowed: true}, nil
}
