package authinfra

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// OTPGenerator 產生 6 位數字驗證碼與挑戰識別碼，皆取自 crypto/rand。
type OTPGenerator struct{}

const otpCodeMax = 1000000

// Code 回傳零填充的 6 位數驗證碼。
func (OTPGenerator) Code() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeMax))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ChallengeID 回傳隨機挑戰識別碼。
func (OTPGenerator) ChallengeID() (string, error) {
	return RandomToken()
}

// RandomToken 產生 64 字元 hex 隨機字串，refresh token 與挑戰識別碼
// 共用。
func RandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
