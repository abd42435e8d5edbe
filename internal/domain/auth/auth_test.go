package auth

import (
	"testing"
	"time"
)

func TestUserValidate(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.c", Role: RoleUser, Status: StatusActive}
	if err := u.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u.Email = ""
	if err := u.Validate(); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestUserIsActive(t *testing.T) {
	if (User{Status: StatusLocked}).IsActive() {
		t.Fatal("locked user should not be active")
	}
	if !(User{Status: StatusActive}).IsActive() {
		t.Fatal("active user should be active")
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	if !s.Active(now) {
		t.Fatal("unexpired session should be active")
	}
	revoked := now
	s.RevokedAt = &revoked
	if s.Active(now) {
		t.Fatal("revoked session should not be active")
	}
	s = Session{ExpiresAt: now.Add(-time.Minute)}
	if s.Active(now) {
		t.Fatal("expired session should not be active")
	}
}

func TestOTPChallengeUsable(t *testing.T) {
	now := time.Now()
	ch := OTPChallenge{ExpiresAt: now.Add(5 * time.Minute)}
	if !ch.Usable(now) {
		t.Fatal("fresh challenge should be usable")
	}
	ch.Attempts = MaxOTPAttempts
	if ch.Usable(now) {
		t.Fatal("exhausted challenge should not be usable")
	}
	ch = OTPChallenge{ExpiresAt: now.Add(-time.Second)}
	if ch.Usable(now) {
		t.Fatal("expired challenge should not be usable")
	}
	consumed := now
	ch = OTPChallenge{ExpiresAt: now.Add(time.Minute), ConsumedAt: &consumed}
	if ch.Usable(now) {
		t.Fatal("consumed challenge should not be usable")
	}
}
