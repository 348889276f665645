package app

import (
	"testing"
	"time"
)

func TestTokenManagerGenerateAndParse(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "user-secret",
		Expiry:    time.Hour,
		Issuer:    "test-issuer",
	})

	uid := int64(1001)
	token, err := tm.Generate(uid, "tester", "127.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	user, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if user.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, user.UID)
	}
	if user.Nickname != "tester" {
		t.Errorf("Expected nickname %q, got %q", "tester", user.Nickname)
	}

	// 验证 ExpiresAt (由于只存了秒级 Unix 戳，允许 1 秒内的误差)
	expectedExp := time.Now().Add(time.Hour)
	if user.ExpiresAt.Unix() < expectedExp.Unix()-1 || user.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, user.ExpiresAt)
	}
}

func TestTokenManagerWrongKey(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: time.Hour})
	tmWrong := NewTokenManager(TokenConfig{SecretKey: "wrong-secret", Expiry: time.Hour})

	token, err := tmWrong.Generate(1, "tester", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}
}

func TestTokenManagerTampered(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: time.Hour})

	token, err := tm.Generate(1, "tester", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := tm.Parse(token + "tampered"); err == nil {
		t.Error("Expected error when parsing tampered token, but got nil")
	}
	if err := tm.Validate(token); err != nil {
		t.Errorf("Validate failed for valid token: %v", err)
	}
}

func TestTokenManagerExpired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: -time.Minute})

	token, err := tm.Generate(1, "tester", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Error("Expected error when parsing expired token, but got nil")
	}
}
