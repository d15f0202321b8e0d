package utils

import (
	"errors"
	"testing"
	"time"

	"InsureCost/models"
)

const testSecret = "a-test-secret-of-enough-length"

func TestSessionSealerRoundTrip(t *testing.T) {
	sealer, err := NewSessionSealer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionSealer() error = %v", err)
	}

	stored := models.StoredSession{
		Session: models.Session{Username: "admin", Role: models.RoleAdmin, LoginTime: "2024-01-15 10:30:00"},
		Cookies: []models.StoredCookie{{Name: "session", Value: "abc"}},
	}
	token, err := sealer.Seal(stored)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	opened, err := sealer.Open(token)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if opened.Session != stored.Session {
		t.Errorf("Session = %+v, want %+v", opened.Session, stored.Session)
	}
	if len(opened.Cookies) != 1 || opened.Cookies[0].Value != "abc" {
		t.Errorf("Cookies = %+v", opened.Cookies)
	}
}

func TestSessionSealerRejectsExpiredAndForeignTokens(t *testing.T) {
	sealer, err := NewSessionSealer(testSecret, time.Minute)
	if err != nil {
		t.Fatalf("NewSessionSealer() error = %v", err)
	}
	token, err := sealer.Seal(models.StoredSession{Session: models.Session{Username: "u"}})
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	sealer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := sealer.Open(token); !errors.Is(err, models.ErrSessionExpired) {
		t.Errorf("Open() of expired token error = %v, want ErrSessionExpired", err)
	}

	other, err := NewSessionSealer("another-secret-of-enough-length", time.Minute)
	if err != nil {
		t.Fatalf("NewSessionSealer() error = %v", err)
	}
	if _, err := other.Open(token); err == nil {
		t.Error("Open() with a different key should fail")
	}
}

func TestNewSessionSealerRequiresLongSecret(t *testing.T) {
	if _, err := NewSessionSealer("short", time.Hour); err == nil {
		t.Error("expected an error for a short secret")
	}
}
