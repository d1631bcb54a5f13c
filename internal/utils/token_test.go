package utils

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, 2, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token")
	}

	wantExp := time.Now().UTC().Add(7 * 24 * time.Hour)
	if d := tok.Exp.Sub(wantExp); d < -time.Minute || d > time.Minute {
		t.Errorf("Exp = %v, want about %v", tok.Exp, wantExp)
	}

	id, role, err := ParseSessionToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if id != 42 {
		t.Errorf("principal id = %d, want 42", id)
	}
	if role != 2 {
		t.Errorf("role = %d, want 2", role)
	}
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", 1, 0, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, _, err := ParseSessionToken("other-secret", tok.Token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseSessionTokenGarbage(t *testing.T) {
	if _, _, err := ParseSessionToken("secret", "not.a.jwt"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	// Negative TTL puts exp in the past.
	tok, err := NewSessionToken("secret", 1, 0, -1)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, _, err := ParseSessionToken("secret", tok.Token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestNewResetToken(t *testing.T) {
	tok, err := NewResetToken(30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	// 32 bytes of entropy as hex.
	if len(tok.Raw) != 64 {
		t.Errorf("len(Raw) = %d, want 64", len(tok.Raw))
	}
	wantExp := time.Now().UTC().Add(30 * time.Minute)
	if d := tok.Exp.Sub(wantExp); d < -time.Minute || d > time.Minute {
		t.Errorf("Exp = %v, want about %v", tok.Exp, wantExp)
	}

	other, err := NewResetToken(30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if tok.Raw == other.Raw {
		t.Error("two reset tokens are identical")
	}
}

func TestHashResetRaw(t *testing.T) {
	d1 := HashResetRaw("some raw token")
	d2 := HashResetRaw("some raw token")
	if d1 != d2 {
		t.Error("digest is not deterministic")
	}
	if len(d1) != 64 {
		t.Errorf("len(digest) = %d, want 64", len(d1))
	}
	if d1 == "some raw token" {
		t.Error("digest equals input")
	}
	if HashResetRaw("another token") == d1 {
		t.Error("distinct inputs share a digest")
	}
}
