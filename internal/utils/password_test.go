package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordAndVerify(t *testing.T) {
	// Low cost keeps the test fast; the parameter path is the same.
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || hash == "correct horse battery staple" {
		t.Fatalf("hash = %q, want opaque digest", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash = %q, want bcrypt format", hash)
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Error("VerifyPassword = false for the original password")
	}
	if VerifyPassword(hash, "correct horse battery stapl") {
		t.Error("VerifyPassword = true for a wrong password")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	h1, err := HashPassword("same password", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same password", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt missing")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	if VerifyPassword("not a bcrypt hash", "anything") {
		t.Error("VerifyPassword = true for a malformed hash")
	}
}
