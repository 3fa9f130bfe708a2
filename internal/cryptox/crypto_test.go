package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	// одинаковые входы -> одинаковый вывод
	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	// snapshot
	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	// разные соли должны дать разные ключи
	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestMakeVerifier_Length(t *testing.T) {
	v := MakeVerifier([]byte("key"))
	if len(v) != 32 {
		t.Fatalf("verifier length = %d, want 32", len(v))
	}
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	s2, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	if len(s1) != SaltSize {
		t.Fatalf("salt length = %d, want %d", len(s1), SaltSize)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("two salts are equal")
	}
}

func TestMatches(t *testing.T) {
	salt := []byte("0123456789abcdef")
	verifier := MakeVerifier(DeriveKey([]byte("admin123"), salt))

	if !Matches([]byte("admin123"), salt, verifier) {
		t.Fatalf("expected match for the right password")
	}
	if Matches([]byte("admin124"), salt, verifier) {
		t.Fatalf("expected no match for a wrong password")
	}
	if Matches([]byte("admin123"), []byte("other-salt-00000"), verifier) {
		t.Fatalf("expected no match under another salt")
	}
}
