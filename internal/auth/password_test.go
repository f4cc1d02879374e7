package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("expected matching password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatch for wrong password")
	}
}

func TestNewSessionTokenUnique(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	b, _ := NewSessionToken()
	if a == b {
		t.Error("expected distinct tokens")
	}
	if len(a) != 43 {
		t.Errorf("token length = %d, want 43", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err != ErrPasswordTooShort {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}
