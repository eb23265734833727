package auth

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("hash equals the input")
	}
	if err := ComparePassword(hash, "secret123"); err != nil {
		t.Fatalf("ComparePassword error: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestComparePasswordEmpty(t *testing.T) {
	if err := ComparePassword("", "x"); err == nil {
		t.Fatalf("expected error for empty hash")
	}
	if err := ComparePassword("x", ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
