package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "admin123" {
		t.Fatal("HashPassword() returned the plaintext")
	}
	if !CheckPassword(hash, "admin123") {
		t.Error("CheckPassword() = false for correct password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword() = true for wrong password")
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(7, "admin", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 7 || claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("Validate() claims = %+v", claims)
	}
	if claims.Issuer != "aptledger" {
		t.Errorf("Validate() issuer = %q, want aptledger", claims.Issuer)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue(1, "admin", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Validate(token); err == nil {
		t.Error("Validate() error = nil for token signed with a different secret")
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.Validate("not.a.token"); err == nil {
		t.Error("Validate() error = nil for garbage token")
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	if tm.TTL() != 24*time.Hour {
		t.Errorf("TTL() = %v, want 24h default", tm.TTL())
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", false},
		{"missing scheme", "abc123", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"empty header", "", "", true},
		{"extra parts", "Bearer a b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearer(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractBearer(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	b, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical, salt missing")
	}
	if !strings.HasPrefix(a, "$2") {
		t.Errorf("hash %q is not a bcrypt hash", a)
	}
}
