package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("VerifyPassword() rejected the right password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword() error = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("HashPassword() error = %v, want ErrPasswordTooShort", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"long enough", "abcdefgh", true},
		{"too short", "abc", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPasswordValid(tt.password); got != tt.want {
				t.Errorf("IsPasswordValid(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
