package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: expiry * 7,
		Issuer:        "lms-api-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := testManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(42, "user@test.com", "student", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if jti == "" {
		t.Error("empty jti")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "user@test.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestRefreshTokenType(t *testing.T) {
	manager := testManager(time.Hour)

	token, _, err := manager.GenerateRefreshToken(1, "user@test.com", "student", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := testManager(-time.Minute)

	token, _, err := manager.GenerateAccessToken(1, "user@test.com", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, _, err := testManager(time.Hour).GenerateAccessToken(1, "user@test.com", "student", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	manager := testManager(time.Hour)
	if _, err := manager.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}
