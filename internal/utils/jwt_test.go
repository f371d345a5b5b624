package utils

import (
	"testing"
	"time"

	"doctrack-be/internal/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	signed, expiresAt, err := GenerateAccessToken("u-1", "u@example.com", models.RoleAdmin, "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry not in the future")
	}

	claims, err := ValidateToken(signed, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "u@example.com" || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("token type = %q", claims.TokenType)
	}
}

func TestRefreshTokenHasNoRole(t *testing.T) {
	signed, err := GenerateRefreshToken("u-1", "u@example.com", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(signed, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Fatalf("token type = %q", claims.TokenType)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token carries role %q", claims.Role)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, _, err := GenerateAccessToken("u-1", "u@example.com", models.RoleUser, "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateToken(signed, "other"); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	signed, _, err := GenerateAccessToken("u-1", "u@example.com", models.RoleUser, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateToken(signed, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "hunter23"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
