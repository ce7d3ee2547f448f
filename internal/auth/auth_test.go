package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "pass" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPasswordHash("pass", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	tokenString, err := GenerateJWT("bodega1", "Bodega Uno", "warehouse", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not parse as valid: %v", err)
	}

	if claims.Username != "bodega1" || claims.FullName != "Bodega Uno" || claims.Role != "warehouse" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("unexpected expiration: %v", claims.ExpiresAt)
	}
}
