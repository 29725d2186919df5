// Package auth issues and validates the signed mode token. The app has
// no user accounts: everyone browses as a teacher, and knowing the admin
// passphrase unlocks the management surfaces for one session.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session modes.
const (
	ModeTeacher = "teacher"
	ModeAdmin   = "admin"
)

// Claims represents the mode token claims.
type Claims struct {
	Mode string `json:"mode"`
	jwt.RegisteredClaims
}

// TokenExpiry is the default mode token lifetime.
const TokenExpiry = 12 * time.Hour

// GenerateModeToken creates a signed token carrying the session mode.
func GenerateModeToken(secret, mode string) (string, error) {
	if mode != ModeTeacher && mode != ModeAdmin {
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	claims := Claims{
		Mode: mode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateModeToken parses and validates a mode token, returning the mode.
func ValidateModeToken(secret, tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.Mode != ModeTeacher && claims.Mode != ModeAdmin {
		return "", fmt.Errorf("unknown mode %q", claims.Mode)
	}

	return claims.Mode, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
