package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName carries the signed session credential.
const CookieName = "x-auth-token"

// Claims bind a session token to one room. The raw token is the bearer
// credential admitted into the room's connected list; the JWT is only its
// tamper-proof envelope on the way to and from the client.
type Claims struct {
	Room  string `json:"room"`
	Token string `json:"token"`
	jwt.RegisteredClaims
}

// SessionConfig holds cookie signing and attribute configuration.
type SessionConfig struct {
	Secret []byte
	Issuer string
	// Secure marks issued cookies HTTPS-only.
	Secure bool
}

// SignToken wraps a raw session token for roomID into a signed cookie value.
// Its lifetime matches the room's remaining TTL; an expired cookie is as
// useless as the expired room it pointed at.
func SignToken(cfg *SessionConfig, roomID, token string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Room:  roomID,
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}

// ExtractToken validates a cookie value and returns the raw session token it
// carries, provided it was issued for roomID.
func ExtractToken(cfg *SessionConfig, cookie, roomID string) (string, error) {
	token, err := jwt.ParseWithClaims(cookie, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session cookie: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session claims")
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return "", fmt.Errorf("invalid issuer")
	}
	if claims.Room != roomID {
		return "", fmt.Errorf("session issued for another room")
	}

	return claims.Token, nil
}
