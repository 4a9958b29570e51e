/*
Package token mints and validates the signed cookie that links a browser
to a remembered sign-in.
*/
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// SessionCookieName is the cookie the browser presents on every request.
	SessionCookieName = "take_session"

	// SessionExpiration is how long the cookie stays valid.
	SessionExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies tokens minted by this application.
	TokenIssuer = "take-app"
)

// Generate creates and signs a session token for the given payload.
func Generate(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return tok.SignedString([]byte(secretKey))
}

// Parse validates the token string and returns its payload.
func Parse(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !tok.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}
