package token

import "github.com/golang-jwt/jwt"

// Payload is the claims structure carried by the browser session cookie.
// It identifies the signed-in user between the sign-in callback and later
// screen connections; session validity itself stays with the identity
// provider.
type Payload struct {
	// StandardClaims embeds the required JWT fields (Exp, Iat, Iss).
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the identity provider's stable subject for the user.
	UserID string `json:"user_id"`

	// Email is the address reported by the identity provider at sign-in.
	Email string `json:"email,omitempty"`
}
