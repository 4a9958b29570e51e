/*
Package randx generates the random identifiers the application needs:
UUID suffixes for uploaded objects and Base62 state tokens for the
external sign-in handshake.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 tokens (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// SignInStateLength is the length of the OAuth state token.
	SignInStateLength = 24
)

// UploadSuffix returns a fresh UUID v4 string. Object keys built with it
// are unique per upload, so one user's files never collide with another's
// and retries never reuse a key.
func UploadSuffix() string {
	return uuid.New().String()
}

// SignInState generates a Base62 token used to bind an external sign-in
// redirect to the browser that initiated it.
func SignInState() (string, error) {
	result := make([]byte, SignInStateLength)

	for i := range SignInStateLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for sign-in state: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidSignInState reports whether the given string could have been
// produced by SignInState.
func IsValidSignInState(state string) bool {
	if len(state) != SignInStateLength {
		return false
	}

	for _, char := range state {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
