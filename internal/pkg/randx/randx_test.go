package randx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSuffixIsValidUUIDAndUnique(t *testing.T) {
	seen := map[string]struct{}{}

	for i := 0; i < 100; i++ {
		suffix := UploadSuffix()

		_, err := uuid.Parse(suffix)
		require.NoError(t, err)

		_, dup := seen[suffix]
		require.False(t, dup, "upload suffix repeated: %s", suffix)
		seen[suffix] = struct{}{}
	}
}

func TestSignInStateShape(t *testing.T) {
	state, err := SignInState()
	require.NoError(t, err)

	assert.Len(t, state, SignInStateLength)
	assert.True(t, IsValidSignInState(state))
}

func TestIsValidSignInState(t *testing.T) {
	assert.False(t, IsValidSignInState(""))
	assert.False(t, IsValidSignInState("short"))
	assert.False(t, IsValidSignInState("has spaces and is 24 chr"))
	assert.False(t, IsValidSignInState("abcdefgh-jklmnopqrstuvwx"))
	assert.True(t, IsValidSignInState("aB3dEfGh1jKlMnOpQrStUvWx"))
}
