package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeapp/internal/pkg/errs"
)

func TestAvatarExt(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"me.png", "png"},
		{"photo.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", "jpg"},
		{"", "jpg"},
		{"trailingdot.", "jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AvatarExt(tt.fileName), "fileName=%q", tt.fileName)
	}
}

func TestAvatarContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", AvatarContentType("jpg"))
	assert.Equal(t, "image/png", AvatarContentType("png"))
	assert.Equal(t, "image/webp", AvatarContentType("webp"))
	assert.Equal(t, "application/octet-stream", AvatarContentType("exe"))
}

func TestValidateAvatar(t *testing.T) {
	assert.Nil(t, ValidateAvatar("me.png", 1024))
	assert.Nil(t, ValidateAvatar("me.gif", MaxAvatarSize))

	customErr := ValidateAvatar("me.png", 0)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrInvalidParams, customErr.Code)

	customErr = ValidateAvatar("me.png", MaxAvatarSize+1)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrAvatarTooLarge, customErr.Code)

	customErr = ValidateAvatar("malware.exe", 1024)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrAvatarTypeInvalid, customErr.Code)
}

func TestCheckCompletion(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	assert.Equal(t, CompletionAbsent, CheckCompletion(ctx, store, "user-1"))

	store.records["user-1"] = &Record{UserID: "user-1", FullName: "Ada"}
	assert.Equal(t, CompletionPresent, CheckCompletion(ctx, store, "user-1"))

	store.getErr = errors.New("connection reset")
	assert.Equal(t, CompletionUnknown, CheckCompletion(ctx, store, "user-1"))
}

func TestCompletionStateString(t *testing.T) {
	assert.Equal(t, "unknown", CompletionUnknown.String())
	assert.Equal(t, "absent", CompletionAbsent.String())
	assert.Equal(t, "present", CompletionPresent.String())
}
