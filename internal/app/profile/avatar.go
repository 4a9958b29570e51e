package profile

import (
	"path/filepath"
	"strings"

	"takeapp/internal/pkg/errs"
)

const (
	// MaxAvatarSizeMB is the maximum avatar size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// DefaultAvatarExt is used when the chosen file has no extension.
	DefaultAvatarExt = "jpg"
)

// extToMIME maps accepted avatar extensions to their content types.
var extToMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// AvatarExt derives the lower-cased extension (without the dot) from a file
// name, falling back to DefaultAvatarExt.
func AvatarExt(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return DefaultAvatarExt
	}
	return ext
}

// AvatarContentType returns the content type to store for the extension.
func AvatarContentType(ext string) string {
	if mime, ok := extToMIME[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ValidateAvatar checks a chosen avatar file before it enters the form.
// Validation happens at selection time; it never gates submit eligibility,
// which depends on the name field alone.
func ValidateAvatar(fileName string, size int) *errs.CustomError {
	if size <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if size > MaxAvatarSize {
		return errs.NewError(errs.ErrAvatarTooLarge)
	}

	if _, ok := extToMIME[AvatarExt(fileName)]; !ok {
		return errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	return nil
}
