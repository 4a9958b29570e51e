package errs

import "net/http"

// errorMap holds the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General request handling errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large."},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Profile and upload errors
	ErrProfileNameTooShort: {Code: ErrProfileNameTooShort, Message: "Please enter your name."},
	ErrProfileNotFound:     {Code: ErrProfileNotFound, Message: "Profile not found."},
	ErrAvatarTooLarge:      {Code: ErrAvatarTooLarge, Message: "Profile picture is too large."},
	ErrAvatarTypeInvalid:   {Code: ErrAvatarTypeInvalid, Message: "Unsupported image type."},
	ErrAvatarStorageFailed: {Code: ErrAvatarStorageFailed, Message: "Image upload failed. Please try again."},

	// 3xxx: Session and sign-in errors
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrSignInStateInvalid:   {Code: ErrSignInStateInvalid, Message: "Sign-in could not be verified. Please try again.", Status: http.StatusBadRequest},
	ErrSignInExchangeFailed: {Code: ErrSignInExchangeFailed, Message: "Sign-in failed. Please try again.", Status: http.StatusBadGateway},
	ErrUnknownScreen:        {Code: ErrUnknownScreen, Message: "Page not found.", Status: http.StatusNotFound},

	// 5xxx: Internal errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
