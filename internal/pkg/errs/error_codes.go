package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON body.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates the request body exceeded the limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates the per-IP request rate was exceeded.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Profile and upload errors
const (
	// ErrProfileNameTooShort indicates the submitted name is too short after trimming.
	ErrProfileNameTooShort = 2101

	// ErrProfileNotFound indicates no profile record exists for the user.
	ErrProfileNotFound = 2102

	// ErrAvatarTooLarge indicates the avatar file exceeded the size limit.
	ErrAvatarTooLarge = 2201

	// ErrAvatarTypeInvalid indicates the avatar file type is not allowed.
	ErrAvatarTypeInvalid = 2202

	// ErrAvatarStorageFailed indicates the object store refused the upload.
	ErrAvatarStorageFailed = 2203
)

// 3xxx: Session and sign-in errors
const (
	// ErrUnauthorized indicates the request carries no valid session.
	ErrUnauthorized = 3001

	// ErrSignInStateInvalid indicates the OAuth state parameter did not match.
	ErrSignInStateInvalid = 3002

	// ErrSignInExchangeFailed indicates the provider code exchange failed.
	ErrSignInExchangeFailed = 3003

	// ErrUnknownScreen indicates a mount request for a route that does not exist.
	ErrUnknownScreen = 3004
)

// 5xxx: Internal errors
const (
	// ErrUnknown is the catch-all internal error.
	ErrUnknown = 5000
)
