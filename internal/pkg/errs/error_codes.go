/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrConversationPeerInvalid indicates that the requested conversation peer id is malformed.
	ErrConversationPeerInvalid = 2101
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the supplied username fails format validation.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates that the supplied password fails length validation.
	ErrInvalidPassword = 3002

	// ErrUserAlreadyExists indicates that the username chosen at registration is taken.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials indicates a failed username/password check at login.
	ErrInvalidCredentials = 3004

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3005

	// ErrUnauthorized indicates that the request requires a valid identity token.
	ErrUnauthorized = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that persisting an uploaded attachment failed.
	ErrFileStorageFailed = 5001
)
