package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a high-level error category used to map failures to HTTP status codes.
type Kind string

const (
	KindValidation  Kind = "validation"   // 400
	KindAuth        Kind = "auth"         // 401
	KindForbidden   Kind = "forbidden"    // 403
	KindNotFound    Kind = "not_found"    // 404
	KindConflict    Kind = "conflict"     // 409
	KindState       Kind = "state"        // 400/409 depending on code
	KindRateLimited Kind = "rate_limited" // 429
	KindUpstream    Kind = "upstream"     // 502/503
	KindInternal    Kind = "internal"     // 500
)

// Error is a structured application error.
// Code is a stable machine-readable identifier; Message is safe to return to
// clients; Cause carries the wrapped internal error for logging only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with no underlying cause.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap creates an error around an internal cause.
func Wrap(kind Kind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// KindOf extracts the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Stable error codes. Handlers and tests match on these, never on message text.
const (
	CodeUsernameTaken    = "username_taken"
	CodeEmailTaken       = "email_taken"
	CodeUserNotFound     = "user_not_found"
	CodeMessageNotFound  = "message_not_found"
	CodeCodeMismatch     = "code_mismatch"
	CodeCodeExpired      = "code_expired"
	CodeAlreadyVerified  = "already_verified"
	CodeNotVerified      = "not_verified"
	CodeNotAccepting     = "not_accepting_messages"
	CodeInvalidContent   = "invalid_content"
	CodeResendCooldown   = "resend_cooldown"
	CodeInvalidLogin     = "invalid_credentials"
	CodeProviderTimeout  = "provider_timeout"
	CodeProviderFailed   = "provider_unavailable"
	CodeStoreUnavailable = "store_unavailable"
)

// Registration / verification.

func ErrUsernameTaken(username string) *Error {
	return New(KindConflict, CodeUsernameTaken, fmt.Sprintf("username '%s' is already taken", username))
}

func ErrEmailTaken(email string) *Error {
	return New(KindConflict, CodeEmailTaken, fmt.Sprintf("email '%s' is already registered", email))
}

func ErrUserNotFound() *Error {
	return New(KindNotFound, CodeUserNotFound, "user not found")
}

func ErrCodeMismatch() *Error {
	return New(KindState, CodeCodeMismatch, "incorrect verification code")
}

func ErrCodeExpired() *Error {
	return New(KindState, CodeCodeExpired, "verification code has expired, please request a new one")
}

func ErrAlreadyVerified() *Error {
	return New(KindConflict, CodeAlreadyVerified, "account is already verified")
}

func ErrNotVerified() *Error {
	return New(KindForbidden, CodeNotVerified, "account is not verified yet")
}

func ErrResendCooldown() *Error {
	return New(KindRateLimited, CodeResendCooldown, "a code was sent recently, please wait before requesting another")
}

// Messaging.

func ErrNotAccepting() *Error {
	return New(KindForbidden, CodeNotAccepting, "user is not accepting messages")
}

func ErrInvalidContent(reason string) *Error {
	return New(KindValidation, CodeInvalidContent, reason)
}

func ErrMessageNotFound() *Error {
	return New(KindNotFound, CodeMessageNotFound, "message not found or already deleted")
}

// Authentication. Deliberately vague to avoid account enumeration.

func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidLogin, "invalid credentials")
}

// Upstream collaborators.

func ErrProviderTimeout(cause error) *Error {
	return Wrap(KindUpstream, CodeProviderTimeout, "suggestion provider timed out", cause)
}

func ErrProviderUnavailable(cause error) *Error {
	return Wrap(KindUpstream, CodeProviderFailed, "suggestion provider unavailable", cause)
}

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindUpstream, CodeStoreUnavailable, "storage unavailable", cause)
}
