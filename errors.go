package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Rich errors for every failure the gate and the flows can surface. The
// HTTP layer maps them to the response envelope; nothing propagates past
// that boundary as an unhandled fault.
var (
	// ErrMissingToken: no bearer credential on the request.
	ErrMissingToken = goerrors.New("please login", goerrors.CategoryAuth).
			WithTextCode("MISSING_TOKEN").
			WithCode(goerrors.CodeForbidden)

	// ErrInvalidToken: malformed input or signature mismatch.
	ErrInvalidToken = goerrors.New("invalid token", goerrors.CategoryAuth).
			WithTextCode("INVALID_TOKEN").
			WithCode(goerrors.CodeForbidden)

	// ErrExpiredToken: the token's expiry lies in the past.
	ErrExpiredToken = goerrors.New("expired token", goerrors.CategoryAuth).
			WithTextCode("EXPIRED_TOKEN").
			WithCode(goerrors.CodeUnauthorized)

	// ErrExpiredRefresh: no session entry backs the presented refresh token.
	ErrExpiredRefresh = goerrors.New("expired token, please login again", goerrors.CategoryAuth).
				WithTextCode("EXPIRED_REFRESH").
				WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMismatch: the presented refresh token was superseded or revoked.
	ErrTokenMismatch = goerrors.New("refresh token superseded", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MISMATCH").
				WithCode(goerrors.CodeUnauthorized)

	// ErrForbidden: insufficient role, blocked role, or ownership violation.
	ErrForbidden = goerrors.New("no permission", goerrors.CategoryAuthz).
			WithTextCode("FORBIDDEN").
			WithCode(goerrors.CodeForbidden)

	// ErrInvalidCredentials: unknown email or wrong password on login.
	ErrInvalidCredentials = goerrors.New("wrong email or password", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(goerrors.CodeForbidden)

	// ErrAccountNotFound: the referenced account does not exist or is deleted.
	ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
				WithTextCode("ACCOUNT_NOT_FOUND").
				WithCode(goerrors.CodeNotFound)

	// ErrDuplicateAccount: sign-up email collides with a live account.
	ErrDuplicateAccount = goerrors.New("account already exists", goerrors.CategoryConflict).
				WithTextCode("DUPLICATE_ACCOUNT").
				WithCode(goerrors.CodeConflict)

	// ErrInvalidTransition: the requested lifecycle change is not allowed.
	ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
				WithTextCode("INVALID_STATE_TRANSITION").
				WithCode(goerrors.CodeBadRequest)

	// ErrTerminalState: deleted accounts never transition again.
	ErrTerminalState = goerrors.New("account state is terminal", goerrors.CategoryConflict).
				WithTextCode("TERMINAL_STATE").
				WithCode(goerrors.CodeConflict)
)

const (
	textCodeStoreUnavailable       = "STORE_UNAVAILABLE"
	textCodePersistenceUnavailable = "PERSISTENCE_UNAVAILABLE"
)

// StoreUnavailable wraps a session-store failure. The cause travels along for
// logs; the caller-visible outcome is always a denial.
func StoreUnavailable(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "session store unavailable").
		WithTextCode(textCodeStoreUnavailable).
		WithCode(goerrors.CodeInternal)
}

// PersistenceUnavailable wraps a database failure.
func PersistenceUnavailable(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "persistence unavailable").
		WithTextCode(textCodePersistenceUnavailable).
		WithCode(goerrors.CodeInternal)
}

// IsStoreUnavailable reports whether err is a wrapped session-store failure.
func IsStoreUnavailable(err error) bool {
	return HasTextCode(err, textCodeStoreUnavailable)
}

// IsPersistenceUnavailable reports whether err is a wrapped database failure.
func IsPersistenceUnavailable(err error) bool {
	return HasTextCode(err, textCodePersistenceUnavailable)
}

// HasTextCode matches err against a taxonomy text code, surviving Wrap and
// Clone where pointer identity would not.
func HasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
