package accounts

import (
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword rejects hashing an empty string.
var ErrEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMismatch is returned when the cleartext does not match the hash.
var ErrPasswordMismatch = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// BcryptHasher implements PasswordHasher over golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher builds a hasher; a non-positive cost falls back to the
// bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash generates a password digest.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	return string(digest), nil
}

// Compare validates the cleartext against the stored digest.
func (h *BcryptHasher) Compare(plain, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)); err != nil {
		if goerrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password")
	}
	return nil
}
