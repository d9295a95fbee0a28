package accounts

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface used across the package. Components
// receive it via constructor options so nothing reaches for ambient state.
// Trailing arguments are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// TokenService signs and verifies the compact tokens carried by clients.
type TokenService interface {
	IssueAccess(account *Account) (string, error)
	IssueRefresh(accountID int64) (string, error)
	Verify(token string) (*Claims, error)
}

// SessionStore tracks the single currently valid refresh token per account.
// Get returns ErrSessionNotFound when no entry exists; every other failure
// surfaces as a store-unavailable error so callers can fail closed.
type SessionStore interface {
	Put(ctx context.Context, accountID int64, token string, ttl time.Duration) error
	Get(ctx context.Context, accountID int64) (string, error)
	Delete(ctx context.Context, accountID int64) error
}

// PasswordHasher is the hashing capability consumed by sign-up and login.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) error
}

// defLogger is the fallback when no logger is injected. Trailing arguments
// are alternating key/value pairs.
type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println("[ERR] ACCOUNTS " + msg + formatPairs(args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println("[WRN] ACCOUNTS " + msg + formatPairs(args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println("[INF] ACCOUNTS " + msg + formatPairs(args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println("[DBG] ACCOUNTS " + msg + formatPairs(args))
}

func formatPairs(args []any) string {
	if len(args) == 0 {
		return ""
	}

	out := ""
	for i := 0; i+1 < len(args); i += 2 {
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		out += fmt.Sprintf(" %v", args[len(args)-1])
	}
	return out
}
