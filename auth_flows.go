package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AuthResult is the outcome of a successful login. FirstLogin marks a
// social sign-up that still needs profile info; Dormant marks an account
// that must release dormancy before using its tokens.
type AuthResult struct {
	AccountID    int64
	AccessToken  string
	RefreshToken string
	FirstLogin   bool
	Dormant      bool
}

// SocialProfile is the verified identity handed over by an OAuth exchange.
// Any value arriving here is trusted.
type SocialProfile struct {
	Email string
	Name  string
}

// AuthFlows implements login, social login, and logout on top of the token
// service, the session store, and the accounts repository.
type AuthFlows struct {
	accounts   Accounts
	sessions   SessionStore
	tokens     TokenService
	hasher     PasswordHasher
	refreshTTL time.Duration
	logger     Logger
	now        func() time.Time
}

// AuthFlowsOption customizes AuthFlows construction.
type AuthFlowsOption func(*AuthFlows)

// WithAuthFlowsClock injects a custom clock (useful for tests).
func WithAuthFlowsClock(clock func() time.Time) AuthFlowsOption {
	return func(f *AuthFlows) {
		if clock != nil {
			f.now = clock
		}
	}
}

// WithAuthFlowsLogger overrides the default logger.
func WithAuthFlowsLogger(logger Logger) AuthFlowsOption {
	return func(f *AuthFlows) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithAuthFlowsRefreshTTL overrides the session entry TTL (default 24h,
// matching the refresh token expiry).
func WithAuthFlowsRefreshTTL(ttl time.Duration) AuthFlowsOption {
	return func(f *AuthFlows) {
		if ttl > 0 {
			f.refreshTTL = ttl
		}
	}
}

// NewAuthFlows wires the login flows over their collaborators.
func NewAuthFlows(accounts Accounts, sessions SessionStore, tokens TokenService, hasher PasswordHasher, opts ...AuthFlowsOption) *AuthFlows {
	f := &AuthFlows{
		accounts:   accounts,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		refreshTTL: 24 * time.Hour,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Login authenticates an email/password pair and issues the token pair.
// Unknown emails and wrong passwords collapse into one credential error.
//
// A dormant account gets its tokens back with the dormant marker set but no
// session entry and no login-date update: the client is sent to the
// dormancy release step before anything about the account changes.
func (f *AuthFlows) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := f.accounts.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := f.hasher.Compare(password, account.PasswordHash); err != nil {
		if goerrors.Is(err, ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	result, err := f.issuePair(account)
	if err != nil {
		return nil, err
	}

	if account.Dormant {
		result.Dormant = true
		return result, nil
	}

	if err := f.sessions.Put(ctx, account.ID, result.RefreshToken, f.refreshTTL); err != nil {
		return nil, err
	}

	if err := f.accounts.TrackLogin(ctx, account.ID, f.now()); err != nil {
		return nil, err
	}

	f.logger.Info("login succeeded", "account_id", account.ID)
	return result, nil
}

// SocialLogin signs the verified profile in, creating the account on first
// contact. New accounts get the placeholder name and a throwaway password
// hash; the gate sends them to the profile completion step until the name
// is filled in.
func (f *AuthFlows) SocialLogin(ctx context.Context, profile SocialProfile, origin string) (*AuthResult, error) {
	hash, err := f.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	now := f.now()
	account, created, err := f.accounts.GetOrCreate(ctx, &Account{
		Email:        profile.Email,
		Name:         PlaceholderName,
		PasswordHash: hash,
		Origin:       origin,
		LoggedInAt:   &now,
	})
	if err != nil {
		return nil, err
	}

	result, err := f.issuePair(account)
	if err != nil {
		return nil, err
	}

	if err := f.sessions.Put(ctx, account.ID, result.RefreshToken, f.refreshTTL); err != nil {
		return nil, err
	}

	if created {
		f.logger.Info("social sign-up created account", "account_id", account.ID, "origin", origin)
		result.FirstLogin = true
		return result, nil
	}

	if err := f.accounts.TrackLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}

	if account.Dormant {
		result.Dormant = true
	}

	f.logger.Info("social login succeeded", "account_id", account.ID, "origin", origin)
	return result, nil
}

// Logout revokes the account's refresh token by deleting its session entry.
// Already-expired entries make logout a no-op, not an error.
func (f *AuthFlows) Logout(ctx context.Context, accountID int64) error {
	return f.sessions.Delete(ctx, accountID)
}

func (f *AuthFlows) issuePair(account *Account) (*AuthResult, error) {
	access, err := f.tokens.IssueAccess(account)
	if err != nil {
		return nil, err
	}

	refresh, err := f.tokens.IssueRefresh(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccountID:    account.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
