package accounts

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// AuthScheme is the bearer prefix expected on the authorization header.
const AuthScheme = "Bearer"

// Policy parametrizes the gate per protected operation.
type Policy struct {
	// RequiredRole is the minimum role for access-shaped tokens.
	RequiredRole Role
	// SelfOnly restricts the operation to the caller's own account, with an
	// admin override. The request must declare a target identity.
	SelfOnly bool
}

// OutcomeKind discriminates the gate's decision.
type OutcomeKind int

const (
	// OutcomeDeny rejects the request; Err carries the structured failure.
	OutcomeDeny OutcomeKind = iota
	// OutcomeAllow lets the protected operation run; Claims is populated.
	OutcomeAllow
	// OutcomeIssueAccess terminates the request with a freshly minted access
	// token (refresh exchange); AccessToken is populated.
	OutcomeIssueAccess
	// OutcomeRedirect instructs the client to complete a prerequisite step
	// first; Redirect names the reason.
	OutcomeRedirect
)

// RedirectReason is the client-visible instruction carried by a redirect
// outcome. These are 302-class body codes, not protocol redirects.
type RedirectReason string

const (
	// RedirectIncompleteProfile: the account still carries the sign-up
	// placeholder name.
	RedirectIncompleteProfile RedirectReason = "incomplete_profile"
	// RedirectDormantAccount: the account must release dormancy first.
	RedirectDormantAccount RedirectReason = "dormant_account"
)

// Outcome is the gate's structured decision.
type Outcome struct {
	Kind        OutcomeKind
	Claims      *Claims
	AccessToken string
	Redirect    RedirectReason
	Err         error
}

func deny(err error) Outcome {
	return Outcome{Kind: OutcomeDeny, Err: err}
}

// Gate is the request-time authorization decision procedure. All of its
// collaborators are injected; token verification is pure computation while
// session and account lookups are the only blocking calls.
type Gate struct {
	tokens   TokenService
	sessions SessionStore
	accounts Accounts
	logger   Logger
}

// GateOption customizes gate construction.
type GateOption func(*Gate)

// WithGateLogger overrides the default logger.
func WithGateLogger(logger Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate wires the decision procedure over its collaborators.
func NewGate(tokens TokenService, sessions SessionStore, accounts Accounts, opts ...GateOption) *Gate {
	g := &Gate{
		tokens:   tokens,
		sessions: sessions,
		accounts: accounts,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// ParseBearer extracts the token from an authorization header value,
// stripping the scheme tag and surrounding whitespace.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	if len(header) < len(AuthScheme) || !strings.EqualFold(header[:len(AuthScheme)], AuthScheme) {
		return "", ErrInvalidToken
	}

	rest := header[len(AuthScheme):]
	if rest == "" {
		return "", ErrMissingToken
	}
	// The scheme tag must be its own word.
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", ErrInvalidToken
	}

	token := strings.TrimSpace(rest)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// Authorize runs the decision procedure for one request. target is the
// identity the request declares it acts on (0 when it declares none); it is
// only consulted when the policy is self-only.
//
// Access-shaped tokens are judged on their embedded claims alone: a role or
// dormancy change made after issuance is not visible until the token is
// refreshed. That staleness is bounded by the access TTL and intentional.
func (g *Gate) Authorize(ctx context.Context, authHeader string, policy Policy, target int64) Outcome {
	raw, err := ParseBearer(authHeader)
	if err != nil {
		return deny(err)
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return deny(err)
	}

	if claims.Kind == TokenRefresh {
		return g.exchangeRefresh(ctx, raw, claims)
	}

	return g.checkAccess(claims, policy, target)
}

// exchangeRefresh validates the presented refresh token against the session
// store and, on success, terminates the request with a new access token.
// The get-then-compare sequence is not atomic; a concurrent logout or login
// in that window can only hand out a token that is about to be invalidated.
func (g *Gate) exchangeRefresh(ctx context.Context, raw string, claims *Claims) Outcome {
	stored, err := g.sessions.Get(ctx, claims.AccountID)
	if err != nil {
		if goerrors.Is(err, ErrSessionNotFound) {
			return deny(ErrExpiredRefresh)
		}
		return deny(err)
	}

	if stored != raw {
		return deny(ErrTokenMismatch)
	}

	account, err := g.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return deny(err)
	}

	access, err := g.tokens.IssueAccess(account)
	if err != nil {
		return deny(err)
	}

	g.logger.Debug("issued new access token", "account_id", account.ID)
	return Outcome{Kind: OutcomeIssueAccess, AccessToken: access, Claims: claims}
}

func (g *Gate) checkAccess(claims *Claims, policy Policy, target int64) Outcome {
	if claims.Name == PlaceholderName {
		return Outcome{Kind: OutcomeRedirect, Redirect: RedirectIncompleteProfile, Claims: claims}
	}

	if claims.Dormant {
		return Outcome{Kind: OutcomeRedirect, Redirect: RedirectDormantAccount, Claims: claims}
	}

	if !claims.Role.Meets(policy.RequiredRole) {
		return deny(ErrForbidden)
	}

	if policy.SelfOnly {
		if target == 0 {
			return deny(ErrForbidden)
		}
		if target != claims.AccountID && !claims.Role.Admin() {
			return deny(ErrForbidden)
		}
	}

	return Outcome{Kind: OutcomeAllow, Claims: claims}
}
