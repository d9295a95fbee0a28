package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenKind is the explicit discriminant embedded in every token. The wire
// format used to be inferred from the claim count; the tag makes the shape
// unambiguous.
type TokenKind string

const (
	// TokenAccess tokens carry the full identity snapshot, TTL 1h.
	TokenAccess TokenKind = "access"
	// TokenRefresh tokens carry only the account id, TTL 24h.
	TokenRefresh TokenKind = "refresh"
)

// Claims is the payload of both token kinds. Access tokens fill every field;
// refresh tokens set only Kind and AccountID.
type Claims struct {
	jwt.RegisteredClaims

	Kind      TokenKind `json:"knd"`
	AccountID int64     `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	Dormant   bool      `json:"dormant,omitempty"`
}

// HMACTokenService implements TokenService with a symmetric HS256 secret.
type HMACTokenService struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

var _ TokenService = (*HMACTokenService)(nil)

// TokenOption customizes HMACTokenService construction.
type TokenOption func(*HMACTokenService)

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(ts *HMACTokenService) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the default logger.
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *HMACTokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// WithTokenTTLs overrides the access and refresh expirations.
func WithTokenTTLs(access, refresh time.Duration) TokenOption {
	return func(ts *HMACTokenService) {
		if access > 0 {
			ts.accessTTL = access
		}
		if refresh > 0 {
			ts.refreshTTL = refresh
		}
	}
}

// NewTokenService creates an HMAC token service with the default expirations
// (access 1h, refresh 24h).
func NewTokenService(signingKey []byte, issuer string, opts ...TokenOption) *HMACTokenService {
	ts := &HMACTokenService{
		signingKey: signingKey,
		accessTTL:  time.Hour,
		refreshTTL: 24 * time.Hour,
		issuer:     issuer,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssueAccess signs an access token from the account's current fields.
// Expiry is computed at call time; the token is never consulted server-side
// afterwards except through Verify.
func (ts *HMACTokenService) IssueAccess(account *Account) (string, error) {
	if account == nil {
		return "", goerrors.New("account is required", goerrors.CategoryBadInput)
	}

	claims := &Claims{
		Kind:      TokenAccess,
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		Dormant:   account.Dormant,
	}

	return ts.sign(claims, ts.accessTTL)
}

// IssueRefresh signs a refresh token carrying only the account id.
func (ts *HMACTokenService) IssueRefresh(accountID int64) (string, error) {
	claims := &Claims{
		Kind:      TokenRefresh,
		AccountID: accountID,
	}

	return ts.sign(claims, ts.refreshTTL)
}

func (ts *HMACTokenService) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := ts.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    ts.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Verify decodes the token, checks signature and expiry, and returns the
// tagged claims. Signature mismatch and malformed input surface as
// ErrInvalidToken; an expiry in the past surfaces as ErrExpiredToken.
func (ts *HMACTokenService) Verify(tokenString string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify rejected signing method", "alg", t.Header["alg"])
			return nil, ErrInvalidToken
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		ts.logger.Error("token verify could not decode claims")
		return nil, ErrInvalidToken
	}

	switch claims.Kind {
	case TokenAccess, TokenRefresh:
		return claims, nil
	default:
		return nil, ErrInvalidToken
	}
}
