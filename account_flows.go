package accounts

import (
	"context"
)

// ListPageSize is the page size for the admin account listing.
const ListPageSize = 20

// SignUpInput is a validated sign-up form. Validation happens at the HTTP
// boundary; the flow assumes well-formed input.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateInput carries a profile update. Empty fields stay untouched.
type UpdateInput struct {
	ID       int64
	Name     string
	Password string
}

// ListResult carries one page of active accounts plus the total match count
// so callers can do their own paging arithmetic.
type ListResult struct {
	Total    int
	Page     int
	Accounts []*Account
}

// AccountFlows implements sign-up, profile maintenance, moderation, and the
// admin listing.
type AccountFlows struct {
	accounts Accounts
	states   *StateMachine
	hasher   PasswordHasher
	logger   Logger
}

// AccountFlowsOption customizes AccountFlows construction.
type AccountFlowsOption func(*AccountFlows)

// WithAccountFlowsLogger overrides the default logger.
func WithAccountFlowsLogger(logger Logger) AccountFlowsOption {
	return func(f *AccountFlows) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewAccountFlows wires the account operations over their collaborators.
func NewAccountFlows(accounts Accounts, states *StateMachine, hasher PasswordHasher, opts ...AccountFlowsOption) *AccountFlows {
	f := &AccountFlows{
		accounts: accounts,
		states:   states,
		hasher:   hasher,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// SignUp registers a local account. An existing non-deleted account with
// the same email yields ErrDuplicateAccount.
func (f *AccountFlows) SignUp(ctx context.Context, input SignUpInput) (*Account, error) {
	hash, err := f.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account, created, err := f.accounts.GetOrCreate(ctx, &Account{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Origin:       OriginLocal,
	})
	if err != nil {
		return nil, err
	}

	if !created {
		return nil, ErrDuplicateAccount
	}

	f.logger.Info("account created", "account_id", account.ID)
	return account, nil
}

// Update rewrites the name and/or password of an account. The gate has
// already established that the caller owns the account or is an admin.
func (f *AccountFlows) Update(ctx context.Context, input UpdateInput) error {
	account := &Account{ID: input.ID}
	columns := make([]string, 0, 2)

	if input.Name != "" {
		account.Name = input.Name
		columns = append(columns, "name")
	}

	if input.Password != "" {
		hash, err := f.hasher.Hash(input.Password)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
		columns = append(columns, "password_hash")
	}

	if len(columns) == 0 {
		return nil
	}

	return f.accounts.Update(ctx, account, columns...)
}

// List returns one page of active accounts, newest first, optionally
// narrowed by an email substring. Pages are 1-based; a page past the end
// snaps back to the first.
func (f *AccountFlows) List(ctx context.Context, emailFilter string, page int) (*ListResult, error) {
	filter := AccountFilter{Email: emailFilter}

	total, err := f.accounts.CountActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	totalPages := (total + ListPageSize - 1) / ListPageSize
	if totalPages > 0 && page > totalPages {
		page = 1
	}

	rows, err := f.accounts.ListActive(ctx, filter, (page-1)*ListPageSize, ListPageSize)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Total:    total,
		Page:     page,
		Accounts: rows,
	}, nil
}

// Exit soft-deletes the account.
func (f *AccountFlows) Exit(ctx context.Context, id int64) error {
	_, err := f.states.Exit(ctx, id)
	return err
}

// Stop blocks the account; stopping an admin is rejected.
func (f *AccountFlows) Stop(ctx context.Context, id int64) error {
	_, err := f.states.Stop(ctx, id)
	return err
}

// Unstop lifts the block.
func (f *AccountFlows) Unstop(ctx context.Context, id int64) error {
	_, err := f.states.Unstop(ctx, id)
	return err
}

// ReleaseDormancy clears the dormancy flag for the account.
func (f *AccountFlows) ReleaseDormancy(ctx context.Context, id int64) error {
	_, err := f.states.Release(ctx, id)
	return err
}
