package accounts

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AccountFilter narrows list and count queries. Email matches as a
// substring, the way the admin search box uses it.
type AccountFilter struct {
	Email string
}

// Accounts is the persistence contract the services and the gate consume.
// Active means non-deleted and non-dormant; deleted rows never surface.
type Accounts interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetOrCreate(ctx context.Context, record *Account) (*Account, bool, error)
	CountActive(ctx context.Context, filter AccountFilter) (int, error)
	ListActive(ctx context.Context, filter AccountFilter, offset, limit int) ([]*Account, error)
	Update(ctx context.Context, record *Account, columns ...string) error
	TrackLogin(ctx context.Context, id int64, at time.Time) error
	MarkDormantBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type bunAccounts struct {
	db     *bun.DB
	logger Logger
}

var _ Accounts = (*bunAccounts)(nil)

// AccountsOption customizes repository construction.
type AccountsOption func(*bunAccounts)

// WithAccountsLogger overrides the default logger.
func WithAccountsLogger(logger Logger) AccountsOption {
	return func(r *bunAccounts) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewAccountsRepository returns the bun-backed Accounts implementation.
func NewAccountsRepository(db *bun.DB, opts ...AccountsOption) Accounts {
	r := &bunAccounts{
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

func (r *bunAccounts) GetByID(ctx context.Context, id int64) (*Account, error) {
	account := new(Account)

	err := r.db.NewSelect().
		Model(account).
		Where("acct.id = ?", id).
		Where("acct.is_deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		r.logger.Error("accounts get by id failed", "id", id, "error", err)
		return nil, PersistenceUnavailable(err)
	}

	return account, nil
}

func (r *bunAccounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	account := new(Account)

	err := r.db.NewSelect().
		Model(account).
		Where("acct.email = ?", email).
		Where("acct.is_deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		r.logger.Error("accounts get by email failed", "error", err)
		return nil, PersistenceUnavailable(err)
	}

	return account, nil
}

// GetOrCreate looks the record up by email among non-deleted accounts and
// inserts it when absent. The boolean reports whether a row was created.
// A concurrent insert between the lookup and the write resolves to the
// winning row.
func (r *bunAccounts) GetOrCreate(ctx context.Context, record *Account) (*Account, bool, error) {
	existing, err := r.GetByEmail(ctx, record.Email)
	if err == nil {
		return existing, false, nil
	}
	if !goerrors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if winner, lookupErr := r.GetByEmail(ctx, record.Email); lookupErr == nil {
			return winner, false, nil
		}
		r.logger.Error("accounts insert failed", "error", err)
		return nil, false, PersistenceUnavailable(err)
	}

	return record, true, nil
}

func applyActiveFilter(q *bun.SelectQuery, filter AccountFilter) *bun.SelectQuery {
	q = q.
		Where("acct.is_deleted = ?", false).
		Where("acct.is_dormant = ?", false)

	if filter.Email != "" {
		q = q.Where("acct.email LIKE ?", "%"+filter.Email+"%")
	}

	return q
}

func (r *bunAccounts) CountActive(ctx context.Context, filter AccountFilter) (int, error) {
	count, err := applyActiveFilter(r.db.NewSelect().Model((*Account)(nil)), filter).Count(ctx)
	if err != nil {
		r.logger.Error("accounts count failed", "error", err)
		return 0, PersistenceUnavailable(err)
	}

	return count, nil
}

func (r *bunAccounts) ListActive(ctx context.Context, filter AccountFilter, offset, limit int) ([]*Account, error) {
	var rows []*Account

	err := applyActiveFilter(r.db.NewSelect().Model(&rows), filter).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		r.logger.Error("accounts list failed", "error", err)
		return nil, PersistenceUnavailable(err)
	}

	return rows, nil
}

// Update writes the named columns of the record by primary key.
func (r *bunAccounts) Update(ctx context.Context, record *Account, columns ...string) error {
	res, err := r.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		r.logger.Error("accounts update failed", "id", record.ID, "error", err)
		return PersistenceUnavailable(err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *bunAccounts) TrackLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*Account)(nil)).
		Set("loggedin_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.logger.Error("accounts track login failed", "id", id, "error", err)
		return PersistenceUnavailable(err)
	}

	return nil
}

// MarkDormantBefore flags every non-deleted, non-dormant account whose last
// login is older than the cutoff. One statement covers all qualifying rows;
// the sweep holds no lock against concurrent mutations.
func (r *bunAccounts) MarkDormantBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*Account)(nil)).
		Set("is_dormant = ?", true).
		Where("is_deleted = ?", false).
		Where("is_dormant = ?", false).
		Where("loggedin_at IS NOT NULL").
		Where("loggedin_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		r.logger.Error("accounts dormancy sweep failed", "error", err)
		return 0, PersistenceUnavailable(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("accounts dormancy sweep count failed", "error", err)
		return 0, PersistenceUnavailable(err)
	}

	return affected, nil
}
