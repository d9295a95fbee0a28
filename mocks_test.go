package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// memAccounts is an in-memory Accounts used by gate, state machine, and
// flow tests. Repository behavior against a real database is covered in
// repo_accounts_test.go.
type memAccounts struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*Account
	fail bool
}

func newMemAccounts(seed ...*Account) *memAccounts {
	m := &memAccounts{rows: make(map[int64]*Account)}
	for _, account := range seed {
		m.put(account)
	}
	return m
}

func (m *memAccounts) put(account *Account) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		m.seq++
		account.ID = m.seq
	} else if account.ID > m.seq {
		m.seq = account.ID
	}
	clone := *account
	m.rows[account.ID] = &clone
	return account
}

func (m *memAccounts) get(id int64) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		clone := *row
		return &clone
	}
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*Account, error) {
	if m.fail {
		return nil, PersistenceUnavailable(errors.New("down"))
	}
	row := m.get(id)
	if row == nil || row.Deleted {
		return nil, ErrAccountNotFound
	}
	return row, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*Account, error) {
	if m.fail {
		return nil, PersistenceUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email && !row.Deleted {
			clone := *row
			return &clone, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (m *memAccounts) GetOrCreate(ctx context.Context, record *Account) (*Account, bool, error) {
	if existing, err := m.GetByEmail(ctx, record.Email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}
	m.put(record)
	return record, true, nil
}

func (m *memAccounts) CountActive(_ context.Context, filter AccountFilter) (int, error) {
	rows, err := m.ListActive(nil, filter, 0, 1<<30)
	return len(rows), err
}

func (m *memAccounts) ListActive(_ context.Context, filter AccountFilter, offset, limit int) ([]*Account, error) {
	if m.fail {
		return nil, PersistenceUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Account
	for id := m.seq; id >= 1; id-- {
		row, ok := m.rows[id]
		if !ok || row.Deleted || row.Dormant {
			continue
		}
		if filter.Email != "" && !strings.Contains(row.Email, filter.Email) {
			continue
		}
		clone := *row
		out = append(out, &clone)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAccounts) Update(_ context.Context, record *Account, columns ...string) error {
	if m.fail {
		return PersistenceUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[record.ID]
	if !ok {
		return ErrAccountNotFound
	}
	for _, column := range columns {
		switch column {
		case "name":
			row.Name = record.Name
		case "password_hash":
			row.PasswordHash = record.PasswordHash
		case "role":
			row.Role = record.Role
		case "is_dormant":
			row.Dormant = record.Dormant
		case "is_deleted":
			row.Deleted = record.Deleted
		case "stopped_at":
			row.StoppedAt = record.StoppedAt
		}
	}
	return nil
}

func (m *memAccounts) TrackLogin(_ context.Context, id int64, at time.Time) error {
	if m.fail {
		return PersistenceUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		row.LoggedInAt = &at
	}
	return nil
}

func (m *memAccounts) MarkDormantBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if m.fail {
		return 0, PersistenceUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var flagged int64
	for _, row := range m.rows {
		if row.Deleted || row.Dormant || row.LoggedInAt == nil {
			continue
		}
		if row.LoggedInAt.Before(cutoff) {
			row.Dormant = true
			flagged++
		}
	}
	return flagged, nil
}

// memSessions is an in-memory SessionStore. Redis behavior is covered in
// session_store_test.go.
type memSessions struct {
	mu      sync.Mutex
	entries map[int64]string
	fail    bool
}

func newMemSessions() *memSessions {
	return &memSessions{entries: make(map[int64]string)}
}

func (m *memSessions) Put(_ context.Context, accountID int64, token string, _ time.Duration) error {
	if m.fail {
		return StoreUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[accountID] = token
	return nil
}

func (m *memSessions) Get(_ context.Context, accountID int64) (string, error) {
	if m.fail {
		return "", StoreUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.entries[accountID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (m *memSessions) Delete(_ context.Context, accountID int64) error {
	if m.fail {
		return StoreUnavailable(errors.New("down"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, accountID)
	return nil
}
