package accounts

import (
	"context"
	"time"
)

// Status is the derived lifecycle state of an account.
type Status string

const (
	// StatusNormal accounts log in and use the service.
	StatusNormal Status = "normal"
	// StatusStopped accounts are blocked by an administrator.
	StatusStopped Status = "stopped"
	// StatusDormant accounts sat unused for six months and must be released.
	StatusDormant Status = "dormant"
	// StatusDeleted is terminal; the row is retained but never surfaces.
	StatusDeleted Status = "deleted"
)

// StateMachine owns the account lifecycle transitions and persists them
// through the Accounts repository.
type StateMachine struct {
	accounts Accounts
	logger   Logger
	now      func() time.Time
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*StateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *StateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineLogger overrides the default logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *StateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// NewStateMachine wires the lifecycle rules over the given repository.
func NewStateMachine(accounts Accounts, opts ...StateMachineOption) *StateMachine {
	sm := &StateMachine{
		accounts: accounts,
		logger:   defLogger{},
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// Stop moves a normal account into the stopped state. Admin accounts are
// never stopped; the transition is rejected before anything is written.
func (sm *StateMachine) Stop(ctx context.Context, id int64) (*Account, error) {
	account, err := sm.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.Role.Admin() {
		return nil, ErrInvalidTransition
	}
	if account.Role.Blocked() {
		return account, nil
	}

	account.Role = RoleStopped
	if err := sm.accounts.Update(ctx, account, "role"); err != nil {
		return nil, err
	}

	sm.logger.Info("account stopped", "id", id)
	return account, nil
}

// Unstop returns a stopped account to normal.
func (sm *StateMachine) Unstop(ctx context.Context, id int64) (*Account, error) {
	account, err := sm.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.Role.Blocked() {
		return account, nil
	}

	account.Role = RoleNormal
	if err := sm.accounts.Update(ctx, account, "role"); err != nil {
		return nil, err
	}

	sm.logger.Info("account unstopped", "id", id)
	return account, nil
}

// Release clears the dormancy flag. The role is untouched; a stopped
// account that releases dormancy is still stopped.
func (sm *StateMachine) Release(ctx context.Context, id int64) (*Account, error) {
	account, err := sm.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.Dormant {
		return account, nil
	}

	account.Dormant = false
	if err := sm.accounts.Update(ctx, account, "is_dormant"); err != nil {
		return nil, err
	}

	sm.logger.Info("account dormancy released", "id", id)
	return account, nil
}

// Exit soft-deletes the account: the stop timestamp is set and the deleted
// flag raised, but the row is retained. Deleted is terminal.
func (sm *StateMachine) Exit(ctx context.Context, id int64) (*Account, error) {
	account, err := sm.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.Deleted {
		return nil, ErrTerminalState
	}

	now := sm.now()
	account.Deleted = true
	account.StoppedAt = &now
	if err := sm.accounts.Update(ctx, account, "is_deleted", "stopped_at"); err != nil {
		return nil, err
	}

	sm.logger.Info("account exited", "id", id)
	return account, nil
}
