package accounts

import (
	"time"

	"github.com/uptrace/bun"
)

// OriginLocal tags accounts created through the sign-up form; social logins
// carry their provider name instead ("google", ...).
const OriginLocal = "local"

// PlaceholderName is assigned to social sign-ups until the user fills in
// their profile. The gate turns it into a "needs additional info" redirect.
const PlaceholderName = "기본이름"

// Account is the persisted user record. Email is unique among non-deleted
// accounts; deleted rows are retained (soft delete) and excluded from every
// active-account query.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acct"`

	ID           int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email        string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	Name         string     `bun:"name,notnull" json:"name,omitempty"`
	Origin       string     `bun:"origin,notnull" json:"origin,omitempty"`
	Role         Role       `bun:"role,notnull,default:0" json:"role"`
	Dormant      bool       `bun:"is_dormant,notnull,default:false" json:"is_dormant,omitempty"`
	Deleted      bool       `bun:"is_deleted,notnull,default:false" json:"is_deleted,omitempty"`
	LoggedInAt   *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	StoppedAt    *time.Time `bun:"stopped_at,nullzero" json:"stopped_at,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// Status derives the lifecycle state from the stored fields. Deleted wins
// over everything, then stopped, then dormant.
func (a *Account) Status() Status {
	switch {
	case a == nil:
		return StatusDeleted
	case a.Deleted:
		return StatusDeleted
	case a.Role.Blocked():
		return StatusStopped
	case a.Dormant:
		return StatusDormant
	default:
		return StatusNormal
	}
}

// NeedsProfile reports whether the account still carries the sign-up
// placeholder name.
func (a *Account) NeedsProfile() bool {
	return a != nil && a.Name == PlaceholderName
}
