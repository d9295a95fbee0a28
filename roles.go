package accounts

// Role is the closed set of account roles. The numeric values mirror the
// stored representation (0 normal, 1 stopped, 2 admin); they are storage
// codes, not a privilege ordering. Stopped is a block state: Blocked is the
// only way it participates in authorization decisions.
type Role int8

const (
	// RoleNormal is a regular account.
	RoleNormal Role = 0
	// RoleStopped marks an account blocked by an administrator.
	RoleStopped Role = 1
	// RoleAdmin is the superuser role; it also overrides ownership checks.
	RoleAdmin Role = 2
)

// rank orders the roles that actually grant privileges. Stopped has no rank
// on purpose: a blocked account never meets any requirement, whatever its
// stored numeric value suggests.
var roleRank = map[Role]int{
	RoleNormal: 0,
	RoleAdmin:  1,
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RoleStopped, RoleAdmin:
		return true
	default:
		return false
	}
}

// Blocked reports whether the role denies access outright.
func (r Role) Blocked() bool {
	return r == RoleStopped
}

// Admin reports whether the role carries the superuser override.
func (r Role) Admin() bool {
	return r == RoleAdmin
}

// Meets reports whether r satisfies the required role. A blocked role never
// meets anything, and unknown roles never grant access.
func (r Role) Meets(required Role) bool {
	if r.Blocked() {
		return false
	}

	have, ok := roleRank[r]
	if !ok {
		return false
	}

	want, ok := roleRank[required]
	if !ok {
		return false
	}

	return have >= want
}

func (r Role) String() string {
	switch r {
	case RoleNormal:
		return "normal"
	case RoleStopped:
		return "stopped"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}
