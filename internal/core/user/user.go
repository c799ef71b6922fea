package user

import "strings"

// Role is the closed set of roles a user can hold.
type Role int

const (
	RoleUnknown Role = iota
	RoleStaff
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleStaff:   "staff",
	RoleManager: "manager",
	RoleAdmin:   "admin",
}

// ParseRole maps a stored role name onto a Role. Matching ignores case and
// surrounding whitespace; anything else is RoleUnknown.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "staff":
		return RoleStaff
	case "manager":
		return RoleManager
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) IsManager() bool {
	return r == RoleManager
}

// CanReview reports whether the role may approve or reject leave requests.
func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}
