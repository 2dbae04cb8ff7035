package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role is the ordered privilege level of a user. Higher values contain
// lower ones, so relational comparison expresses privilege containment.
type Role int

const (
	RoleCustomer Role = iota
	RoleAdmin
	RoleManager
	RoleSuperadmin
)

var roleNames = map[Role]string{
	RoleCustomer:   "customer",
	RoleAdmin:      "admin",
	RoleManager:    "manager",
	RoleSuperadmin: "superadmin",
}

// ParseRole converts a role name or its numeric form into a Role.
// Unknown or garbled input yields RoleCustomer: a role that cannot be
// identified must never be interpreted as elevated.
func ParseRole(input string) Role {
	return ParseRoleOr(input, RoleCustomer)
}

// ParseRoleOr is ParseRole with a caller-supplied fallback.
func ParseRoleOr(input string, fallback Role) Role {
	s := strings.ToLower(strings.TrimSpace(input))
	for r, name := range roleNames {
		if s == name {
			return r
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return RoleOr(Role(n), fallback)
	}
	return fallback.Normalize()
}

// RoleOr returns r if it is a known level, otherwise the fallback.
func RoleOr(r Role, fallback Role) Role {
	if r.IsValid() {
		return r
	}
	return fallback.Normalize()
}

// IsValid reports whether r is one of the defined levels.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// Normalize maps any out-of-range value to RoleCustomer.
func (r Role) Normalize() Role {
	if r.IsValid() {
		return r
	}
	return RoleCustomer
}

// String returns the canonical role name.
func (r Role) String() string {
	return roleNames[r.Normalize()]
}

// HasPermission reports whether r meets or exceeds the required minimum level.
func (r Role) HasPermission(min Role) bool {
	return r.Normalize() >= min.Normalize()
}

// HasAdminAccess is true for admin, manager and superadmin.
func (r Role) HasAdminAccess() bool {
	return r.Normalize() >= RoleAdmin
}

// HasSuperadminAccess is true only for superadmin.
func (r Role) HasSuperadminAccess() bool {
	return r.Normalize() == RoleSuperadmin
}

// MarshalJSON emits the canonical role name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts a role name, a numeric string or a bare number.
// Anything unrecognized decodes as RoleCustomer rather than failing.
func (r *Role) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		*r = ParseRole(val)
	case float64:
		*r = RoleOr(Role(int(val)), RoleCustomer)
	default:
		*r = RoleCustomer
	}
	return nil
}
