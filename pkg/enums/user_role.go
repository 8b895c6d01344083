package enums

import "fmt"

// UserRole maps to the user_role enum in Postgres. Roles are strictly
// ordered: each one inherits everything the roles below it can do.
type UserRole string

const (
	UserRoleEmployee   UserRole = "employee"
	UserRoleTechnician UserRole = "technician"
	UserRoleManager    UserRole = "manager"
	UserRoleAdmin      UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleEmployee,
	UserRoleTechnician,
	UserRoleManager,
	UserRoleAdmin,
}

var userRoleRank = map[UserRole]int{
	UserRoleEmployee:   0,
	UserRoleTechnician: 1,
	UserRoleManager:    2,
	UserRoleAdmin:      3,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical user_role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role grants the privileges of min.
func (r UserRole) AtLeast(min UserRole) bool {
	rank, ok := userRoleRank[r]
	if !ok {
		return false
	}
	minRank, ok := userRoleRank[min]
	if !ok {
		return false
	}
	return rank >= minRank
}

// ParseUserRole converts raw input into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
