package enums

import (
	"fmt"
	"strings"
)

// UserRole is the platform role carried on every authenticated actor.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleClientAdmin UserRole = "client_admin"
	UserRoleClientUser  UserRole = "client_user"
	UserRoleChildUser   UserRole = "child_user"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleClientAdmin,
	UserRoleClientUser,
	UserRoleChildUser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
