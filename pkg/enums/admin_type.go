package enums

import "fmt"

// AdminType separates the main admin from regular admins.
type AdminType string

const (
	AdminTypeMain    AdminType = "main"
	AdminTypeRegular AdminType = "regular"
)

// IsValid reports whether the value is a known AdminType.
func (a AdminType) IsValid() bool {
	return a == AdminTypeMain || a == AdminTypeRegular
}

// ParseAdminType converts raw input into an AdminType.
func ParseAdminType(value string) (AdminType, error) {
	candidate := AdminType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid admin type %q", value)
	}
	return candidate, nil
}
