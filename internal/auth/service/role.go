package service

import (
	"strings"

	"jamsession/pkg/domain"
)

const staffDomain = "@data-jam.com"

// DeriveRole assigns admin to staff addresses and the literal "admin"
// account, case-insensitively. Everyone else is an installer.
func DeriveRole(identifier string) domain.Role {
	lower := strings.ToLower(identifier)
	if strings.HasSuffix(lower, staffDomain) || lower == "admin" {
		return domain.RoleAdmin
	}
	return domain.RoleInstaller
}
