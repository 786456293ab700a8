// internal/models/roles.go

package models

// Role is the role carried in a session. The set is closed.
type Role string

const (
	RoleBeheerder    Role = "beheerder"
	RoleDeveloper    Role = "developer"
	RoleVrijwilliger Role = "vrijwilliger"
	RoleStagiair     Role = "stagiair"
	RoleUser         Role = "user"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleBeheerder, RoleDeveloper, RoleVrijwilliger, RoleStagiair, RoleUser:
		return true
	}
	return false
}

// IsAdmin is true for roles that may manage back-office content
// (projects, volunteers, notices, newsletter).
func (r Role) IsAdmin() bool {
	return r == RoleBeheerder || r == RoleDeveloper
}

// CanCreateEvents is reserved for beheerders only.
func (r Role) CanCreateEvents() bool {
	return r == RoleBeheerder
}

// CanManageEvents covers editing and deleting existing events.
func (r Role) CanManageEvents() bool {
	return r.IsAdmin()
}

// CanManageContent covers projects, notices, newsletter and volunteers.
func (r Role) CanManageContent() bool {
	return r.IsAdmin()
}

// IsStaff is true for everyone who can open the dashboard.
func (r Role) IsStaff() bool {
	switch r {
	case RoleBeheerder, RoleDeveloper, RoleVrijwilliger, RoleStagiair:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{
		RoleBeheerder,
		RoleDeveloper,
		RoleVrijwilliger,
		RoleStagiair,
		RoleUser,
	}
}

// RoleFromString converts s to a Role.
func RoleFromString(s string) (Role, bool) {
	r := Role(s)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
