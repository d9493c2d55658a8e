package models

import "strings"

// Department tags users, posts and subscriptions.
type Department string

// Department values. The string form is the wire and storage representation.
const (
	DepartmentGeneral       Department = "General"
	DepartmentHR            Department = "HR"
	DepartmentDevelopment   Department = "Development"
	DepartmentUIUX          Department = "UI/UX"
	DepartmentDesign        Department = "Design"
	DepartmentRelevRelex    Department = "Relev/Relex"
	DepartmentCommunication Department = "Communication"
	DepartmentMultimedia    Department = "Multimedia"
)

var departments = []Department{
	DepartmentGeneral,
	DepartmentHR,
	DepartmentDevelopment,
	DepartmentUIUX,
	DepartmentDesign,
	DepartmentRelevRelex,
	DepartmentCommunication,
	DepartmentMultimedia,
}

// AllDepartments returns every department in display order.
func AllDepartments() []Department {
	out := make([]Department, len(departments))
	copy(out, departments)
	return out
}

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	for _, known := range departments {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDepartment matches s exactly against the known departments after trimming spaces.
func ParseDepartment(s string) (Department, bool) {
	d := Department(strings.TrimSpace(s))
	return d, d.Valid()
}

// Role is a user's organizational rank.
type Role string

// Role values.
const (
	RolePresident     Role = "President"
	RoleVicePresident Role = "Vice President"
	RoleManager       Role = "Manager"
	RoleAssistant     Role = "Assistant"
	RoleMember        Role = "Member"
)

var roles = []Role{RolePresident, RoleVicePresident, RoleManager, RoleAssistant, RoleMember}

// AllRoles returns every role from highest to lowest rank.
func AllRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole matches s exactly against the known roles after trimming spaces.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	return r, r.Valid()
}

// PostsInOwnDepartment reports whether posts by this role always land in the author's department.
func (r Role) PostsInOwnDepartment() bool {
	return r == RoleManager || r == RoleAssistant
}

// CanAssignRoles reports whether holders of this role may change other users' roles.
func (r Role) CanAssignRoles() bool {
	return r == RolePresident || r == RoleVicePresident
}
