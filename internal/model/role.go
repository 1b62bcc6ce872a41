package model

// Role names a tier in the access hierarchy.  The three roles form a strict
// total order: a viewer can read data, a sampler can additionally record
// routes and upload metabarcode results, and an admin can additionally
// manage users and reference data.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleSampler Role = "sampler"
	RoleAdmin   Role = "admin"
)

// roleRanks maps each role to its position in the hierarchy.  Authorization
// checks compare ranks, so "at least sampler" admits both sampler and admin.
var roleRanks = map[Role]int{
	RoleViewer:  1,
	RoleSampler: 2,
	RoleAdmin:   3,
}

// Rank returns the role's position in the hierarchy, or 0 for an unknown
// role.  Unknown roles therefore never satisfy any requirement.
func (r Role) Rank() int { return roleRanks[r] }

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool { return roleRanks[r] != 0 }

// AtLeast reports whether r meets or exceeds the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank() && required.Valid()
}
