package types

// Role is an access level used by the widget display gate. Roles are
// compared case-sensitively against a fixed rank table.
type Role string

// Known roles, highest first.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleEditor  Role = "editor"
	RoleViewer  Role = "viewer"
	RoleAll     Role = "all"
)

var roleRanks = map[Role]int{
	RoleAdmin:   100,
	RoleManager: 75,
	RoleEditor:  50,
	RoleViewer:  25,
	RoleAll:     0,
}

// Roles lists the known roles, highest rank first.
var Roles = []Role{RoleAdmin, RoleManager, RoleEditor, RoleViewer, RoleAll}

// Rank returns the rank of r and whether r is a known role.
func (r Role) Rank() (int, bool) {
	rank, ok := roleRanks[r]
	return rank, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Meets reports whether r ranks at or above required. An unknown role on
// either side never meets.
func (r Role) Meets(required Role) bool {
	have, ok := r.Rank()
	if !ok {
		return false
	}
	need, ok := required.Rank()
	if !ok {
		return false
	}
	return have >= need
}
