package model

// Role is the operator's privilege level.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAttendant Role = "ATTENDANT"
)

// Privileged reports whether the role may edit the layout and run admin tools.
func (r Role) Privileged() bool { return r == RoleAdmin }
