package core

// Role is the access level claim supplied by the identity provider.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHomeroom Role = "homeroom"
	RoleStudent  Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHomeroom, RoleStudent:
		return true
	}
	return false
}

// Actor identifies who is performing an operation. It is passed explicitly
// into every mutating service call instead of being read from ambient session
// state, so role and society checks stay testable.
type Actor struct {
	ID        string
	Role      Role
	SocietyID string
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsHomeroom() bool { return a.Role == RoleHomeroom }
func (a Actor) IsStudent() bool  { return a.Role == RoleStudent }

// SameSociety reports whether the actor belongs to the given society.
// An empty society on either side never matches.
func (a Actor) SameSociety(societyID string) bool {
	return a.SocietyID != "" && a.SocietyID == societyID
}
