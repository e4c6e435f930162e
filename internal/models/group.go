package models

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the group's creator (its first admin).
	CreatedBy string

	// Active is false once the group has been archived.
	Active bool

	// Members holds every membership, including deactivated ones.
	Members []Membership

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the group.
	UpdatedAt int64
}

// Membership links a user to a group.
// Removing a member deactivates the membership instead of deleting it so that
// historic expenses keep a valid reference.
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	Active   bool
	JoinedAt int64
}

// Member returns the active membership for userID.
func (g *Group) Member(userID string) (Membership, bool) {
	for _, m := range g.Members {
		if m.UserID == userID && m.Active {
			return m, true
		}
	}
	return Membership{}, false
}

// IsMember reports whether userID is an active member.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// IsAdmin reports whether userID is an active admin.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == RoleAdmin
}

// ActiveMemberIDs returns the user IDs of active members in membership order.
func (g *Group) ActiveMemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Active {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// AdminCount returns the number of active admins.
func (g *Group) AdminCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Active && m.Role == RoleAdmin {
			n++
		}
	}
	return n
}
