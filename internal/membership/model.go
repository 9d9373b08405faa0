package membership

import (
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/user"
)

// Role is a per-team role. Permission checks compare against explicit
// allow-lists; roles carry no ordering.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// AllRoles lists every team role.
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// AssignableRoles are the roles that may be granted through add-member,
// role-update and invitations. OWNER is only ever created with the team.
var AssignableRoles = []Role{RoleAdmin, RoleMember, RoleViewer}

// Valid reports whether r is one of the known team roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Assignable reports whether r can be granted outside team creation.
func (r Role) Assignable() bool {
	for _, a := range AssignableRoles {
		if r == a {
			return true
		}
	}
	return false
}

// Member represents a row in the team_members table.
type Member struct {
	ID       uuid.UUID
	TeamID   uuid.UUID
	UserID   uuid.UUID
	Role     Role
	JoinedAt time.Time

	// User is populated by list queries that join users.
	User *user.Summary
}
