// Package authz holds the team role allow-lists and the resource-ownership
// checks that run after the role gate has admitted a request.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/project"
	"github.com/daap14/teamboard/internal/team"
)

var (
	// ErrForbidden is returned when the actor lacks the required ownership or role.
	ErrForbidden = errors.New("forbidden")
	// ErrOwnerRoleImmutable is returned when a role change targets an OWNER row.
	ErrOwnerRoleImmutable = errors.New("owner role cannot be changed")
	// ErrOwnerRemoval is returned when a removal targets an OWNER row.
	ErrOwnerRemoval = errors.New("owner cannot be removed")
	// ErrSelfRemoval is returned when a member tries to remove themselves.
	ErrSelfRemoval = errors.New("you cannot remove yourself")
)

// Policy is an explicit allow-list of team roles. Roles are never compared
// by rank.
type Policy struct {
	allowed map[membership.Role]bool
}

// Allow builds a Policy admitting exactly the given roles.
func Allow(roles ...membership.Role) Policy {
	allowed := make(map[membership.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return Policy{allowed: allowed}
}

// Permits reports whether role is on the allow-list.
func (p Policy) Permits(role membership.Role) bool {
	return p.allowed[role]
}

// Policies applied by the team-scoped routes.
var (
	AnyMember    = Allow(membership.RoleOwner, membership.RoleAdmin, membership.RoleMember, membership.RoleViewer)
	OwnerOrAdmin = Allow(membership.RoleOwner, membership.RoleAdmin)
	OwnerOnly    = Allow(membership.RoleOwner)

	// Member role updates and removals are owner-only.
	MemberRoleUpdate = OwnerOnly
	MemberRemoval    = OwnerOnly
)

// MemberLookup resolves a user's role in a team.
type MemberLookup interface {
	Lookup(ctx context.Context, teamID, userID uuid.UUID) (membership.Role, error)
}

// Authorizer performs the per-resource checks that need the membership store.
type Authorizer struct {
	members MemberLookup
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(members MemberLookup) *Authorizer {
	return &Authorizer{members: members}
}

// CanMutateProject allows the project's owner, or an OWNER/ADMIN of the
// project's team.
func (a *Authorizer) CanMutateProject(ctx context.Context, p *project.Project, actorID uuid.UUID) error {
	if p.OwnerID == actorID {
		return nil
	}

	role, err := a.members.Lookup(ctx, p.TeamID, actorID)
	if err != nil {
		if errors.Is(err, membership.ErrNotMember) {
			return ErrForbidden
		}
		return fmt.Errorf("resolving team role: %w", err)
	}
	if !OwnerOrAdmin.Permits(role) {
		return ErrForbidden
	}
	return nil
}

// CanMutateTeam allows only the team's recorded owner. ADMINs get no delegation.
func CanMutateTeam(t *team.Team, actorID uuid.UUID) error {
	if t.OwnerID != actorID {
		return ErrForbidden
	}
	return nil
}

// CheckRoleChange rejects role changes on OWNER rows.
func CheckRoleChange(target *membership.Member) error {
	if target.Role == membership.RoleOwner {
		return ErrOwnerRoleImmutable
	}
	return nil
}

// CheckRemoval rejects removing an OWNER row or the actor's own row.
func CheckRemoval(target *membership.Member, actorID uuid.UUID) error {
	if target.Role == membership.RoleOwner {
		return ErrOwnerRemoval
	}
	if target.UserID == actorID {
		return ErrSelfRemoval
	}
	return nil
}
