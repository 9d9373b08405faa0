package invitation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/user"
)

// DefaultTTL is how long an invitation stays acceptable.
const DefaultTTL = 7 * 24 * time.Hour

const tokenBytes = 32

// MemberLookup resolves a user's role in a team.
type MemberLookup interface {
	Lookup(ctx context.Context, teamID, userID uuid.UUID) (membership.Role, error)
}

// UserFinder resolves registered users by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// SendInput carries the fields needed to invite someone to a team.
type SendInput struct {
	TeamID    uuid.UUID
	Email     string
	Role      membership.Role
	InvitedBy uuid.UUID
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and expiring invitations.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// Manager drives the invitation lifecycle.
type Manager struct {
	invitations Repository
	members     MemberLookup
	users       UserFinder
	ttl         time.Duration
	now         func() time.Time
}

// NewManager creates a Manager.
func NewManager(invitations Repository, members MemberLookup, users UserFinder, opts ...Option) *Manager {
	m := &Manager{
		invitations: invitations,
		members:     members,
		users:       users,
		ttl:         DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send creates a PENDING invitation. Membership is checked before the
// pending-invitation check so an existing member always gets ErrAlreadyMember.
func (m *Manager) Send(ctx context.Context, in SendInput) (*Invitation, error) {
	email := user.NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = membership.RoleMember
	}

	existing, err := m.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err := m.members.Lookup(ctx, in.TeamID, existing.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, membership.ErrNotMember) {
			return nil, fmt.Errorf("checking membership: %w", err)
		}
	case errors.Is(err, user.ErrUserNotFound):
	default:
		return nil, fmt.Errorf("looking up invitee: %w", err)
	}

	if _, err := m.invitations.FindPending(ctx, in.TeamID, email); err == nil {
		return nil, ErrInvitationExists
	} else if !errors.Is(err, ErrInvitationNotFound) {
		return nil, fmt.Errorf("checking pending invitations: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	inv := &Invitation{
		TeamID:    in.TeamID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    StatusPending,
		InvitedBy: in.InvitedBy,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	slog.Info("invitation sent", "team_id", inv.TeamID, "invitation_id", inv.ID, "role", inv.Role)
	return inv, nil
}

// Accept redeems a token for userID. Expiry only applies to PENDING
// invitations; terminal invitations never transition again.
func (m *Manager) Accept(ctx context.Context, token string, userID uuid.UUID) (*membership.Member, error) {
	inv, err := m.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if inv.Status.Terminal() {
		return nil, &NotPendingError{Status: inv.Status}
	}

	if m.now().After(inv.ExpiresAt) {
		if err := m.transition(ctx, inv, StatusExpired); err != nil {
			return nil, err
		}
		return nil, ErrInvitationExpired
	}

	if _, err := m.members.Lookup(ctx, inv.TeamID, userID); err == nil {
		return nil, m.cancelForExistingMember(ctx, inv)
	} else if !errors.Is(err, membership.ErrNotMember) {
		return nil, fmt.Errorf("checking membership: %w", err)
	}

	member, err := m.invitations.Accept(ctx, inv, userID)
	if err != nil {
		if errors.Is(err, membership.ErrAlreadyMember) {
			return nil, m.cancelForExistingMember(ctx, inv)
		}
		return nil, err
	}

	slog.Info("invitation accepted", "team_id", inv.TeamID, "invitation_id", inv.ID, "user_id", userID)
	return member, nil
}

// Cancel marks a team's invitation CANCELLED whatever its current status.
func (m *Manager) Cancel(ctx context.Context, teamID uuid.UUID, token string) (*Invitation, error) {
	inv, err := m.invitations.CancelByToken(ctx, teamID, token)
	if err != nil {
		return nil, err
	}
	slog.Info("invitation cancelled", "team_id", teamID, "invitation_id", inv.ID)
	return inv, nil
}

// List returns a team's invitations with their stored statuses.
func (m *Manager) List(ctx context.Context, teamID uuid.UUID) ([]Invitation, error) {
	return m.invitations.ListByTeam(ctx, teamID)
}

func (m *Manager) cancelForExistingMember(ctx context.Context, inv *Invitation) error {
	if err := m.transition(ctx, inv, StatusCancelled); err != nil {
		return err
	}
	return ErrAlreadyMember
}

// transition moves inv out of PENDING. The snapshot in inv may be stale, so a
// row that a concurrent request already finalized surfaces as *NotPendingError.
func (m *Manager) transition(ctx context.Context, inv *Invitation, status Status) error {
	err := m.invitations.SetStatusIfPending(ctx, inv.ID, status)
	if err == nil {
		return nil
	}
	var notPending *NotPendingError
	if errors.As(err, &notPending) || errors.Is(err, ErrInvitationNotFound) {
		return err
	}
	return fmt.Errorf("setting invitation %s: %w", strings.ToLower(string(status)), err)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
