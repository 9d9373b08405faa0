package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/teamboard/internal/database"
	"github.com/daap14/teamboard/internal/user"
)

const uniqueMembershipConstraint = "team_members_team_id_user_id_key"

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &PostgresStore{pool: pool}
}

// Lookup is a point read on the (team_id, user_id) unique index.
func (s *PostgresStore) Lookup(ctx context.Context, teamID, userID uuid.UUID) (Role, error) {
	var role Role
	err := s.pool.QueryRow(ctx,
		`SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotMember
		}
		return "", fmt.Errorf("looking up membership: %w", err)
	}
	return role, nil
}

// Insert creates a membership row.
func (s *PostgresStore) Insert(ctx context.Context, m *Member) error {
	return Insert(ctx, s.pool, m)
}

// Insert creates a membership row using q, which may be a transaction.
func Insert(ctx context.Context, q database.DBTX, m *Member) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := q.QueryRow(ctx, query, m.TeamID, m.UserID, m.Role).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniqueMembershipConstraint {
			return ErrAlreadyMember
		}
		return fmt.Errorf("inserting team member: %w", err)
	}
	return nil
}

// GetByID retrieves a membership row scoped to its team.
func (s *PostgresStore) GetByID(ctx context.Context, teamID, memberID uuid.UUID) (*Member, error) {
	query := `
		SELECT id, team_id, user_id, role, joined_at
		FROM team_members
		WHERE id = $1 AND team_id = $2`

	return scanMember(s.pool.QueryRow(ctx, query, memberID, teamID))
}

// UpdateRole changes the role of a non-owner membership row.
func (s *PostgresStore) UpdateRole(ctx context.Context, teamID, memberID uuid.UUID, role Role) (*Member, error) {
	query := `
		UPDATE team_members
		SET role = $1
		WHERE id = $2 AND team_id = $3 AND role <> 'OWNER'
		RETURNING id, team_id, user_id, role, joined_at`

	return scanMember(s.pool.QueryRow(ctx, query, role, memberID, teamID))
}

// Delete removes a non-owner membership row.
func (s *PostgresStore) Delete(ctx context.Context, teamID, memberID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM team_members WHERE id = $1 AND team_id = $2 AND role <> 'OWNER'`,
		memberID, teamID,
	)
	if err != nil {
		return fmt.Errorf("deleting team member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListByTeam returns all members of a team with their user summary, oldest first.
func (s *PostgresStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	query := `
		SELECT m.id, m.team_id, m.user_id, m.role, m.joined_at,
		       u.name, u.email, u.avatar
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at ASC`

	rows, err := s.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		u := &user.Summary{}
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt, &u.Name, &u.Email, &u.Avatar); err != nil {
			return nil, fmt.Errorf("scanning team member row: %w", err)
		}
		u.ID = m.UserID
		m.User = u
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team member rows: %w", err)
	}

	return members, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	if err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("scanning team member row: %w", err)
	}
	return &m, nil
}
