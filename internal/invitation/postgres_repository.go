package invitation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/teamboard/internal/database"
	"github.com/daap14/teamboard/internal/membership"
)

const pendingIndex = "team_invitations_pending_key"

const invitationColumns = `id, team_id, email, role, token, status, invited_by, expires_at, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new invitation record.
func (r *PostgresRepository) Create(ctx context.Context, inv *Invitation) error {
	if inv.Status == "" {
		inv.Status = StatusPending
	}

	query := `
		INSERT INTO team_invitations (team_id, email, role, token, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		inv.TeamID, inv.Email, inv.Role, inv.Token, inv.Status, inv.InvitedBy, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == pendingIndex {
			return ErrInvitationExists
		}
		return fmt.Errorf("inserting invitation: %w", err)
	}

	return nil
}

// GetByToken retrieves an invitation by its token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE token = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, token))
}

// FindPending retrieves the pending invitation for a team and email.
func (r *PostgresRepository) FindPending(ctx context.Context, teamID uuid.UUID, email string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE team_id = $1 AND email = $2 AND status = 'PENDING'`
	return scanInvitation(r.pool.QueryRow(ctx, query, teamID, email))
}

// ListByTeam returns a team's invitations newest first, with stored statuses.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE team_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	invitations := []Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitation rows: %w", err)
	}

	return invitations, nil
}

// SetStatusIfPending moves a PENDING invitation to status. When the row has
// already left PENDING it returns *NotPendingError carrying the stored status.
func (r *PostgresRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, status Status) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE team_invitations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = 'PENDING'`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating invitation status: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var current Status
	err = r.pool.QueryRow(ctx, `SELECT status FROM team_invitations WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("reading invitation status: %w", err)
	}
	return &NotPendingError{Status: current}
}

// Accept transitions a pending invitation to ACCEPTED and creates the
// membership row in the same transaction.
func (r *PostgresRepository) Accept(ctx context.Context, inv *Invitation, userID uuid.UUID) (*membership.Member, error) {
	var member *membership.Member
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current Status
		err := tx.QueryRow(ctx,
			`SELECT status FROM team_invitations WHERE id = $1 FOR UPDATE`, inv.ID,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("locking invitation: %w", err)
		}
		if current != StatusPending {
			return &NotPendingError{Status: current}
		}

		m := &membership.Member{TeamID: inv.TeamID, UserID: userID, Role: inv.Role}
		if err := membership.Insert(ctx, tx, m); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE team_invitations SET status = 'ACCEPTED', updated_at = NOW() WHERE id = $1`, inv.ID,
		); err != nil {
			return fmt.Errorf("marking invitation accepted: %w", err)
		}

		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// CancelByToken marks the team's invitation CANCELLED.
func (r *PostgresRepository) CancelByToken(ctx context.Context, teamID uuid.UUID, token string) (*Invitation, error) {
	query := `
		UPDATE team_invitations
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE token = $1 AND team_id = $2
		RETURNING ` + invitationColumns
	return scanInvitation(r.pool.QueryRow(ctx, query, token, teamID))
}

func scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("scanning invitation row: %w", err)
	}
	return &inv, nil
}
