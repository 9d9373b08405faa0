package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new project record.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (name, team_id, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	if err := r.pool.QueryRow(ctx, query, p.Name, p.TeamID, p.OwnerID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

// GetByID retrieves a single project by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, name, team_id, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1`

	return scanProject(r.pool.QueryRow(ctx, query, id))
}

// ListByTeam returns the team's projects with task counts, newest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Project, error) {
	query := `
		SELECT p.id, p.name, p.team_id, p.owner_id, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id)
		FROM projects p
		WHERE p.team_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.TeamID, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt, &p.TaskCount); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}

// Rename updates the project name.
func (r *PostgresRepository) Rename(ctx context.Context, id uuid.UUID, name string) (*Project, error) {
	query := `
		UPDATE projects
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, team_id, owner_id, created_at, updated_at`

	return scanProject(r.pool.QueryRow(ctx, query, name, id))
}

// Delete removes a project and, by cascade, its tasks.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.TeamID, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project row: %w", err)
	}
	return &p, nil
}
