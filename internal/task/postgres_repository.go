package task

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/teamboard/internal/database"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// likeEscaper makes LIKE metacharacters in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const taskColumns = `id, title, description, status, project_id, created_by_id, created_at, updated_at`

// Create inserts a task and its "Created task" activity entry.
func (r *PostgresRepository) Create(ctx context.Context, t *Task, actorID uuid.UUID) error {
	if t.Status == "" {
		t.Status = StatusTodo
	}

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO tasks (title, description, status, project_id, created_by_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRow(ctx, query, t.Title, t.Description, t.Status, t.ProjectID, t.CreatedByID).
			Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrProjectNotFound
			}
			return fmt.Errorf("inserting task: %w", err)
		}

		return recordActivity(ctx, tx, "Created task "+t.Title, actorID, t.ProjectID)
	})
}

// List retrieves a paginated page of a project's tasks, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageSize
	}
	if maxPage := math.MaxInt32 / filter.Limit; filter.Page > maxPage {
		filter.Page = maxPage
	}

	whereClause := "WHERE project_id = $1"
	args := []any{filter.ProjectID}
	if q := strings.TrimSpace(filter.Query); q != "" {
		whereClause += ` AND title ILIKE $2 ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks "+whereClause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, taskColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	return &ListResult{Tasks: tasks, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update modifies a task and records an "Updated task" activity entry.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields, actorID uuid.UUID) (*Task, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *fields.Title)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *fields.Status)
		argIdx++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d
		RETURNING `+taskColumns,
		strings.Join(setClauses, ", "), argIdx)

	var updated *Task
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		updated = t
		return recordActivity(ctx, tx, "Updated task "+t.Title, actorID, t.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task and records a "Deleted task" activity entry.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Task, error) {
	var deleted *Task
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
		if err != nil {
			return err
		}
		deleted = t
		return recordActivity(ctx, tx, "Deleted task "+t.Title, actorID, t.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func recordActivity(ctx context.Context, q database.DBTX, action string, userID, projectID uuid.UUID) error {
	_, err := q.Exec(ctx,
		`INSERT INTO activity_logs (action, user_id, project_id) VALUES ($1, $2, $3)`,
		action, userID, projectID,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("scanning task row: %w", err)
	}
	return &t, nil
}
