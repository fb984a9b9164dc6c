package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cs-tungthanh/fcc-microservices/internal/model"
)

type ExerciseRepository struct {
	db *DB
}

func NewExerciseRepository(db *DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) Create(ctx context.Context, ex *model.Exercise) error {
	duration := sql.NullInt64{Int64: ex.Duration.Value, Valid: ex.Duration.Valid}

	_, err := r.db.ExecContext(ctx,
		r.db.rebind(`INSERT INTO exercises (id, user_id, description, duration, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
		ex.ID, ex.UserID, ex.Description, duration, ex.Date.ISO(), ex.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", translate(err))
	}
	return nil
}

// ListByUser returns the user's exercises dated within [q.From, q.To],
// oldest first, truncated to q.Limit when it is positive.
func (r *ExerciseRepository) ListByUser(ctx context.Context, userID string, q model.LogQuery) ([]model.Exercise, error) {
	query, args := buildLogQuery(userID, q)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]model.Exercise, 0)
	for rows.Next() {
		var (
			ex       model.Exercise
			duration sql.NullInt64
			date     string
		)
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Description, &duration, &date, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		ex.Duration = model.Minutes{Value: duration.Int64, Valid: duration.Valid}
		if ex.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("exercise %s has stored date %q: %w", ex.ID, date, err)
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return exercises, nil
}

// buildLogQuery renders the filter with '?' placeholders. Dates are stored as
// YYYY-MM-DD so text comparison orders them correctly.
func buildLogQuery(userID string, q model.LogQuery) (string, []any) {
	var b strings.Builder
	args := []any{userID}

	b.WriteString("SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = ?")
	if !q.From.IsZero() {
		b.WriteString(" AND date >= ?")
		args = append(args, q.From.ISO())
	}
	if !q.To.IsZero() {
		b.WriteString(" AND date <= ?")
		args = append(args, q.To.ISO())
	}
	b.WriteString(" ORDER BY date ASC, created_at ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return b.String(), args
}
