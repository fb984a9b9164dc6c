package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cs-tungthanh/fcc-microservices/internal/model"
)

type ShortURLRepository struct {
	db *DB
}

func NewShortURLRepository(db *DB) *ShortURLRepository {
	return &ShortURLRepository{db: db}
}

// Create inserts a mapping. A taken code or an already mapped original
// comes back as ErrConflict.
func (r *ShortURLRepository) Create(ctx context.Context, u *model.ShortURL) error {
	_, err := r.db.ExecContext(ctx,
		r.db.rebind("INSERT INTO short_urls (short, original, created_at) VALUES (?, ?, ?)"),
		u.Short, u.Original, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create short url: %w", translate(err))
	}
	return nil
}

func (r *ShortURLRepository) GetByShort(ctx context.Context, short int64) (*model.ShortURL, error) {
	return r.getOne(ctx, "SELECT short, original, created_at FROM short_urls WHERE short = ?", short)
}

func (r *ShortURLRepository) GetByOriginal(ctx context.Context, original string) (*model.ShortURL, error) {
	return r.getOne(ctx, "SELECT short, original, created_at FROM short_urls WHERE original = ?", original)
}

// NextShort returns one more than the highest assigned code, or 1 when empty
func (r *ShortURLRepository) NextShort(ctx context.Context) (int64, error) {
	var maxShort sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(short) FROM short_urls").Scan(&maxShort)
	if err != nil {
		return 0, fmt.Errorf("failed to read max short code: %w", err)
	}
	if !maxShort.Valid {
		return 1, nil
	}
	return maxShort.Int64 + 1, nil
}

func (r *ShortURLRepository) getOne(ctx context.Context, query string, arg any) (*model.ShortURL, error) {
	u := &model.ShortURL{}
	err := r.db.QueryRowContext(ctx, r.db.rebind(query), arg).Scan(&u.Short, &u.Original, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}
