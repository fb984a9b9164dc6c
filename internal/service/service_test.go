package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs-tungthanh/fcc-microservices/internal/repository"
)

// setupTestDB uses in-memory SQLite for tests
func setupTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err, "failed to create db")
	t.Cleanup(func() { db.Close() })
	return db
}
