package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Open_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := Open(path)
	req.NoError(err)
	req.NoError(db.Close())

	db, err = Open(path)
	req.NoError(err)
	req.NoError(db.Close())
}
