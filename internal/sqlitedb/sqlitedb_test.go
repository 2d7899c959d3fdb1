package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"0002_index.sql": {Data: []byte(`CREATE INDEX IF NOT EXISTS idx_notes_body ON notes(body);`)},
		"0001_notes.sql": {Data: []byte(`CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`)},
		"0003_seed.sql":  {Data: []byte(`INSERT OR IGNORE INTO notes (id, body) VALUES (1, 'seed');`)},
		"README.md":      {Data: []byte("not a migration")},
		"0000_empty.sql": {Data: []byte("   \n")},
	}
}

func TestFiles_LexicographicOrder(t *testing.T) {
	names, err := Files(testMigrations())
	require.NoError(t, err)

	assert.Equal(t, []string{"0000_empty.sql", "0001_notes.sql", "0002_index.sql", "0003_seed.sql"}, names)
}

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"), testMigrations())
	require.NoError(t, err)
	defer db.Close()

	var body string
	require.NoError(t, db.QueryRow("SELECT body FROM notes WHERE id = 1").Scan(&body))
	assert.Equal(t, "seed", body)

	version, err := UserVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 4, version)
}

func TestOpen_Pragmas(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), testMigrations())
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		db, err := Open(ctx, path, testMigrations())
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, db.Close())
	}

	db, err := Open(ctx, path, testMigrations())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpen_FailingMigration(t *testing.T) {
	bad := fstest.MapFS{
		"0001_ok.sql":  {Data: []byte(`CREATE TABLE IF NOT EXISTS a (id INTEGER);`)},
		"0002_bad.sql": {Data: []byte(`CREATE TABLE nope (`)},
	}

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_bad.sql")
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), "/nonexistent/dir/test.db", testMigrations())
	assert.Error(t, err)
}
