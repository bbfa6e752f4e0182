package credentials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:credsvc?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS credentials (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM credentials`)
	require.NoError(t, err)
	return db
}

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	return NewSQLiteRepository(setupDB(t), []byte("install-secret-0123456789abcdef"))
}

func TestSQLiteRepository_LoadEmpty(t *testing.T) {
	repo := newRepo(t)

	rec, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLiteRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	in := &Record{
		Token:           "tok-1",
		IsAuthenticated: true,
		User:            &models.User{ID: "u1", Email: "a@b.c", Name: "Alice", Role: "student"},
		RememberMe:      false,
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, out)
}

func TestSQLiteRepository_SaveOverwrites(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Record{Token: "old", IsAuthenticated: true, RememberMe: true}))
	require.NoError(t, repo.Save(ctx, &Record{Token: "new", IsAuthenticated: true, RememberMe: true}))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "new", out.Token)
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Record{Token: "tok", IsAuthenticated: true}))
	require.NoError(t, repo.Clear(ctx))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, out)

	// clearing again is harmless
	require.NoError(t, repo.Clear(ctx))
}

func TestSQLiteRepository_CorruptRecordDegradesToAnonymous(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db, []byte("secret"))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Record{Token: "tok", IsAuthenticated: true}))

	_, err := db.Exec(`UPDATE credentials SET value = X'DEADBEEF' WHERE key = 'record'`)
	require.NoError(t, err)

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSQLiteRepository_DifferentSecretCannotRead(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, NewSQLiteRepository(db, []byte("secret-a")).Save(ctx, &Record{Token: "tok", IsAuthenticated: true}))

	out, err := NewSQLiteRepository(db, []byte("secret-b")).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, out)
}
