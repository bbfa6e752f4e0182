package transcripts

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:transcripts?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS transcripts (
  id         TEXT PRIMARY KEY,
  content    TEXT NOT NULL,
  is_ai      INTEGER NOT NULL,
  created_at TEXT NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM transcripts`)
	require.NoError(t, err)
	return db
}

func msg(id, content string, isAI bool, at time.Time) models.ChatMessage {
	return models.ChatMessage{ID: id, Content: content, IsAI: isAI, CreatedAt: at}
}

func TestSQLiteRepository_AppendAndList(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, msg("1", "question", false, base)))
	require.NoError(t, repo.Append(ctx, msg("2", "answer", true, base.Add(time.Second))))

	got, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "question", got[0].Content)
	assert.False(t, got[0].IsAI)
	assert.Equal(t, "answer", got[1].Content)
	assert.True(t, got[1].IsAI)
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestSQLiteRepository_ListLimitKeepsNewest(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, msg(
			fmt.Sprintf("m%d", i), fmt.Sprintf("msg %d", i), i%2 == 1, base.Add(time.Duration(i)*time.Second))))
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest two, in chronological order
	assert.Equal(t, "msg 3", got[0].Content)
	assert.Equal(t, "msg 4", got[1].Content)
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, msg("1", "x", false, time.Now())))
	require.NoError(t, repo.Clear(ctx))

	got, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
