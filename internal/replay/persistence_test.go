package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/testutil"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	cfg := Config{Type: StoreTypeFile, BaseDir: filepath.Join(t.TempDir(), "replays")}
	fs, err := NewFileStore(cfg, zerolog.New(zerolog.NewTestWriter(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func newEngine(t *testing.T, gameID string) *game.Engine {
	t.Helper()
	e, err := game.NewEngine(context.Background(), game.GameConfig{
		Width:         36,
		Height:        21,
		SpawnInterval: 10,
		SpawnCount:    3,
		GameID:        gameID,
		Logger:        testutil.NopLogger(),
		IDs:           testutil.SequentialIDs(gameID),
	})
	require.NoError(t, err)
	return e
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	fs := newFileStore(t)
	_, err := os.Stat(fs.config.BaseDir)
	assert.NoError(t, err)
}

func TestFileStore_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	e := newEngine(t, "g1")

	require.NoError(t, Record(ctx, fs, e))
	for i := 0; i < 3; i++ {
		require.NoError(t, e.BeginTurn())
		require.NoError(t, e.EvaluateTurn())
		require.NoError(t, Record(ctx, fs, e))
	}

	frames, err := fs.Read(ctx, "g1", 0)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	for i, f := range frames {
		assert.Equal(t, "g1", f.GameID)
		assert.Equal(t, i, f.Turn)
	}

	snap, err := frames[3].Decode()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Turn)
	assert.Len(t, snap.Units, 30)

	limited, err := fs.Read(ctx, "g1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	stats := fs.Stats()
	assert.Equal(t, int64(4), stats.FramesWritten)
	assert.Equal(t, int64(6), stats.FramesRead)
	assert.Positive(t, stats.BytesWritten)
}

func TestFileStore_SeparatesGames(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	require.NoError(t, Record(ctx, fs, newEngine(t, "a")))
	require.NoError(t, Record(ctx, fs, newEngine(t, "b")))
	require.NoError(t, Record(ctx, fs, newEngine(t, "b")))

	a, err := fs.Read(ctx, "a", 0)
	require.NoError(t, err)
	assert.Len(t, a, 1)
	b, err := fs.Read(ctx, "b", 0)
	require.NoError(t, err)
	assert.Len(t, b, 2)
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	require.NoError(t, Record(ctx, fs, newEngine(t, "gone")))

	require.NoError(t, fs.Delete(ctx, "gone"))
	_, err := fs.Read(ctx, "gone", 0)
	assert.Error(t, err)

	assert.NoError(t, fs.Delete(ctx, "never-recorded"))
}

func TestFileStore_RejectsPathLikeIDs(t *testing.T) {
	fs := newFileStore(t)
	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		err := fs.Write(context.Background(), Frame{GameID: id})
		assert.ErrorIs(t, err, ErrInvalidGameID, "id %q", id)
	}
}

func TestFileStore_ClosedAndCancelled(t *testing.T) {
	fs := newFileStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, fs.Write(ctx, Frame{GameID: "x"}), context.Canceled)

	require.NoError(t, fs.Close())
	assert.ErrorIs(t, fs.Write(context.Background(), Frame{GameID: "x"}), ErrStoreClosed)
	assert.NoError(t, fs.Close())
}

func TestRestore_FromLastFrame(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	e := newEngine(t, "resume")
	for i := 0; i < 2; i++ {
		require.NoError(t, e.BeginTurn())
		require.NoError(t, e.EvaluateTurn())
		require.NoError(t, Record(ctx, fs, e))
	}

	restored, err := Restore(ctx, fs, "resume", game.GameConfig{
		SpawnInterval: 10,
		SpawnCount:    3,
		Logger:        testutil.NopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "resume", restored.GameID())
	assert.Equal(t, 2, restored.Turn())
	assert.Equal(t, e.Grid().UnitCounts(), restored.Grid().UnitCounts())
	assert.NoError(t, restored.BeginTurn())
	assert.Equal(t, 15, restored.Grid().UnitCounts()[core.Side0])
}

func TestNewStore(t *testing.T) {
	logger := zerolog.Nop()

	s, err := NewStore(DefaultConfig(), logger)
	require.NoError(t, err)
	assert.IsType(t, NullStore{}, s)
	assert.NoError(t, s.Write(context.Background(), Frame{}))

	s, err = NewStore(Config{Type: StoreTypeFile, BaseDir: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(Config{Type: "s3"}, logger)
	assert.ErrorIs(t, err, ErrInvalidStoreType)
}
