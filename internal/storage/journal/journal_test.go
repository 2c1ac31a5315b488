package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
)

func entity(t *testing.T, id models.EntityID, kind models.Kind, name string, x, y int) *models.Entity {
	t.Helper()
	e, err := models.NewEntity(id, models.Record{Kind: kind, Name: name, X: x, Y: y})
	require.NoError(t, err)
	return e
}

func openMemory(t *testing.T, runID string) *Journal {
	t.Helper()
	j, err := Open(MemoryPath, runID, log.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRecordsAttempts(t *testing.T) {
	j := openMemory(t, "run-1")
	ctx := context.Background()

	toad := entity(t, 1, models.KindToad, "kermit", 10, 10)
	dragon := entity(t, 2, models.KindDragon, "smaug", 12, 14)
	j.OnFight(dragon, toad, false)
	j.OnFight(toad, dragon, true)

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	kills, err := j.Kills(ctx)
	require.NoError(t, err)
	require.Len(t, kills, 1)
	k := kills[0]
	assert.Equal(t, "run-1", k.RunID)
	assert.Equal(t, Fighter{ID: 1, Kind: models.KindToad, Name: "kermit"}, k.Attacker)
	assert.Equal(t, Fighter{ID: 2, Kind: models.KindDragon, Name: "smaug"}, k.Defender)
	assert.True(t, k.Success)
	assert.Equal(t, 12, k.X)
	assert.Equal(t, 14, k.Y)
	assert.False(t, k.At.IsZero())
}

func TestJournalGeneratesRunID(t *testing.T) {
	j := openMemory(t, "")
	assert.Len(t, j.RunID(), 36)
}

func TestJournalFileIsScopedPerRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fights.db")
	ctx := context.Background()
	a := entity(t, 1, models.KindKnight, "a", 0, 0)
	b := entity(t, 2, models.KindDragon, "b", 1, 1)

	first, err := Open(path, "first", nil)
	require.NoError(t, err)
	first.OnFight(a, b, true)
	require.NoError(t, first.Close())

	second, err := Open(path, "second", nil)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	second.OnFight(a, b, true)
	second.OnFight(a, b, false)
	n, err = second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJournalErrors(t *testing.T) {
	_, err := Open(" ", "", nil)
	assert.Error(t, err)

	var nilJournal *Journal
	assert.ErrorIs(t, nilJournal.Record(context.Background(), Entry{}), ErrNotConfigured)
	assert.NoError(t, nilJournal.Close())

	j := openMemory(t, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, j.Record(ctx, Entry{}), context.Canceled)
}
