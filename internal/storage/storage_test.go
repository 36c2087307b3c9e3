package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachedNaguez/PcBuilder/internal/model"
)

func newSession(id string, updatedAt time.Time) *model.Session {
	s := &model.Session{
		ID:        id,
		Mode:      model.ModeDiscuss,
		View:      model.ViewChat,
		BuildType: "gaming",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	s.AppendMessage("Welcome!", true)
	return s
}

func TestMemoryStorageCRUD(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Init())
	defer store.Close()

	session := newSession("s1", time.Now())
	require.NoError(t, store.CreateSession(session))

	got, err := store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	require.Len(t, got.Messages, 1)

	got.Mode = model.ModeBuild
	require.NoError(t, store.UpdateSession(got))

	got, err = store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, model.ModeBuild, got.Mode)

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, store.DeleteSession("s1"))
	_, err = store.GetSession("s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStorageNotFound(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Init())

	_, err := store.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = store.UpdateSession(newSession("missing", time.Now()))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = store.DeleteSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDiskStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())
	defer store.Close()

	session := newSession("s1", time.Now())
	session.Build = &model.BuildResult{
		Components: []model.Component{
			{Name: "Ryzen 5 7600", Type: "CPU", Price: model.PriceOf(229.99), Icon: "cpu", Specs: model.SpecList{"6 cores"}},
		},
		TotalPrice: 229.99,
	}
	require.NoError(t, store.CreateSession(session))

	// A second instance over the same directory must see the session.
	reopened := NewDiskStorage(dir, 10)
	require.NoError(t, reopened.Init())

	got, err := reopened.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, model.ModeDiscuss, got.Mode)
	require.NotNil(t, got.Build)
	require.Len(t, got.Build.Components, 1)
	assert.Equal(t, "Ryzen 5 7600", got.Build.Components[0].Name)
	assert.InDelta(t, 229.99, got.Build.Components[0].Price.Amount, 0.0001)
}

func TestDiskStorageListOrderedByRecency(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())

	base := time.Now()
	require.NoError(t, store.CreateSession(newSession("old", base.Add(-2*time.Hour))))
	require.NoError(t, store.CreateSession(newSession("mid", base.Add(-time.Hour))))
	require.NoError(t, store.CreateSession(newSession("new", base)))

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "mid", sessions[1].ID)
	assert.Equal(t, "old", sessions[2].ID)
}

func TestDiskStorageDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())

	require.NoError(t, store.CreateSession(newSession("s1", time.Now())))
	require.NoError(t, store.DeleteSession("s1"))

	_, err := store.GetSession("s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.DeleteSession("s1"), ErrSessionNotFound)
}

func TestDiskStorageUpdateMissing(t *testing.T) {
	store := NewDiskStorage(t.TempDir(), 10)
	require.NoError(t, store.Init())

	err := store.UpdateSession(newSession("ghost", time.Now()))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDiskStorageBackup(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStorage(dir, 10)
	require.NoError(t, store.Init())

	require.NoError(t, store.CreateSession(newSession("s1", time.Now())))
	require.NoError(t, store.Backup())

	backups, err := os.ReadDir(filepath.Join(dir, "backup"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	copied, err := os.ReadDir(filepath.Join(dir, "backup", backups[0].Name(), "sessions"))
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, "s1.json", copied[0].Name())
}

func TestDiskStorageCacheEvictionKeepsDiskCopy(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStorage(dir, 2)
	require.NoError(t, store.Init())

	base := time.Now()
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("s%d", i)
		require.NoError(t, store.CreateSession(newSession(id, base.Add(time.Duration(i)*time.Minute))))
	}

	// Every session is still readable even though the cache only holds two.
	for i := 0; i < 4; i++ {
		got, err := store.GetSession(fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("s%d", i), got.ID)
	}
}
