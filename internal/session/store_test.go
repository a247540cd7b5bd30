package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/storage"
)

type failingStorage struct {
	*storage.Memory
}

func (f failingStorage) Save(string, string) error { return errors.New("disk full") }

// keyFailingStorage отказывает в записи только одного ключа.
type keyFailingStorage struct {
	*storage.Memory
	key string
}

func (f keyFailingStorage) Save(key, value string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Memory.Save(key, value)
}

func TestSetGetClear(t *testing.T) {
	mem := storage.NewMemory()
	store := NewStore(mem, logging.Discard())
	require.False(t, store.IsAuthenticated())

	id := Identity{UserID: 7, Username: "alice", Privilege: 2}
	store.Set("tok", id)

	got := store.Get()
	assert.Equal(t, "tok", got.Token)
	require.NotNil(t, got.Identity)
	assert.Equal(t, id, *got.Identity)
	assert.True(t, store.IsAuthenticated())

	token, err := mem.Load(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	raw, err := mem.Load(IdentityKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":7,"username":"alice","privilege":2}`, raw)

	store.Clear()
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, Session{}, store.Get())
	_, err = mem.Load(TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.Load(IdentityKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetOverwritesWithoutMerge(t *testing.T) {
	store := NewStore(storage.NewMemory(), nil)
	store.Set("first", Identity{UserID: 1, Username: "a", Privilege: 2})
	store.Set("second", Identity{UserID: 2})

	got := store.Get()
	assert.Equal(t, "second", got.Token)
	assert.Equal(t, Identity{UserID: 2}, *got.Identity)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil)
	store.Set("tok", Identity{UserID: 1, Username: "a"})

	got := store.Get()
	got.Identity.Username = "mutated"

	assert.Equal(t, "a", store.Get().Identity.Username)
}

func TestRestoreAtStartup(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(TokenKey, "persisted"))
	require.NoError(t, mem.Save(IdentityKey, `{"userId":3,"username":"bob","privilege":1}`))

	store := NewStore(mem, nil)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, Identity{UserID: 3, Username: "bob", Privilege: 1}, *store.Get().Identity)
}

func TestGetDoesNotReReadStorage(t *testing.T) {
	mem := storage.NewMemory()
	store := NewStore(mem, nil)
	require.NoError(t, mem.Save(TokenKey, "sneaky"))
	require.NoError(t, mem.Save(IdentityKey, `{"userId":1}`))

	assert.False(t, store.IsAuthenticated())
}

func TestRestoreDropsHalfPair(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(TokenKey, "orphan"))

	store := NewStore(mem, nil)

	assert.False(t, store.IsAuthenticated())
	_, err := mem.Load(TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreDropsBrokenIdentity(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(TokenKey, "tok"))
	require.NoError(t, mem.Save(IdentityKey, "{not json"))

	store := NewStore(mem, nil)
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Get().Identity)
}

func TestPersistFailureKeepsMemoryCopy(t *testing.T) {
	store := NewStore(failingStorage{storage.NewMemory()}, logging.Discard())
	store.Set("tok", Identity{UserID: 9})

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok", store.Token())
}

func TestPartialPersistFailureNeverLeavesMixedPair(t *testing.T) {
	for _, key := range []string{IdentityKey, TokenKey} {
		t.Run(key, func(t *testing.T) {
			mem := storage.NewMemory()
			NewStore(mem, logging.Discard()).Set("alice-token", Identity{UserID: 1001, Username: "alice"})

			store := NewStore(keyFailingStorage{Memory: mem, key: key}, logging.Discard())
			require.True(t, store.IsAuthenticated())
			store.Set("bob-token", Identity{UserID: 1002, Username: "bob"})
			assert.Equal(t, "bob-token", store.Token())

			restored := NewStore(mem, logging.Discard())
			assert.False(t, restored.IsAuthenticated())
			assert.Nil(t, restored.Get().Identity)
			_, err := mem.Load(TokenKey)
			assert.ErrorIs(t, err, storage.ErrNotFound)
			_, err = mem.Load(IdentityKey)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}
