package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/cache"
	"github.com/fastraven/fastraven/pkg/session"
)

func TestSessionAuthorization(t *testing.T) {
	t.Parallel()

	t.Run("new session is anonymous", func(t *testing.T) {
		t.Parallel()

		s := session.New(time.Hour)
		require.NotEmpty(t, s.ID)
		require.False(t, s.Authorized())
		require.True(t, s.IsNew())
		require.True(t, s.IsDirty())
	})

	t.Run("authorize sets all slots and rotates ID", func(t *testing.T) {
		t.Parallel()

		s := session.New(time.Hour)
		oldID := s.ID

		s.Authorize("user-1", "csrf-token", map[string]any{"role": "admin"})

		require.True(t, s.Authorized())
		require.NotEqual(t, oldID, s.ID)
		require.Equal(t, "user-1", s.UserID)
		require.Equal(t, "csrf-token", s.CSRFToken)
	})

	t.Run("authorize with nil data still counts as authorized", func(t *testing.T) {
		t.Parallel()

		s := session.New(time.Hour)
		s.Authorize("user-1", "csrf-token", nil)
		require.True(t, s.Authorized())
	})

	t.Run("partial slots are not authorized", func(t *testing.T) {
		t.Parallel()

		s := session.New(time.Hour)
		s.UserID = "user-1"
		require.False(t, s.Authorized())

		s.CSRFToken = "csrf-token"
		require.False(t, s.Authorized())

		s.Data = map[string]any{}
		require.True(t, s.Authorized())
	})

	t.Run("deauthorize clears slots and rotates ID", func(t *testing.T) {
		t.Parallel()

		s := session.New(time.Hour)
		s.Authorize("user-1", "csrf-token", nil)
		authedID := s.ID

		s.Deauthorize()

		require.False(t, s.Authorized())
		require.NotEqual(t, authedID, s.ID)
		require.Empty(t, s.UserID)
		require.Empty(t, s.CSRFToken)
		require.Nil(t, s.Data)
	})
}

func TestSessionValues(t *testing.T) {
	t.Parallel()

	s := session.New(time.Hour)
	s.ClearDirty()

	s.SetValue("theme", "dark")
	require.True(t, s.IsDirty())

	val, ok := s.GetValue("theme")
	require.True(t, ok)
	require.Equal(t, "dark", val)

	require.Equal(t, "dark", session.ValueOr(s, "theme", "light"))
	require.Equal(t, "light", session.ValueOr(s, "missing", "light"))
	require.Equal(t, 0, session.ValueOr(s, "theme", 0)) // type mismatch

	s.ClearDirty()
	s.DeleteValue("missing")
	require.False(t, s.IsDirty())
	s.DeleteValue("theme")
	require.True(t, s.IsDirty())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, func() session.Store { return session.NewMemoryStore() })
}

func TestCacheStore(t *testing.T) {
	t.Parallel()
	testStore(t, func() session.Store { return session.NewCacheStore(cache.NewMemory()) })
}

func testStore(t *testing.T, newStore func() session.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get round-trip", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		s := session.New(time.Hour)
		s.Authorize("user-1", "csrf-token", map[string]any{"role": "admin"})
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, s.ID, got.ID)
		require.Equal(t, "user-1", got.UserID)
		require.Equal(t, "csrf-token", got.CSRFToken)
		require.Equal(t, "admin", got.Data["role"])
	})

	t.Run("get missing returns not found", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("update follows ID rotation", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		s := session.New(time.Hour)
		require.NoError(t, store.Create(ctx, s))
		prevID := s.ID

		s.Authorize("user-1", "csrf-token", nil)
		require.NoError(t, store.Update(ctx, prevID, s))

		_, err := store.Get(ctx, prevID)
		require.ErrorIs(t, err, session.ErrNotFound)

		got, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, got.Authorized())
	})

	t.Run("delete removes session", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		s := session.New(time.Hour)
		require.NoError(t, store.Create(ctx, s))
		require.NoError(t, store.Delete(ctx, s.ID))

		_, err := store.Get(ctx, s.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("delete by user removes all user sessions", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		first := session.New(time.Hour)
		first.Authorize("user-1", "csrf-a", nil)
		second := session.New(time.Hour)
		second.Authorize("user-1", "csrf-b", nil)
		other := session.New(time.Hour)
		other.Authorize("user-2", "csrf-c", nil)

		require.NoError(t, store.Create(ctx, first))
		require.NoError(t, store.Create(ctx, second))
		require.NoError(t, store.Create(ctx, other))

		require.NoError(t, store.DeleteByUserID(ctx, "user-1"))

		_, err := store.Get(ctx, first.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
		_, err = store.Get(ctx, second.ID)
		require.ErrorIs(t, err, session.ErrNotFound)

		_, err = store.Get(ctx, other.ID)
		require.NoError(t, err)
	})

	t.Run("touch updates last active", func(t *testing.T) {
		t.Parallel()
		store := newStore()

		s := session.New(time.Hour)
		require.NoError(t, store.Create(ctx, s))

		later := time.Now().Add(10 * time.Minute)
		require.NoError(t, store.Touch(ctx, s.ID, later))

		got, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		require.WithinDuration(t, later, got.LastActiveAt, time.Second)
	})
}
