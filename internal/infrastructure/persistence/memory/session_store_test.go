package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/repository"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour, time.Hour)

	sess := entity.NewSession("s1")
	require.NoError(t, store.Create(ctx, sess))
	assert.Error(t, store.Create(ctx, sess), "duplicate id")

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	got.Preview.Text = "draft"
	_, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	fresh, _ := store.Get(ctx, "s1")
	assert.Empty(t, fresh.Preview.Text, "returned sessions are copies")

	require.NoError(t, store.Save(ctx, got))
	fresh, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "draft", fresh.Preview.Text)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "s1"), repository.ErrSessionNotFound)
	assert.ErrorIs(t, store.Save(ctx, got), repository.ErrSessionNotFound)
}

func TestSessionStore_Expires(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(20*time.Millisecond, time.Hour)

	require.NoError(t, store.Create(ctx, entity.NewSession("short")))
	time.Sleep(40 * time.Millisecond)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionStore_UpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Hour, time.Hour)
	require.NoError(t, store.Create(ctx, entity.NewSession("s1")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "s1", func(sess *entity.Session) error {
				sess.Pages = append(sess.Pages, entity.Page{ID: "p", Image: "http://img", Text: "t"})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Pages, 20)

	boom := errors.New("boom")
	_, err = store.Update(ctx, "s1", func(sess *entity.Session) error {
		sess.Pages = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, _ = store.Get(ctx, "s1")
	assert.Len(t, got.Pages, 20, "failed update writes nothing")

	_, err = store.Update(ctx, "missing", func(*entity.Session) error { return nil })
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
