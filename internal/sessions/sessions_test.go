package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/token"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// fakeStore — хранилище в памяти с семантикой cache.Cache.
type fakeStore struct {
	values map[string][]byte
	lists  map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values: make(map[string][]byte),
		lists:  make(map[string][]string),
	}
}

func (f *fakeStore) Get(_ context.Context, key string, result any) (bool, error) {
	raw, ok := f.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	return nil
}

func (f *fakeStore) Invalidate(_ context.Context, key string) error {
	delete(f.values, key)
	delete(f.lists, key)
	return nil
}

func (f *fakeStore) PushList(_ context.Context, key, value string, _ time.Duration) error {
	f.lists[key] = append(f.lists[key], value)
	return nil
}

func (f *fakeStore) DrainList(_ context.Context, key string) ([]string, error) {
	items := f.lists[key]
	delete(f.lists, key)
	return items, nil
}

func newManager(store Store) *Manager {
	return New(store, token.NewMaker("test-secret", time.Hour), time.Hour, false)
}

func requestWithCookie(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestStartAndResolve(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newManager(store)

	identity := models.Identity{UserID: 42, Email: "user@example.com", Role: models.RoleUser}

	w := httptest.NewRecorder()
	sid, err := manager.Start(ctx, w, identity)
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEqual(t, sid, cookies[0].Value, "cookie несет подписанный токен, не сырой идентификатор")

	resolved, gotSID, err := manager.Resolve(ctx, requestWithCookie(w))
	require.NoError(t, err)
	assert.Equal(t, identity, *resolved)
	assert.Equal(t, sid, gotSID)
}

func TestResolveFailures(t *testing.T) {
	ctx := context.Background()
	manager := newManager(newFakeStore())

	t.Run("без cookie", func(t *testing.T) {
		_, _, err := manager.Resolve(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Error(t, err)
	})

	t.Run("мусор вместо токена", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		_, _, err := manager.Resolve(ctx, req)
		assert.Error(t, err)
	})

	t.Run("валидный токен без серверной записи", func(t *testing.T) {
		store := newFakeStore()
		manager := newManager(store)

		w := httptest.NewRecorder()
		sid, err := manager.Start(ctx, w, models.Identity{UserID: 1, Role: models.RoleUser})
		require.NoError(t, err)

		// Серверная запись умерла, токен еще жив
		require.NoError(t, store.Invalidate(ctx, "session:"+sid))

		_, _, err = manager.Resolve(ctx, requestWithCookie(w))
		assert.Error(t, err)
	})
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	manager := newManager(store)

	w := httptest.NewRecorder()
	_, err := manager.Start(ctx, w, models.Identity{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	req := requestWithCookie(w)

	w2 := httptest.NewRecorder()
	manager.Destroy(ctx, w2, req)

	cookies := w2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, _, err = manager.Resolve(ctx, req)
	assert.Error(t, err, "после Destroy сессия не разрешается")
}

func TestFlashes(t *testing.T) {
	ctx := context.Background()
	manager := newManager(newFakeStore())

	require.NoError(t, manager.Flash(ctx, "sid-1", FlashSuccess, "saved"))
	require.NoError(t, manager.Flash(ctx, "sid-1", FlashDanger, "failed"))

	flashes := manager.Flashes(ctx, "sid-1")
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Level: FlashSuccess, Message: "saved"}, flashes[0])
	assert.Equal(t, Flash{Level: FlashDanger, Message: "failed"}, flashes[1])

	// Сообщения одноразовые
	assert.Empty(t, manager.Flashes(ctx, "sid-1"))
}
