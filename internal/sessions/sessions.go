// Package sessions реализует серверные сессии поверх redis.
//
// Cookie браузера несёт только подписанный JWT с идентификатором сессии;
// сама идентичность пользователя хранится в redis и умирает вместе с
// записью. Пакет также хранит flash-сообщения, отображаемые один раз
// на следующей странице.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/expense-tracker/internal/cache"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/token"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// CookieName — имя сессионной cookie.
const CookieName = "session"

// Уровни flash-сообщений, используются как CSS-классы в шаблонах.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Flash — одноразовое сообщение для следующей отрисованной страницы.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Record — серверная запись сессии, хранимая в redis.
type Record struct {
	Identity  models.Identity `json:"identity"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store описывает методы key-value хранилища, нужные менеджеру сессий.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
	PushList(ctx context.Context, key, value string, expiration time.Duration) error
	DrainList(ctx context.Context, key string) ([]string, error)
}

// Manager создает, разрешает и уничтожает сессии.
type Manager struct {
	store  Store
	maker  token.Maker
	ttl    time.Duration
	secure bool
}

// New создает менеджер сессий.
func New(store Store, maker token.Maker, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		maker:  maker,
		ttl:    ttl,
		secure: secure,
	}
}

var _ Store = (*cache.Cache)(nil)

func sessionKey(id string) string { return "session:" + id }
func flashKey(id string) string   { return "flash:" + id }

// Start открывает новую сессию для идентичности и устанавливает cookie.
// Возвращает идентификатор сессии.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, identity models.Identity) (string, error) {
	const op = "sessions.Start"

	sid := uuid.NewString()
	record := Record{Identity: identity, CreatedAt: time.Now().UTC()}
	if err := m.store.Set(ctx, sessionKey(sid), record, m.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	signed, err := m.maker.GenerateToken(sid, identity.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// Resolve извлекает идентичность текущего запроса: cookie -> JWT -> redis.
// Возвращает идентичность и идентификатор сессии.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*models.Identity, string, error) {
	const op = "sessions.Resolve"

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, "", fmt.Errorf("%s: no session cookie", op)
	}
	claims, err := m.maker.ParseToken(cookie.Value)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	var record Record
	found, err := m.store.Get(ctx, sessionKey(claims.SessionID), &record)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, "", fmt.Errorf("%s: session expired", op)
	}
	return &record.Identity, claims.SessionID, nil
}

// Destroy безусловно удаляет серверную запись сессии и очищает cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		if claims, err := m.maker.ParseToken(cookie.Value); err == nil {
			_ = m.store.Invalidate(ctx, sessionKey(claims.SessionID))
			_ = m.store.Invalidate(ctx, flashKey(claims.SessionID))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash откладывает одноразовое сообщение для сессии.
func (m *Manager) Flash(ctx context.Context, sid, level, message string) error {
	const op = "sessions.Flash"
	raw, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return m.store.PushList(ctx, flashKey(sid), string(raw), m.ttl)
}

// Flashes забирает и удаляет накопленные сообщения сессии.
func (m *Manager) Flashes(ctx context.Context, sid string) []Flash {
	raws, err := m.store.DrainList(ctx, flashKey(sid))
	if err != nil {
		return nil
	}
	var result []Flash
	for _, raw := range raws {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			result = append(result, f)
		}
	}
	return result
}
