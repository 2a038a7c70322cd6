// Package token реализует подпись и разбор сессионных JWT-токенов.
//
// Токен связывает cookie браузера с серверной записью сессии: в claims
// хранятся только идентификатор сессии и роль, сами данные пользователя
// лежат в redis.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims описывает данные, хранящиеся в сессионном JWT.
type SessionClaims struct {
	SessionID            string `json:"sid"`  // Идентификатор серверной сессии
	Role                 string `json:"role"` // Роль идентичности (user или admin)
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и разбора сессионных токенов.
type Maker interface {
	// GenerateToken создаёт токен для сессии с указанной ролью.
	GenerateToken(sessionID, role string) (string, error)
	// ParseToken возвращает *SessionClaims, если токен корректен.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// GenerateToken создает JWT с заданными sessionID и role, подписывая его секретным ключом.
func (m *MakerImpl) GenerateToken(sessionID, role string) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ParseToken парсит JWT, проверяет его подпись и срок действия,
// возвращает SessionClaims, если токен корректен.
func (m *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "token.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
