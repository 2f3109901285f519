package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`           // время создания
	UpdatedAt    time.Time  `json:"updated_at"`           // время последнего обновления
	LastLogin    *time.Time `json:"last_login,omitempty"` // время последнего входа
	DeletedAt    *time.Time `json:"-"`                    // tombstone, пользователь не удаляется физически
	ID           string     `json:"id"`                   // UUID пользователя
	Email        string     `json:"email"`                // уникальный email
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"` // bcrypt хеш пароля, наружу не отдается
}

// RefreshToken представляет запись refresh token пользователя.
// Сам токен не хранится, только его SHA-256 хеш.
type RefreshToken struct {
	CreatedAt time.Time  `json:"created_at"`           // время создания
	ExpiresAt time.Time  `json:"expires_at"`           // время истечения
	RevokedAt *time.Time `json:"revoked_at,omitempty"` // время отзыва (ротация или logout)
	ID        string     `json:"id"`                   // UUID записи
	UserID    string     `json:"user_id"`              // ID пользователя
	TokenHash string     `json:"token_hash"`           // hex SHA-256 подписанного токена
	IsRevoked bool       `json:"is_revoked"`
}
