package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email     string `json:"email"`      // уникальный email, сравнивается точно
	FirstName string `json:"first_name"` // имя
	LastName  string `json:"last_name"`  // фамилия
	Password  string `json:"password"`   // пароль в открытом виде, хранится только bcrypt хеш
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest представляет запрос на ротацию refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest представляет запрос на отзыв refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public part of a user.
type UserResponse struct {
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	RefreshExpiresAt time.Time `json:"refresh_expires_at"` // время истечения refresh token
	AccessToken      string    `json:"access_token"`       // JWT access token
	RefreshToken     string    `json:"refresh_token"`      // JWT refresh token
	ExpiresIn        int64     `json:"expires_in"`         // время жизни access token в секундах
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// MessageResponse представляет ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
}
