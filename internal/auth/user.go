package auth

import "time"

// User учётная запись редактора. Администратор дополнительно
// управляет webhook'ами.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
	IsAdmin      bool      `json:"is_admin"`
}
