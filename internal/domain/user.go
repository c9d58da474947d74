package domain

import "time"

// Role — роль пользователя.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// User описывает учётную запись.
// Пароль хранится только в виде bcrypt-хэша.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(username, passwordHash string, role Role) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
