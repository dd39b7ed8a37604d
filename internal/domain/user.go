package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Papéis de acesso ao dashboard
const (
	RoleAdmin     = 1
	RoleMarketing = 2
	RoleFinance   = 3
)

var roleNames = map[int]string{
	RoleAdmin:     "admin",
	RoleMarketing: "marketing",
	RoleFinance:   "finance",
}

// RoleName retorna o nome do papel para exibição; "unknown" quando o ID
// não é reconhecido.
func RoleName(roleID int) string {
	if name, ok := roleNames[roleID]; ok {
		return name
	}
	return "unknown"
}

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Lastname     string     `json:"lastname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password"`
	Active       bool       `json:"active"`
	RoleID       int        `json:"role_id"`
	Deleted      bool       `json:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type UpdateUserRequest struct {
	ID       int     `json:"id"`
	Name     *string `json:"name"`
	Lastname *string `json:"lastname"`
	Email    *string `json:"email"`
	Active   *bool   `json:"active"`
	RoleID   *int    `json:"role_id"`
	Deleted  *bool   `json:"deleted"`
}

type Claims struct {
	UserID       int
	UserName     string
	UserLastname string
	UserEmail    string
	UserActive   bool
	UserRoleID   int
	jwt.RegisteredClaims
}
