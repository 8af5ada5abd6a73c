package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Role es el claim de rol de un usuario. Conjunto cerrado: admin, user.
type Role string

// Roles válidos para User.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole convierte un string en Role. ok=false si no es un rol reconocido.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// User representa un usuario del sistema (pertenece a exactamente una Company).
type User struct {
	ID           string
	CompanyID    string
	Name         string
	Email        string // normalizado, único
	PasswordHash string // bcrypt; nunca sale en una respuesta
	Role         Role
	Active       bool
	CreatedAt    time.Time // inmutable una vez persistido
	UpdatedAt    time.Time
}

// NormalizeEmail deja el email en su forma canónica (NFC, sin espacios, case-folded).
// El Caser no es seguro entre goroutines, por eso se crea en cada llamada.
func NormalizeEmail(email string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(email)))
}
