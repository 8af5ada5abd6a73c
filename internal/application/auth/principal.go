package auth

import (
	"github.com/google/uuid"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// Principal proyección de solo lectura del usuario autenticado en una petición.
// Se crea por petición y no se comparte ni se persiste.
type Principal struct {
	ID        string
	Name      string
	Email     string
	Role      entity.Role
	CompanyID string
}

// IsAdmin informa si el principal tiene rol admin.
func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

func principalFromUser(u *entity.User) Principal {
	return Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
}

// canonicalRef forma canónica de una referencia de empresa: los UUID se comparan
// en su representación estándar (minúsculas, con guiones); el resto tal cual.
func canonicalRef(ref string) string {
	if id, err := uuid.Parse(ref); err == nil {
		return id.String()
	}
	return ref
}
