package auth

import (
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// Require decide si el principal puede acceder a una ruta restringida a allowed.
// Sin principal: ErrUnauthenticated. admin pasa siempre. Sin roles declarados basta
// con estar autenticado.
func Require(p *Principal, allowed ...entity.Role) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if p.IsAdmin() || len(allowed) == 0 {
		return nil
	}
	for _, r := range allowed {
		if p.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}
