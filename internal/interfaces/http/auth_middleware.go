package http

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/pkg/metrics"
)

// LocalPrincipal key en c.Locals del principal autenticado de la petición.
const LocalPrincipal = "principal"

// PrincipalResolver convierte un token en el principal vigente (*auth.Resolver).
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// OwnershipChecker verifica la propiedad de un recurso por (kind, id) (*auth.OwnershipGuard).
type OwnershipChecker interface {
	Check(ctx context.Context, p *auth.Principal, kind, id string) error
}

// ExtractToken obtiene el token: primero "Authorization: Bearer <token>", si no la cookie
// cookieName. domain.ErrTokenMissing si no hay ninguno.
func ExtractToken(c *fiber.Ctx, cookieName string) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token, nil
			}
		}
	}
	if cookieName != "" {
		if token := strings.TrimSpace(c.Cookies(cookieName)); token != "" {
			return token, nil
		}
	}
	return "", domain.ErrTokenMissing
}

// AuthMiddleware extrae y resuelve el token y deja el principal en c.Locals.
// Es el único punto por el que pasan todas las rutas protegidas.
func AuthMiddleware(resolver PrincipalResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractToken(c, cookieName)
		if err != nil {
			metrics.Rejected(metrics.StageAuthenticate, reasonCode(err))
			return err
		}
		p, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			metrics.Rejected(metrics.StageAuthenticate, reasonCode(err))
			return err
		}
		metrics.Admitted(metrics.StageAuthenticate)
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// GetPrincipal devuelve el principal de la petición (después de AuthMiddleware), o nil.
func GetPrincipal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(LocalPrincipal).(*auth.Principal)
	return p
}

// RequireRole permite el acceso solo a los roles indicados (admin pasa siempre).
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := aborted(c); err != nil {
			metrics.Rejected(metrics.StageAuthorize, reasonCode(err))
			return err
		}
		if err := auth.Require(GetPrincipal(c), roles...); err != nil {
			metrics.Rejected(metrics.StageAuthorize, reasonCode(err))
			return err
		}
		metrics.Admitted(metrics.StageAuthorize)
		return c.Next()
	}
}

// RequireOwnership verifica que el recurso kind con id en el parámetro param pertenece
// a la empresa del principal (admin pasa siempre). 404 si el recurso no existe.
func RequireOwnership(checker OwnershipChecker, kind, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := aborted(c); err != nil {
			metrics.Rejected(metrics.StageOwnership, reasonCode(err))
			return err
		}
		if err := checker.Check(c.UserContext(), GetPrincipal(c), kind, c.Params(param)); err != nil {
			metrics.Rejected(metrics.StageOwnership, reasonCode(err))
			return err
		}
		metrics.Admitted(metrics.StageOwnership)
		return c.Next()
	}
}

// aborted corta la cadena si la petición ya fue cancelada.
func aborted(c *fiber.Ctx) error {
	if err := c.UserContext().Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}
	return nil
}
