package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/pkg/jwt"
)

// DefaultLookupTimeout límite por defecto para cargar el usuario del token.
const DefaultLookupTimeout = 3 * time.Second

// TokenVerifier verifica la firma y vigencia de un token (pkg/jwt.Service).
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// PrincipalFinder carga un usuario por id sin el hash de password.
// Devuelve (nil, nil) si no existe.
type PrincipalFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// Resolver convierte un token en el Principal de la petición:
// verificación del token, carga del usuario y comprobación de que está activo.
type Resolver struct {
	tokens  TokenVerifier
	users   PrincipalFinder
	timeout time.Duration
}

// NewResolver construye el resolver. timeout <= 0 usa DefaultLookupTimeout.
func NewResolver(tokens TokenVerifier, users PrincipalFinder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Resolver{tokens: tokens, users: users, timeout: timeout}
}

// Resolve verifica el token y carga el principal vigente.
// El rol usado aguas abajo es el almacenado; el del token solo debe ser un rol conocido.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.ErrTokenMissing
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, tokenError(err)
	}
	if _, ok := entity.ParseRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrMalformedToken, claims.Role)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	user, err := r.users.FindByID(lookupCtx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}
	// La petición pudo cancelarse durante la consulta.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}
	p := principalFromUser(user)
	return &p, nil
}

// tokenError traduce los errores de pkg/jwt a la taxonomía de dominio.
func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrInvalidSignature):
		return domain.ErrInvalidSignature
	case errors.Is(err, jwt.ErrMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
