package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrImmutableField     = errors.New("campo inmutable")
)

// Errores del pipeline de autenticación/autorización.
// Todos son terminales para la petición en curso; ninguno se reintenta.
var (
	ErrTokenMissing        = errors.New("token no proporcionado")
	ErrMalformedToken      = errors.New("token malformado")
	ErrInvalidSignature    = errors.New("firma del token inválida")
	ErrTokenExpired        = errors.New("token expirado")
	ErrPrincipalNotFound   = errors.New("usuario del token no encontrado")
	ErrAccountDisabled     = errors.New("cuenta desactivada")
	ErrUnauthenticated     = errors.New("autenticación requerida")
	ErrForbidden           = errors.New("acceso denegado")
	ErrResourceNotFound    = errors.New("recurso protegido no encontrado")
	ErrResolverUnavailable = errors.New("almacén de identidades no disponible")
)
