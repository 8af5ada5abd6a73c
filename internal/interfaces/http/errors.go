package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/pkg/logger"
)

// errInvalidBody cuerpo JSON ilegible.
var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")

// apiError clasificación de un error para la respuesta HTTP.
type apiError struct {
	status  int
	code    string
	message string
	// auth rechazo del pipeline de autenticación/autorización (se loguea en warn).
	auth bool
}

// tabla de errores de dominio → respuesta. El orden importa: se usa el primero que matchea.
var domainErrors = []struct {
	err error
	apiError
}{
	{domain.ErrTokenMissing, apiError{fiber.StatusUnauthorized, "TOKEN_MISSING", "token no proporcionado", true}},
	{domain.ErrMalformedToken, apiError{fiber.StatusUnauthorized, "MALFORMED_TOKEN", "token malformado", true}},
	{domain.ErrInvalidSignature, apiError{fiber.StatusUnauthorized, "INVALID_SIGNATURE", "firma del token inválida", true}},
	{domain.ErrTokenExpired, apiError{fiber.StatusUnauthorized, "TOKEN_EXPIRED", "token expirado", true}},
	{domain.ErrPrincipalNotFound, apiError{fiber.StatusUnauthorized, "PRINCIPAL_NOT_FOUND", "el usuario del token no existe", true}},
	{domain.ErrAccountDisabled, apiError{fiber.StatusUnauthorized, "ACCOUNT_DISABLED", "cuenta desactivada", true}},
	{domain.ErrUnauthenticated, apiError{fiber.StatusUnauthorized, "UNAUTHENTICATED", "autenticación requerida", true}},
	{domain.ErrForbidden, apiError{fiber.StatusForbidden, "FORBIDDEN", "no tiene permiso para esta operación", true}},
	{domain.ErrResourceNotFound, apiError{fiber.StatusNotFound, "RESOURCE_NOT_FOUND", "recurso no encontrado", true}},
	{domain.ErrResolverUnavailable, apiError{fiber.StatusServiceUnavailable, "RESOLVER_UNAVAILABLE", "servicio de identidad no disponible, intente más tarde", true}},
	{domain.ErrInvalidCredentials, apiError{fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "credenciales inválidas", false}},
	{domain.ErrEmailAlreadyExists, apiError{fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado", false}},
	{domain.ErrDuplicate, apiError{fiber.StatusConflict, "DUPLICATE", "ya existe un recurso con esos datos", false}},
	{domain.ErrImmutableField, apiError{fiber.StatusBadRequest, "CNPJ_IMMUTABLE", "el CNPJ no se puede modificar", false}},
	{domain.ErrInvalidInput, apiError{fiber.StatusBadRequest, "INVALID_INPUT", "entrada inválida", false}},
	{domain.ErrNotFound, apiError{fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado", false}},
}

// tokenShapeCodes errores de token que en producción se presentan como INVALID_TOKEN.
var tokenShapeCodes = map[string]bool{
	"MALFORMED_TOKEN":   true,
	"INVALID_SIGNATURE": true,
	"TOKEN_EXPIRED":     true,
}

func classify(err error) apiError {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.apiError
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apiError{status: fe.Code, code: fiberErrorCode(fe.Code), message: fe.Message}
	}
	return apiError{status: fiber.StatusInternalServerError, code: "INTERNAL", message: "error interno"}
}

// reasonCode código interno (sin colapsar) de un error; se usa en logs y métricas.
func reasonCode(err error) string {
	return classify(err).code
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	default:
		return "HTTP_ERROR"
	}
}

// ErrorHandler único traductor error → respuesta HTTP. Ninguna etapa anterior escribe
// cuerpos de error. Con production=true los errores de forma del token se devuelven como
// INVALID_TOKEN con un mensaje genérico; el motivo real queda en el log.
func ErrorHandler(log *logger.Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verr *dto.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "datos de entrada inválidos", Fields: verr.Fields,
			})
		}

		ae := classify(err)
		switch {
		case ae.status >= fiber.StatusInternalServerError:
			log.Error().Err(err).Str("code", ae.code).Str("method", c.Method()).Str("path", c.Path()).Msg("error en petición")
		case ae.auth:
			log.Warn().Err(err).Str("reason", ae.code).Str("method", c.Method()).Str("path", c.Path()).
				Str("ip", c.IP()).Msg("petición rechazada")
		}

		code, message := ae.code, ae.message
		if production && tokenShapeCodes[code] {
			code, message = "INVALID_TOKEN", "token inválido o expirado"
		}
		return c.Status(ae.status).JSON(dto.ErrorResponse{Code: code, Message: message})
	}
}
