package http_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	apphttp "github.com/jhoicas/cupones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/cupones-api/pkg/jwt"
	"github.com/jhoicas/cupones-api/pkg/logger"
)

// stubResolver resolver fijo para probar el middleware sin almacén.
type stubResolver struct {
	p   *auth.Principal
	err error
}

func (s stubResolver) Resolve(context.Context, string) (*auth.Principal, error) {
	return s.p, s.err
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver el token y cargar el principal
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(resolver apphttp.PrincipalResolver, allowedRoles ...entity.Role) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop(), false)})
	app.Get("/protected",
		apphttp.AuthMiddleware(resolver, "token"),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			p := apphttp.GetPrincipal(c)
			return c.JSON(fiber.Map{"ok": true, "role": p.Role})
		},
	)
	return app
}

func get(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// ExtractToken
// ──────────────────────────────────────────────────────────────────────────────

func TestExtractToken_HeaderAntesQueCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/tok", func(c *fiber.Ctx) error {
		tok, err := apphttp.ExtractToken(c, "token")
		if errors.Is(err, domain.ErrTokenMissing) {
			return c.SendString("<missing>")
		}
		return c.SendString(tok)
	})

	cases := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"solo header", "Bearer abc", "", "abc"},
		{"esquema en minúsculas", "bearer abc", "", "abc"},
		{"solo cookie", "", "xyz", "xyz"},
		{"header gana", "Bearer abc", "xyz", "abc"},
		{"esquema no Bearer cae a cookie", "Basic dXNlcjpwYXNz", "xyz", "xyz"},
		{"Bearer vacío cae a cookie", "Bearer   ", "xyz", "xyz"},
		{"nada", "", "", "<missing>"},
		{"esquema no Bearer sin cookie", "Token abc", "", "<missing>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tok", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(body))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: cada rechazo con su código
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CodigosDeRechazo(t *testing.T) {
	env := newTestEnv(t, false)
	_, disabledTok := env.addUser(t, companyX, entity.RoleUser, false)
	ghostTok, err := env.tokens.Issue(uuid.New().String(), "user")
	require.NoError(t, err)

	other, err := pkgjwt.NewService(pkgjwt.Config{Secret: "otro-secret-completamente-distinto"})
	require.NoError(t, err)
	forged, err := other.Issue(uuid.New().String(), "admin")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		code  string
	}{
		{"sin token", "", "TOKEN_MISSING"},
		{"malformado", "token.invalido", "MALFORMED_TOKEN"},
		{"firma inválida", forged, "INVALID_SIGNATURE"},
		{"usuario inexistente", ghostTok, "PRINCIPAL_NOT_FOUND"},
		{"cuenta desactivada", disabledTok, "ACCOUNT_DISABLED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", tc.token, nil), http.StatusUnauthorized, tc.code)
		})
	}
}

// En producción los errores de forma del token se presentan como INVALID_TOKEN.
func TestAuthMiddleware_ProduccionColapsaErroresDeToken(t *testing.T) {
	env := newTestEnv(t, true)
	_, tok := env.addUser(t, companyX, entity.RoleUser, true)
	ghostTok, err := env.tokens.Issue(uuid.New().String(), "user")
	require.NoError(t, err)

	assertError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", "a.b.c", nil), http.StatusUnauthorized, "INVALID_TOKEN")
	assertError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", ghostTok, nil), http.StatusUnauthorized, "PRINCIPAL_NOT_FOUND")

	*env.clock = env.clock.Add(2 * time.Hour)
	assertError(t, env.do(t, http.MethodGet, "/api/v1/auth/me", tok, nil), http.StatusUnauthorized, "INVALID_TOKEN")
}

// Fallo del almacén: 503, no 401.
func TestAuthMiddleware_ResolverNoDisponible_Retorna503(t *testing.T) {
	app := buildTestApp(stubResolver{err: fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, context.DeadlineExceeded)})
	assertError(t, get(t, app, "/protected", "Bearer x.y.z"), http.StatusServiceUnavailable, "RESOLVER_UNAVAILABLE")
}

// Error inesperado: 500 genérico, sin detalles internos.
func TestAuthMiddleware_ErrorInesperado_Retorna500(t *testing.T) {
	app := buildTestApp(stubResolver{err: errors.New("pq: connection reset")})
	resp := get(t, app, "/protected", "Bearer x.y.z")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "INTERNAL", body["code"])
	assert.NotContains(t, body["message"], "pq:")
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El usuario tiene el rol requerido → debe pasar (HTTP 200).
func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(stubResolver{p: &auth.Principal{ID: "u1", Role: entity.RoleAdmin, CompanyID: companyX}}, entity.RoleAdmin)
	resp := get(t, app, "/protected", "Bearer x.y.z")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin debe poder acceder a ruta restringida a admin")

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

// Caso 1b: admin pasa aunque la ruta solo nombre a user.
func TestRequireRole_AdminPasaRutaDeUser(t *testing.T) {
	app := buildTestApp(stubResolver{p: &auth.Principal{ID: "u1", Role: entity.RoleAdmin}}, entity.RoleUser)
	resp := get(t, app, "/protected", "Bearer x.y.z")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: El usuario tiene un rol diferente al requerido → HTTP 403 Forbidden.
func TestRequireRole_UserBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(stubResolver{p: &auth.Principal{ID: "u1", Role: entity.RoleUser}}, entity.RoleAdmin)
	assertError(t, get(t, app, "/protected", "Bearer x.y.z"), http.StatusForbidden, "FORBIDDEN")
}

// Caso 3: sin lista de roles basta con estar autenticado.
func TestRequireRole_SinRolesSoloAutenticacion(t *testing.T) {
	app := buildTestApp(stubResolver{p: &auth.Principal{ID: "u1", Role: entity.RoleUser}})
	resp := get(t, app, "/protected", "Bearer x.y.z")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 4: RequireRole sin AuthMiddleware delante → 401, nunca 403.
func TestRequireRole_SinPrincipal_Retorna401(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop(), false)})
	app.Get("/admin", apphttp.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	assertError(t, get(t, app, "/admin", ""), http.StatusUnauthorized, "UNAUTHENTICATED")
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireOwnership
// ──────────────────────────────────────────────────────────────────────────────

// stubOwnership registra las llamadas y devuelve un error fijo.
type stubOwnership struct {
	calls *int
	err   error
}

func (s stubOwnership) Check(_ context.Context, _ *auth.Principal, kind, id string) error {
	*s.calls++
	if kind != entity.ResourceCoupon || id != "c1" {
		return domain.ErrResourceNotFound
	}
	return s.err
}

func TestRequireOwnership_DelegaEnChecker(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"dueño", nil, http.StatusOK},
		{"otra empresa", domain.ErrForbidden, http.StatusForbidden},
		{"inexistente", domain.ErrResourceNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop(), false)})
			app.Delete("/coupons/:id",
				apphttp.AuthMiddleware(stubResolver{p: &auth.Principal{ID: "u1", Role: entity.RoleUser, CompanyID: companyX}}, "token"),
				apphttp.RequireOwnership(stubOwnership{calls: &calls, err: tc.err}, entity.ResourceCoupon, "id"),
				func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)
			req := httptest.NewRequest(http.MethodDelete, "/coupons/c1", nil)
			req.Header.Set("Authorization", "Bearer x.y.z")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, 1, calls)
		})
	}
}
