package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/application/usecase"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	CompanyUC *usecase.CompanyUseCase
	CouponUC  *usecase.CouponUseCase
	Resolver  PrincipalResolver
	Ownership OwnershipChecker
	// CookieName cookie de sesión aceptada como alternativa al header Authorization.
	CookieName   string
	SecureCookie bool
}

// Router registra las rutas de la API bajo /api/v1.
// Las rutas protegidas encadenan AuthMiddleware → RequireRole/RequireOwnership → handler;
// las públicas no pasan por el pipeline de autenticación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")

	authn := AuthMiddleware(deps.Resolver, deps.CookieName)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, SessionCookie{Name: deps.CookieName, Secure: deps.SecureCookie})
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)
	api.Get("/auth/me", authn, authHandler.Me)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	api.Get("/users", authn, userHandler.List)

	// Companies (stats antes de /:id)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Get("/companies", companyHandler.List)
	api.Get("/companies/stats", authn, adminOnly, companyHandler.Stats)
	api.Get("/companies/:id", companyHandler.GetByID)
	api.Post("/companies", authn, adminOnly, companyHandler.Create)
	api.Put("/companies/:id", authn, RequireOwnership(deps.Ownership, entity.ResourceCompany, "id"), companyHandler.Update)
	api.Delete("/companies/:id", authn, adminOnly, companyHandler.Deactivate)

	// Coupons
	couponHandler := NewCouponHandler(deps.CouponUC)
	api.Get("/coupons", couponHandler.List)
	api.Get("/coupons/expiring", couponHandler.Expiring)
	api.Get("/coupons/company/:companyId", couponHandler.ByCompany)
	api.Get("/coupons/:id", couponHandler.GetByID)
	api.Get("/coupons/:id/voucher", couponHandler.Voucher)
	api.Post("/coupons", authn, couponHandler.Create)
	api.Put("/coupons/:id", authn, RequireOwnership(deps.Ownership, entity.ResourceCoupon, "id"), couponHandler.Update)
	api.Delete("/coupons/:id", authn, RequireOwnership(deps.Ownership, entity.ResourceCoupon, "id"), couponHandler.Delete)
}
