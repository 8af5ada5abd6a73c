package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	"github.com/jhoicas/cupones-api/docs"
	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/application/usecase"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
	"github.com/jhoicas/cupones-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/cupones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cupones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/cupones-api/internal/interfaces/http"
	"github.com/jhoicas/cupones-api/pkg/config"
	"github.com/jhoicas/cupones-api/pkg/jwt"
	"github.com/jhoicas/cupones-api/pkg/logger"
)

// stores repos del driver elegido (DB_DRIVER).
type stores struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	coupons   repository.CouponRepository
	owners    repository.OwnerRepository
	tx        usecase.CatalogTxRunner
	close     func()
}

func openStores(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		m := memory.New()
		return &stores{
			users: m.Users(), companies: m.Companies(), coupons: m.Coupons(), owners: m.Owners(),
			tx: m, close: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		users:     postgres.NewUserRepository(pool),
		companies: postgres.NewCompanyRepository(pool),
		coupons:   postgres.NewCouponRepository(pool),
		owners:    postgres.NewOwnerRepository(pool),
		tx:        postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	tokens, err := jwt.NewService(jwt.Config{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("servicio de tokens")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	authUC := auth.NewAuthUseCase(st.users, st.companies, tokens)
	resolver := auth.NewResolver(tokens, st.users, cfg.Auth.LookupTimeout)
	ownership := auth.NewOwnershipGuard(st.owners, cfg.Auth.LookupTimeout)

	userUC := usecase.NewUserUseCase(st.users)
	companyUC := usecase.NewCompanyUseCase(st.companies, st.tx)
	// PDF: comprobante imprimible del cupón
	couponUC := usecase.NewCouponUseCase(st.coupons, st.companies, infrapdf.NewMarotoVoucherGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log, cfg.App.IsProduction()),
	})
	app.Use(httpRouter.RequestLogger(log))
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: cfg.HTTP.CORSOrigins != "*",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.HTTP.RateLimitMax,
		Expiration: cfg.HTTP.RateLimitWindow,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "Cupones API",
		}))
	} else {
		log.Warn().Str("path", cfg.HTTP.DocsPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}
		c.Type("json")
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		CompanyUC:    companyUC,
		CouponUC:     couponUC,
		Resolver:     resolver,
		Ownership:    ownership,
		CookieName:   cfg.JWT.CookieName,
		SecureCookie: cfg.App.IsProduction(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
