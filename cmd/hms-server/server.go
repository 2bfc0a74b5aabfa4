package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/administration"
	"github.com/hms/hms/internal/domain/clinical"
	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/domain/pharmacy"
	"github.com/hms/hms/internal/domain/reception"
	"github.com/hms/hms/internal/domain/selfservice"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/metrics"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/session"
	"github.com/hms/hms/internal/platform/settings"
	"github.com/hms/hms/migrations"
)

const version = "0.1.0"

// app holds everything the HTTP surface is built from. pool and redis are nil
// in memory-only mode.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    *hospital.Store
	sessions *session.Manager
	hasher   *auth.PasswordHasher
	metrics  *metrics.Collector
	pool     *pgxpool.Pool
	redis    *redis.Client
	now      func() time.Time
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// openApp connects the optional backing services and loads the store. With
// migrate set, pending schema migrations run before the staff roster loads.
func openApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, migrate bool) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		hasher:  auth.NewPasswordHasher(cfg.BcryptCost),
		metrics: metrics.New(),
		now:     time.Now,
	}

	var st settings.Store = settings.NewMemoryStore(cfg.DefaultHospitalName)
	if cfg.RedisURL != "" {
		client, err := settings.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		st = settings.NewRedisStore(client, cfg.DefaultHospitalName)
		logger.Info().Msg("connected to redis")
	}

	opts := []hospital.Option{
		hospital.WithLogger(logger),
		hospital.WithSeed(initialSeed(cfg.SeedData)),
	}
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		a.pool = pool
		logger.Info().Msg("connected to database")

		if migrate {
			n, err := db.NewMigrator(pool, migrations.FS).Up(ctx, "public")
			if err != nil {
				a.close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Int("applied", n).Msg("migrations complete")
		}
		opts = append(opts, hospital.WithStaffPersister(hospital.NewStaffPersisterPG(pool)))
	}

	a.store = hospital.NewStore(opts...)
	if err := a.store.LoadStaff(ctx); err != nil {
		a.close()
		return nil, err
	}

	key, generated, err := cfg.SigningKey()
	if err != nil {
		a.close()
		return nil, err
	}
	if generated {
		logger.Warn().Msg("SESSION_SIGNING_KEY not set; using a random key, sessions end on restart")
	}
	a.sessions = session.NewManager(a.store, st, a.hasher,
		session.Config{SigningKey: key, TTL: cfg.SessionTTL},
		session.WithLogger(logger),
		session.WithMetrics(a.metrics),
	)
	return a, nil
}

// initialSeed returns the fixed demo data. Without it only the staff roster
// and wards are loaded so somebody can still sign in.
func initialSeed(full bool) hospital.Seed {
	seed := hospital.DefaultSeed()
	if full {
		return seed
	}
	return hospital.Seed{Staff: seed.Staff, Wards: seed.Wards}
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) pinger() db.Pinger {
	if a.pool == nil {
		return nil
	}
	return a.pool
}

// newServer builds the echo instance with the full middleware chain and every
// route group mounted.
func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "8M"))
	e.Use(middleware.RequestTimeout(a.cfg.RequestTimeout))
	e.Use(a.metrics.Middleware())
	e.Use(middleware.Audit(a.logger, middleware.StoreRecorder(a.store, a.metrics)))
	e.Use(auth.SessionMiddleware(a.sessions, auth.AuthSkipper))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(a.pinger()))
	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))

	api := e.Group("/api/v1")

	throttle := middleware.LoginThrottleConfig{
		AttemptsPerMinute: a.cfg.LoginPerMinute,
		Burst:             a.cfg.LoginBurst,
	}
	session.NewHandler(a.sessions, throttle).RegisterRoutes(api)
	auth.NewNavigationHandler().RegisterRoutes(api)
	selfservice.NewHandler(a.store, a.now).RegisterRoutes(api)
	reception.NewHandler(a.store, a.metrics).RegisterRoutes(api)
	clinical.NewHandler(a.store).RegisterRoutes(api)
	pharmacy.NewHandler(a.store, a.metrics, a.logger).RegisterRoutes(api)
	administration.NewHandler(a.store, a.hasher, a.logger).RegisterRoutes(api)

	return e
}
