package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/app"
	"github.com/bookshelf-labs/bookshelf-api/internal/config"
	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/health"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/handler"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/middleware"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/router"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
	"github.com/bookshelf-labs/bookshelf-api/internal/security"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideCoverStorage,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewAuthorRepository,
	repository.NewBookRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
	wire.Bind(new(service.TokenIssuer), new(*security.JWTManager)),
	wire.Bind(new(service.PasswordHasher), new(*security.PasswordHasher)),
	wire.Bind(new(middleware.TokenParser), new(*security.JWTManager)),
)

var ServiceSet = wire.NewSet(
	provideListCacheStore,
	provideListCache,
	provideSignInGuard,
	provideAuthService,
	service.NewAuthorService,
	service.NewBookService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.AuthorServiceInterface), new(*service.AuthorService)),
	wire.Bind(new(service.BookServiceInterface), new(*service.BookService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	provideAuthorHandler,
	provideBookHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

// provideAppLogger depends on the runtime so the OTel log bridge exists before the logger is built.
func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret, cfg.JWTTTL)
}

func providePasswordHasher(cfg *config.Config) (*security.PasswordHasher, error) {
	return security.NewPasswordHasher(cfg.BcryptCost)
}

func provideRuntimeDB(cfg *config.Config, hasher *security.PasswordHasher, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if cfg.SeedOnStart {
		report, err := database.Seed(context.Background(), db, hasher)
		if err != nil {
			return nil, err
		}
		logger.Info("seed applied",
			"users", report.CreatedUsers,
			"authors", report.CreatedAuthors,
			"books", report.CreatedBooks,
			"noop", report.Noop,
		)
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideCoverStorage(cfg *config.Config, logger *slog.Logger) (service.CoverStorage, error) {
	if !cfg.StorageEnabled {
		logger.Info("cover storage disabled")
		return service.DisabledCoverStorage{}, nil
	}
	return service.NewMinIOCoverStorage(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageUseSSL)
}

func provideSignInGuard(cfg *config.Config, redisClient redis.UniversalClient) service.SignInGuard {
	if !cfg.SignInGuardEnabled {
		return service.NewNoopSignInGuard()
	}
	policy := service.SignInGuardPolicy{
		FreeAttempts: cfg.SignInFreeAttempts,
		BaseDelay:    cfg.SignInBaseDelay,
		Multiplier:   cfg.SignInBackoffMultiplier,
		MaxDelay:     cfg.SignInMaxDelay,
		ResetWindow:  cfg.SignInResetWindow,
	}
	if redisClient != nil {
		return service.NewRedisSignInGuard(redisClient, cfg.SignInGuardRedisPrefix, policy)
	}
	return service.NewInMemorySignInGuard(policy)
}

func provideAuthService(
	users repository.UserRepository,
	hasher service.PasswordHasher,
	tokens service.TokenIssuer,
	guard service.SignInGuard,
) *service.AuthService {
	return service.NewAuthService(users, hasher, tokens).WithSignInGuard(guard)
}

func provideListCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.ListCacheStore {
	if cfg.ListCacheTTL <= 0 {
		return service.NewNoopListCacheStore()
	}
	if redisClient != nil {
		return service.NewRedisListCacheStore(redisClient, cfg.RateLimitRedisPrefix+":list")
	}
	return service.NewInMemoryListCacheStore()
}

func provideListCache(cfg *config.Config, store service.ListCacheStore) *service.ListCache {
	return service.NewListCache(store, cfg.ListCacheTTL)
}

func provideAuthorHandler(cfg *config.Config, svc service.AuthorServiceInterface) *handler.AuthorHandler {
	return handler.NewAuthorHandler(svc, cfg.PaginationSize)
}

func provideBookHandler(cfg *config.Config, svc service.BookServiceInterface) *handler.BookHandler {
	return handler.NewBookHandler(svc, cfg.PaginationSize)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient, tokens middleware.TokenParser) router.GlobalRateLimiterFunc {
	if redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiterWithKey(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
			middleware.SubjectOrIPKeyFunc(tokens),
		).Middleware()
	}
	return middleware.NewDistributedRateLimiterWithKey(
		middleware.NewLocalFixedWindowLimiter(),
		cfg.APIRateLimitPerMin,
		time.Minute,
		middleware.FailClosed,
		"api",
		middleware.SubjectOrIPKeyFunc(tokens),
	).Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute, "auth").Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	authorHandler *handler.AuthorHandler,
	bookHandler *handler.BookHandler,
	tokens middleware.TokenParser,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		AuthorHandler:     authorHandler,
		BookHandler:       bookHandler,
		Tokens:            tokens,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, covers service.CoverStorage) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db)}
	if redisClient != nil {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	if pinger, ok := covers.(health.Pinger); ok {
		checkers = append(checkers, health.NewPingChecker("storage", pinger))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
