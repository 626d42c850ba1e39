// Command summarist serves the Summarist backend: sign-in, per-session state,
// catalog reads, the reader's library and subscription billing.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/summarist/modules/api"
	"github.com/dmitrymomot/summarist/pkg/config"
	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/environment"
	"github.com/dmitrymomot/summarist/pkg/httpserver"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
	"github.com/dmitrymomot/summarist/pkg/mongo"
	"github.com/dmitrymomot/summarist/pkg/ratelimit"
	"github.com/dmitrymomot/summarist/pkg/redis"
	"github.com/dmitrymomot/summarist/pkg/requestid"
	"github.com/dmitrymomot/summarist/pkg/session"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/catalog"
	"github.com/dmitrymomot/summarist/svc/library"
	"github.com/dmitrymomot/summarist/svc/state"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	LogFormat      string        `env:"LOG_FORMAT"`
	Collection     string        `env:"DOCSTORE_COLLECTION" envDefault:"documents"`
	RedisPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"summarist:"`
	CatalogRedis   bool          `env:"CATALOG_CACHE_REDIS" envDefault:"false"`
	StateCapacity  int           `env:"STATE_CAPACITY" envDefault:"10000"`
	WatchPoll      time.Duration `env:"DOCSTORE_POLL_INTERVAL" envDefault:"1s"`
	AfterLoginPath string        `env:"AFTER_LOGIN_PATH" envDefault:"/for-you"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("summarist stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if f := os.Getenv("ENV_FILE"); f != "" {
		if err := config.LoadFiles(f); err != nil {
			return err
		}
	}

	var (
		appCfg     appConfig
		httpCfg    httpserver.Config
		mongoCfg   mongo.Config
		redisCfg   redis.Config
		sessionCfg session.Config
		authCfg    auth.Config
		googleCfg  auth.GoogleConfig
		catalogCfg catalog.Config
		billingCfg subscription.Config
		paddleCfg  subscription.PaddleConfig
		rateCfg    ratelimit.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&authCfg) },
		func() error { return config.Load(&googleCfg) },
		func() error { return config.Load(&catalogCfg) },
		func() error { return config.Load(&billingCfg) },
		func() error { return config.Load(&paddleCfg) },
		func() error { return config.Load(&rateCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	env := environment.Parse(appCfg.Env)
	logOpts := []logger.Option{
		logger.WithEnvironment(env, "summarist"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if appCfg.LogFormat != "" {
		logOpts = append(logOpts, logger.WithFormat(logger.Format(appCfg.LogFormat)))
	}
	log := logger.New(logOpts...)
	slog.SetDefault(log)
	ctx = environment.WithContext(ctx, env)

	mongoClient, db, err := mongo.Connect(ctx, mongoCfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(closeCtx); err != nil {
			log.Error("failed to disconnect mongodb", logger.Error(err))
		}
	}()

	redisClient, err := redis.Connect(ctx, redisCfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", logger.Error(err))
		}
	}()

	store := docstore.NewMongoStore(db, appCfg.Collection,
		docstore.WithPollInterval(appCfg.WatchPoll),
		docstore.WithMongoLogger(log),
	)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	sessions := session.NewManager(
		session.NewRedisStore(redis.NewStorage(redisClient, appCfg.RedisPrefix+"session:")),
		session.WithConfig(sessionCfg),
		session.WithLogger(log),
	)

	channel := auth.NewChannel()
	password := auth.NewPasswordProvider(store,
		auth.WithBcryptCost(authCfg.BcryptCost),
		auth.WithGuestCredentials(authCfg.GuestEmail, authCfg.GuestPassword),
		auth.WithPasswordLogger(log),
	)
	authOpts := []auth.ServiceOption{auth.WithServiceLogger(log)}
	if googleCfg.Enabled() {
		authOpts = append(authOpts, auth.WithGoogle(
			auth.NewGoogleProvider(googleCfg, store, auth.WithGoogleLogger(log)),
		))
	}
	authService := auth.NewService(password, sessions, channel, authOpts...)

	resolver := subscription.NewResolver(store,
		subscription.WithResolveTimeout(billingCfg.ResolveTimeout),
		subscription.WithResolverLogger(log),
		subscription.WithResolverMetrics(recorder),
	)
	registry := state.NewRegistry(resolver, channel,
		state.WithCapacity(appCfg.StateCapacity),
		state.WithContainerOptions(state.WithLogger(log)),
		state.WithRegistryLogger(log),
		state.WithRegistryMetrics(recorder),
	)
	defer registry.Close()

	var catalogCache catalog.Cache = catalog.NewMemoryCache(catalogCfg.CacheSize)
	if appCfg.CatalogRedis {
		catalogCache = catalog.NewRedisCache(redis.NewStorage(redisClient, appCfg.RedisPrefix+"catalog:"))
	}
	catalogClient := catalog.NewClient(catalogCfg,
		catalog.WithCache(catalogCache),
		catalog.WithLogger(log),
		catalog.WithMetrics(recorder),
	)

	plans := subscription.DefaultPlans()
	if billingCfg.PlansFile != "" {
		if plans, err = subscription.LoadPlans(billingCfg.PlansFile); err != nil {
			return err
		}
	}

	opts := api.Options{
		Auth:           authService,
		Sessions:       sessions,
		Registry:       registry,
		Catalog:        catalogClient,
		Library:        library.NewGateway(store, library.WithLogger(log)),
		AuthLimiter:    ratelimit.New(rateCfg),
		AfterLoginPath: appCfg.AfterLoginPath,
		Metrics:        metrics.Handler(reg),
		Logger:         log,
		Recorder:       recorder,
		Health: httpserver.HealthHandler(log, map[string]httpserver.Check{
			"mongodb": mongo.Healthcheck(mongoClient),
			"redis":   redis.Healthcheck(redisClient),
		}),
	}

	if paddleCfg.Enabled() {
		provider, err := subscription.NewPaddleProvider(paddleCfg)
		if err != nil {
			return err
		}
		worker := subscription.NewCheckoutWorker(store, provider,
			subscription.WithWorkers(billingCfg.WorkerCount),
			subscription.WithWorkerLogger(log),
			subscription.WithWorkerMetrics(recorder),
		)
		if err := worker.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := worker.Stop(); err != nil && !errors.Is(err, subscription.ErrWorkerNotStarted) {
				log.Error("failed to stop checkout worker", logger.Error(err))
			}
		}()

		webhooks := subscription.NewWebhookSync(store, provider, plans, log)
		webhooks.OnChange(func(ctx context.Context, customerID string) {
			n := registry.RefreshUser(customerID)
			log.DebugContext(ctx, "refreshed live sessions",
				logger.UserID(customerID),
				slog.Int("sessions", n),
			)
		})

		opts.Checkout = subscription.NewCheckoutService(store, plans,
			subscription.WithDispatcher(worker),
			subscription.WithCheckoutConfig(billingCfg),
			subscription.WithCheckoutLogger(log),
			subscription.WithCheckoutMetrics(recorder),
		)
		opts.Portal = subscription.NewPortalService(store, provider, billingCfg, log)
		opts.Webhooks = webhooks
	} else {
		log.WarnContext(ctx, "paddle is not configured, billing endpoints are disabled")
	}

	router := api.Router(opts)
	server := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return server.Run(ctx, environment.Middleware(env)(router))
}
