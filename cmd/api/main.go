package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/routes"
	"storefront/internal/service"
	"storefront/internal/webapp"
)

const productsCollection = "products"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode reports err and flushes log before the process exits, since
// os.Exit skips deferred calls.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	log.Info("starting", zap.Any("config", cfg.Redacted()))

	var store repository.ProductStore
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store = repository.NewMemoryRepository()
	default:
		client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := database.Disconnect(dctx, client); err != nil {
				log.Warn("mongo disconnect", zap.Error(err))
			}
		}()
		log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		store = repository.NewProductRepository(client.Database(cfg.Mongo.Database).Collection(productsCollection), cfg.Mongo.Timeout)
	}

	var productCache *cache.Cache
	if cfg.Cache.Enabled {
		productCache = cache.New(cfg.Cache.TTL)
		store = repository.NewCachingRepository(store, productCache, cfg.Cache.TTL)
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)

	router := gin.New()
	routes.RegisterRoutes(router, routes.Deps{
		Log:        log,
		Production: cfg.Production(),
		Products:   service.NewProductService(store, log, m),
		Store:      store,
		Tokens:     tokens,
		Metrics:    m,
		Web:        webapp.NewRouter(webapp.DefaultRoutes(), tokens),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	if productCache != nil {
		g.Go(func() error {
			productCache.Run(gctx, cfg.Cache.TTL)
			return nil
		})
	}
	return g.Wait()
}
