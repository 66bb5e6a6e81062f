package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/auth"
	"github.com/NREL/CoolerChips/internal/cache"
	"github.com/NREL/CoolerChips/internal/config"
	"github.com/NREL/CoolerChips/internal/db"
	"github.com/NREL/CoolerChips/internal/handlers"
	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/metrics"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/rbd"
	"github.com/NREL/CoolerChips/internal/topology"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("configuration error", logging.Error(err))
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoDB, err := db.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer mongoDB.Client().Disconnect(context.Background())

	redisClient := db.NewRedis(cfg.Redis)
	defer redisClient.Close()

	users := models.NewMongoUserStore(mongoDB)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Warn("could not create user indexes", logging.Error(err))
	}

	var mirror topology.Mirror
	driver, err := db.NewNeo4j(ctx, cfg.Neo4j)
	switch {
	case err != nil:
		log.Warn("topology mirror disabled", logging.Error(err))
	case driver == nil:
		log.Info("topology mirror not configured")
	default:
		defer driver.Close(context.Background())
		mirror = topology.NewNeo4jMirror(driver)
	}

	var resultCache cache.ResultCache = cache.Nop{}
	if cfg.CacheTTL > 0 {
		resultCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
	}

	registry := metrics.NewRegistry()
	h := handlers.New(handlers.Deps{
		Log:         log,
		Metrics:     registry,
		Cache:       resultCache,
		Diagrams:    models.NewMongoDiagramStore(mongoDB),
		Users:       users,
		Tokens:      auth.NewRedisTokenStore(redisClient),
		Auth:        auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL),
		Mirror:      mirror,
		CyclePolicy: rbd.ParseCyclePolicy(cfg.CyclePolicy),
		Checks: map[string]handlers.Pinger{
			"mongo": db.MongoPinger{DB: mongoDB},
			"redis": db.RedisPinger{Client: redisClient},
		},
	})

	if lvl := logging.ParseLevel(cfg.LogLevel); lvl > logging.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLogger(log), handlers.Recovery(log), registry.Middleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	h.Routes(r)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logging.String("addr", cfg.ListenAddr), logging.String("cycle_policy", cfg.CyclePolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "X-Requested-With", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
