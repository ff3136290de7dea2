package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"alphapicks/internal/cache"
	"alphapicks/internal/client/chain"
	"alphapicks/internal/client/pricefeed"
	"alphapicks/internal/config"
	cronrunner "alphapicks/internal/cron"
	"alphapicks/internal/db"
	"alphapicks/internal/handler"
	"alphapicks/internal/ledger"
	"alphapicks/internal/lock"
	"alphapicks/internal/logger"
	"alphapicks/internal/oracle"
	gormrepository "alphapicks/internal/repository/gorm"
	"alphapicks/internal/resolution"
	"alphapicks/internal/service"

	_ "alphapicks/docs"
)

func main() {
	cfgPath := os.Getenv("AP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AP_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	authority, err := ledger.LoadAuthority(cfg.Resolver.AuthorityKeyEnv)
	if err != nil {
		logger.Fatal("authority key load failed", zap.Error(err))
	}

	feedHTTP := &http.Client{Timeout: cfg.PriceFeed.Timeout}
	feedClient := pricefeed.NewClient(feedHTTP, cfg.PriceFeed.BaseURL, os.Getenv(cfg.PriceFeed.APIKeyEnv))
	chainHTTP := &http.Client{Timeout: cfg.Chain.Timeout}
	chainClient := chain.NewClient(chainHTTP, cfg.Chain.RPCURL, cfg.Chain.ConfirmTimeout, cfg.Chain.ConfirmInterval)

	store := gormrepository.New(dbConn.Gorm)
	priceOracle := oracle.New(feedClient, &cache.RedisStore{Client: redisClient}, logger, oracle.Config{
		WindowSlack:       cfg.Oracle.WindowSlack,
		MaxSampleDistance: cfg.Oracle.MaxSampleDistance,
		CacheTTL:          cfg.Oracle.CacheTTL,
		PreviewCacheTTL:   cfg.Oracle.PreviewCacheTTL,
	})
	engine := &resolution.Engine{
		Ledger: chainClient,
		Submitter: &ledger.ChainSubmitter{
			Node:        chainClient,
			Authority:   authority,
			ProgramID:   cfg.Chain.ProgramID,
			GlobalState: cfg.Chain.GlobalState,
		},
		Prices: priceOracle,
		Locks:  lock.NewRedisManager(redisClient, cfg.Lock.KeyPrefix),
		Repo:   store,
		Logger: logger,
		Config: resolution.Config{
			SingleLockTTL:    cfg.Lock.SingleTTL,
			BatchLockTTL:     cfg.Lock.BatchTTL,
			ResolverIdentity: cfg.Resolver.Identity,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	resolveHandler := &handler.ResolveHandler{Engine: engine, Logger: logger}
	resolveHandler.Register(router)
	recordsHandler := &handler.RecordsHandler{Repo: store}
	recordsHandler.Register(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Sweep.Enabled {
		sweep := &service.SweepService{
			Engine: engine,
			Repo:   store,
			Config: cfg.Sweep,
			Logger: logger,
		}
		_, err := cronRunner.Add(cfg.Sweep.Schedule, func(ctx context.Context) {
			if err := sweep.RunOnce(ctx); err != nil {
				logger.Warn("sweep run failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
