package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bistroplan/bistroplan/internal/config"
	"github.com/bistroplan/bistroplan/internal/database"
	"github.com/bistroplan/bistroplan/internal/draft/handler"
	"github.com/bistroplan/bistroplan/internal/draft/store"
	"github.com/bistroplan/bistroplan/internal/export"
	"github.com/bistroplan/bistroplan/internal/identity"
	"github.com/bistroplan/bistroplan/pkg/logger"
	"github.com/bistroplan/bistroplan/pkg/metrics"
	"github.com/bistroplan/bistroplan/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging first (LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v oidc=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.OIDC.IssuerURL != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS for the single-page frontend; production deployments
	// sit behind a stricter proxy policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis early: the rate limiter and the index cache both want it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Document store: prefer Mongo when configured and reachable, else the
	// local file store. The draft service never knows which is in effect.
	ctx := context.Background()
	var st store.Store
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn == nil {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
			st = store.NewMongoStore(mongoClient.Database(cfg.MongoDB.Database))
			logger.Infof("draft store: MongoDB (%s)", cfg.MongoDB.Database)
		}
	}
	if st == nil {
		fs, err := store.NewFileStore(cfg.Drafts.DataDir)
		if err != nil {
			logger.Fatalf("failed to open local draft store: %v", err)
		}
		st = fs
		logger.Infof("draft store: local files under %s", cfg.Drafts.DataDir)
	}
	if redisClient != nil {
		st = store.NewRedisIndexCache(st, redisClient, cfg.Drafts.IndexCacheTTL)
	}

	// Identity: OIDC when configured, the shared-secret dev verifier
	// otherwise. Without either, all requests are anonymous (memory-only).
	var verifier middleware.Verifier
	if cfg.OIDC.IssuerURL != "" && cfg.OIDC.ClientID != "" {
		ver, err := identity.NewVerifier(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && cfg.OIDC.DevSecret != "" {
		logger.Warn("using shared-secret dev token verifier; not for production")
		verifier = identity.NewDevVerifier(cfg.OIDC.DevSecret)
	}

	// Export storage is optional
	var exporter handler.Exporter
	if cfg.MinIO.Endpoint != "" {
		exp, err := export.NewMinIOExporter(cfg.MinIO)
		if err != nil {
			logger.Warnf("export storage unavailable: %v", err)
		} else {
			exporter = exp
			logger.Infof("export storage: MinIO bucket %s", cfg.MinIO.Bucket)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"store": st != nil,
			"redis": cfg.Redis.Host == "" || redisClient != nil,
			"oidc":  cfg.OIDC.IssuerURL == "" || verifier != nil,
		}
		ready := deps["store"] && deps["redis"] && deps["oidc"]
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	h := handler.New(st, cfg.Drafts.AppID, cfg.Drafts.DefaultDraftName, exporter)
	api := r.Group("/")
	api.Use(middleware.OptionalAuthMiddleware(verifier))
	h.Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting draft workspace service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
