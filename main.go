package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/xmoure/blog-api-server/handlers"
	"github.com/xmoure/blog-api-server/internal/access"
	"github.com/xmoure/blog-api-server/internal/assets"
	"github.com/xmoure/blog-api-server/internal/comments"
	"github.com/xmoure/blog-api-server/internal/config"
	"github.com/xmoure/blog-api-server/internal/database"
	"github.com/xmoure/blog-api-server/internal/identity"
	"github.com/xmoure/blog-api-server/internal/oidc"
	"github.com/xmoure/blog-api-server/internal/posts"
	"github.com/xmoure/blog-api-server/internal/tokens"
	"github.com/xmoure/blog-api-server/internal/users"
	"github.com/xmoure/blog-api-server/internal/webhooks"
	"github.com/xmoure/blog-api-server/pkg/logger"
	"github.com/xmoure/blog-api-server/pkg/metrics"
	"github.com/xmoure/blog-api-server/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: oidc=%v redis=%v assets=%s env=%s", cfg.Auth.Issuer != "", cfg.Redis.Host != "", cfg.Assets.Provider, cfg.Server.Environment)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Redis is optional: it backs webhook dedupe and the shared rate limiter.
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		c := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			rdb = c
			logger.Infof("connected to Redis: %s", addr)
		}
	}

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.Attempts, func(attempt int, err error) {
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, cfg.MongoDB.Attempts, err)
	})
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to ensure indexes: %v", err)
	}

	userRepo := users.NewMongoRepository(db.Collection(database.UsersCollection))
	postRepo := posts.NewMongoRepository(db.Collection(database.PostsCollection))
	commentRepo := comments.NewMongoRepository(db.Collection(database.CommentsCollection))

	userSvc := users.NewService(userRepo)
	postSvc := posts.NewService(postRepo,
		posts.WithInsertAttempts(cfg.Posts.InsertAttempts),
		posts.WithMaxProbeAttempts(cfg.Posts.MaxProbeAttempts))
	commentSvc := comments.NewService(commentRepo)
	policy := access.NewPolicy(userRepo)
	syncSvc := identity.NewService(userRepo, postRepo, commentRepo)

	verifier := buildVerifier(ctx, cfg)
	uploader := buildUploader(ctx, cfg)

	var hookVerifier webhooks.Verifier
	if v, err := webhooks.NewVerifier(cfg.Webhook.Secret); err != nil {
		logger.Warnf("webhook verifier disabled: %v", err)
	} else {
		hookVerifier = v
	}
	var dedupe *webhooks.RedisDeduper
	if rdb != nil {
		dedupe = webhooks.NewRedisDeduper(rdb, cfg.Webhook.DedupTTL)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.CORS(cfg.ClientURL))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(client, rdb, cfg))

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	// Webhooks read the raw body and authenticate by signature, so they sit
	// outside the bearer-auth and rate-limit chain.
	handlers.NewWebhookHandler(hookVerifier, syncSvc, dedupe).Register(r.Group("/"))

	api := r.Group("/")
	api.Use(middleware.OptionalAuth(verifier))
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			api.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.NewPostsHandler(postSvc, userSvc, policy, uploader).Register(api)
	handlers.NewCommentsHandler(commentSvc, postSvc, userSvc, policy).Register(api)
	handlers.NewUsersHandler(userSvc, policy).Register(api)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting blog API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Infof("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// buildVerifier picks the bearer-token verifier: OIDC discovery, then the
// HS256 dev secret, then the insecure parser when explicitly allowed.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Auth.Issuer != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.Auth.DevSecret != "" {
		iss, err := tokens.NewIssuer(cfg.Auth.DevSecret)
		if err == nil {
			logger.Infof("using HS256 dev token verifier")
			return iss
		}
		logger.Warnf("dev token verifier disabled: %v", err)
	}
	if cfg.Auth.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	logger.Warnf("no token verifier configured; all requests are anonymous")
	return nil
}

func buildUploader(ctx context.Context, cfg *config.Config) assets.Authenticator {
	switch cfg.Assets.Provider {
	case "imagekit":
		ik := cfg.Assets.ImageKit
		s, err := assets.NewImageKitSigner(assets.ImageKitConfig{URLEndpoint: ik.URLEndpoint, PublicKey: ik.PublicKey, PrivateKey: ik.PrivateKey})
		if err != nil {
			logger.Warnf("imagekit uploads disabled: %v", err)
			return nil
		}
		return s
	case "minio":
		mc := cfg.Assets.MinIO
		u, err := assets.NewMinIOUploader(assets.MinIOConfig{
			Endpoint:  mc.Endpoint,
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			UseSSL:    mc.UseSSL,
			Bucket:    mc.Bucket,
			Region:    mc.Region,
		})
		if err != nil {
			logger.Warnf("minio uploads disabled: %v", err)
			return nil
		}
		bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := u.EnsureBucket(bctx); err != nil {
			logger.Warnf("minio bucket check failed: %v", err)
		}
		return u
	}
	logger.Infof("upload auth disabled (provider=%s)", cfg.Assets.Provider)
	return nil
}

// readyHandler returns 200 only when critical dependencies answer.
func readyHandler(client *mongo.Client, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}

		deps["mongo"] = client.Ping(ctx, nil) == nil
		if !deps["mongo"] {
			ready = false
		}
		if cfg.RateLimit.UseRedis && cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil && rdb.Ping(ctx).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}
		deps["webhooks"] = cfg.Webhook.Secret != ""

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}
