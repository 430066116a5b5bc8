package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xmoure/blog-api-server/pkg/logger"
)

// ErrMissingMongoURI is returned when neither MONGODB_URI nor MONGO is set.
var ErrMissingMongoURI = errors.New("environment variable MONGODB_URI is required")

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig
	Assets    AssetsConfig
	Posts     PostsConfig
	ClientURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
	Attempts int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr is host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	Issuer        string
	ClientID      string
	DevSecret     string
	AllowInsecure bool
}

type WebhookConfig struct {
	Secret   string
	DedupTTL time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

type ImageKitConfig struct {
	URLEndpoint string
	PublicKey   string
	PrivateKey  string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

type AssetsConfig struct {
	Provider string // imagekit | minio | none
	ImageKit ImageKitConfig
	MinIO    MinIOConfig
}

type PostsConfig struct {
	InsertAttempts   int
	MaxProbeAttempts int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "blog")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("MONGODB_CONNECT_ATTEMPTS", 5)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("WEBHOOK_DEDUP_TTL", 1440)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW", 1)
	viper.SetDefault("MINIO_BUCKET", "blog")
	viper.SetDefault("POSTS_INSERT_ATTEMPTS", 5)
	viper.SetDefault("POSTS_MAX_SLUG_PROBES", 0)

	uri := viper.GetString("MONGODB_URI")
	if uri == "" {
		uri = viper.GetString("MONGO")
	}
	if uri == "" {
		return nil, ErrMissingMongoURI
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
			Attempts: viper.GetInt("MONGODB_CONNECT_ATTEMPTS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			Issuer:        viper.GetString("OIDC_ISSUER_URL"),
			ClientID:      viper.GetString("OIDC_CLIENT_ID"),
			DevSecret:     os.Getenv("JWT_SECRET"),
			AllowInsecure: viper.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		Webhook: WebhookConfig{
			Secret:   os.Getenv("CLERK_WEBHOOK_SECRET"),
			DedupTTL: time.Duration(viper.GetInt("WEBHOOK_DEDUP_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis: viper.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		Assets: AssetsConfig{
			ImageKit: ImageKitConfig{
				URLEndpoint: viper.GetString("IK_URL_ENDPOINT"),
				PublicKey:   viper.GetString("IK_PUBLIC_KEY"),
				PrivateKey:  os.Getenv("IK_PRIVATE_KEY"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				Region:    viper.GetString("MINIO_REGION"),
			},
		},
		Posts: PostsConfig{
			InsertAttempts:   viper.GetInt("POSTS_INSERT_ATTEMPTS"),
			MaxProbeAttempts: viper.GetInt("POSTS_MAX_SLUG_PROBES"),
		},
		ClientURL: viper.GetString("CLIENT_URL"),
	}
	cfg.Assets.Provider = assetProvider(viper.GetString("ASSET_PROVIDER"), cfg.Assets)

	if cfg.Webhook.Secret == "" {
		logger.Warnf("CLERK_WEBHOOK_SECRET is not set; identity webhooks will be rejected")
	}
	if cfg.Auth.AllowInsecure {
		logger.Warnf("ALLOW_INSECURE_TOKEN is enabled; bearer token signatures are NOT verified")
	}

	return cfg, nil
}

// assetProvider picks the explicit provider, else whichever one is configured.
func assetProvider(explicit string, a AssetsConfig) string {
	if p := strings.ToLower(strings.TrimSpace(explicit)); p != "" {
		return p
	}
	switch {
	case a.ImageKit.PrivateKey != "" && a.ImageKit.PublicKey != "":
		return "imagekit"
	case a.MinIO.Endpoint != "":
		return "minio"
	}
	return "none"
}
