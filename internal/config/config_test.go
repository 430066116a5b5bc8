package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "blog_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("IK_PUBLIC_KEY", "public_x")
	t.Setenv("IK_PRIVATE_KEY", "private_x")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "blog_test", cfg.MongoDB.Database)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "whsec_dGVzdA==", cfg.Webhook.Secret)
	require.Equal(t, 24*time.Hour, cfg.Webhook.DedupTTL)
	require.Equal(t, 2.5, cfg.RateLimit.RPS)
	require.Equal(t, "imagekit", cfg.Assets.Provider)
	require.Equal(t, 5, cfg.Posts.InsertAttempts)
}

func TestLoadConfig_MongoFallback(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGO", "mongodb://fallback:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://fallback:27017", cfg.MongoDB.URI)
}

func TestLoadConfig_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGO", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingMongoURI)
}

func TestAssetProvider(t *testing.T) {
	require.Equal(t, "minio", assetProvider("MinIO", AssetsConfig{}))
	require.Equal(t, "minio", assetProvider("", AssetsConfig{MinIO: MinIOConfig{Endpoint: "localhost:9000"}}))
	require.Equal(t, "none", assetProvider("", AssetsConfig{}))
}
