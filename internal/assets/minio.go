package assets

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	Expiry    time.Duration
}

const uploadPrefix = "uploads/"

// MinIOUploader hands out presigned PUT URLs for fresh object keys.
type MinIOUploader struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	now    func() time.Time
}

func NewMinIOUploader(cfg MinIOConfig) (*MinIOUploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &MinIOUploader{client: mc, bucket: cfg.Bucket, expiry: expiry, now: time.Now}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (u *MinIOUploader) EnsureBucket(ctx context.Context) error {
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := u.client.BucketExists(ctx, u.bucket)
		if xerr != nil || !exist {
			return fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return nil
}

func (u *MinIOUploader) UploadAuth(ctx context.Context) (*UploadParams, error) {
	key := path.Join(uploadPrefix, uuid.NewString())
	presigned, err := u.client.PresignedPutObject(ctx, u.bucket, key, u.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadParams{
		UploadURL: presigned.String(),
		Key:       key,
		Expire:    u.now().Add(u.expiry).Unix(),
	}, nil
}
