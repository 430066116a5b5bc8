package assets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/imagekit-developer/imagekit-go"
)

// ImageKitExpiry is how long an ImageKit upload signature stays valid.
const ImageKitExpiry = 30 * time.Minute

type ImageKitConfig struct {
	URLEndpoint string
	PublicKey   string
	PrivateKey  string
}

// ImageKitSigner produces client-side upload signatures for ImageKit.
type ImageKitSigner struct {
	cfg   ImageKitConfig
	ik    *imagekit.ImageKit
	now   func() time.Time
	token func() string
}

func NewImageKitSigner(cfg ImageKitConfig) (*ImageKitSigner, error) {
	if cfg.PrivateKey == "" || cfg.PublicKey == "" {
		return nil, errors.New("imagekit keys missing")
	}
	ik := imagekit.NewFromParams(imagekit.NewParams{
		PrivateKey:  cfg.PrivateKey,
		PublicKey:   cfg.PublicKey,
		UrlEndpoint: cfg.URLEndpoint,
	})
	return &ImageKitSigner{cfg: cfg, ik: ik, now: time.Now, token: uuid.NewString}, nil
}

// Sign returns the ImageKit signature for token and expire.
func (s *ImageKitSigner) Sign(token string, expire int64) string {
	return s.ik.SignToken(imagekit.SignTokenParam{Token: token, Expires: expire}).Signature
}

func (s *ImageKitSigner) UploadAuth(ctx context.Context) (*UploadParams, error) {
	signed := s.ik.SignToken(imagekit.SignTokenParam{
		Token:   s.token(),
		Expires: s.now().Add(ImageKitExpiry).Unix(),
	})
	return &UploadParams{
		Token:       signed.Token,
		Expire:      signed.Expires,
		Signature:   signed.Signature,
		PublicKey:   s.cfg.PublicKey,
		URLEndpoint: s.cfg.URLEndpoint,
	}, nil
}
