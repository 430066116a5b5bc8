package assets

import "context"

// UploadParams are handed to the browser so it can upload directly to the
// asset provider. Which fields are set depends on the provider.
type UploadParams struct {
	Token       string `json:"token,omitempty"`
	Expire      int64  `json:"expire"`
	Signature   string `json:"signature,omitempty"`
	PublicKey   string `json:"publicKey,omitempty"`
	URLEndpoint string `json:"urlEndpoint,omitempty"`
	UploadURL   string `json:"uploadUrl,omitempty"`
	Key         string `json:"key,omitempty"`
}

// Authenticator issues short-lived upload credentials.
type Authenticator interface {
	UploadAuth(ctx context.Context) (*UploadParams, error)
}
