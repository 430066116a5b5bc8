package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"RS256"}`)) + "." + enc.EncodeToString(b) + ".sig"
}

func TestInsecureVerifier(t *testing.T) {
	v := NewInsecureVerifier()
	tok, err := v.Verify(context.Background(), fakeJWT(t, map[string]interface{}{"sub": "user_1", "metadata": map[string]interface{}{"role": "admin"}}))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user_1", claims["sub"])

	_, err = v.Verify(context.Background(), "garbage")
	require.Error(t, err)
	_, err = v.Verify(context.Background(), fakeJWT(t, map[string]interface{}{"email": "a@example.com"}))
	require.Error(t, err)
}

func TestNewVerifier_Discovery(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/auth",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	v, err := NewVerifier(context.Background(), issuer, "")
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), fakeJWT(t, map[string]interface{}{"sub": "user_1", "iss": issuer}))
	require.Error(t, err)
}

func TestNewVerifier_UnreachableIssuer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := NewVerifier(context.Background(), srv.URL, "client")
	require.Error(t, err)
}
