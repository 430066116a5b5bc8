package tokens

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/xmoure/blog-api-server/pkg/middleware"
)

func newIssuer(t *testing.T, secret string) *Issuer {
	t.Helper()
	i, err := NewIssuer(secret)
	require.NoError(t, err)
	return i
}

func TestIssueAndVerify(t *testing.T) {
	i := newIssuer(t, "test-secret-32-bytes-should-be-long-enough")
	raw, err := i.Issue("user_123", "admin", 2*time.Minute)
	require.NoError(t, err)

	tok, err := i.Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user_123", claims["sub"])
	require.Equal(t, "admin", middleware.RoleFromClaims(claims))
}

func TestIssue_NoRole(t *testing.T) {
	i := newIssuer(t, "test-secret-32-bytes-should-be-long-enough")
	raw, err := i.Issue("user_1", "", time.Minute)
	require.NoError(t, err)
	tok, err := i.Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.NotContains(t, claims, "metadata")
}

func TestVerify_Expired(t *testing.T) {
	i := newIssuer(t, "another-secret-32-bytes-longgggg")
	raw, err := i.Issue("u2", "", -time.Minute)
	require.NoError(t, err)
	_, err = i.Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := newIssuer(t, "secret-one-32-bytes-xxxxxxxxxxxxxxxx").Issue("u3", "", time.Minute)
	require.NoError(t, err)
	_, err = newIssuer(t, "different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := newIssuer(t, "secret-one-32-bytes-xxxxxxxxxxxxxxxx").Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

// Rejected when alg=none (unsigned token)
func TestVerify_AlgNoneRejected(t *testing.T) {
	headerEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"alg":"none"}`))
	payloadEnc := (&jwt.Token{}).EncodeSegment([]byte(`{"sub":"u-none","exp":9999999999}`))
	_, err := newIssuer(t, "secret-one-32-bytes-xxxxxxxxxxxxxxxx").Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

// Tampering with payload must fail signature verification
func TestVerify_TamperedPayload(t *testing.T) {
	i := newIssuer(t, "tamper-test-secret-32-bytes-xxxxxxx")
	raw, err := i.Issue("user-t", "", 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	require.NoError(t, err)
	parts[1] = (&jwt.Token{}).EncodeSegment([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))
	_, err = i.Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestNewIssuer_ShortSecret(t *testing.T) {
	_, err := NewIssuer("short")
	require.Error(t, err)
}
