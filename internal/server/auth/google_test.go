package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123.apps.googleusercontent.com"

type googleFixture struct {
	key     *rsa.PrivateKey
	server  *httptest.Server
	fetches atomic.Int32
}

func newGoogleFixture(t *testing.T) *googleFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	f := &googleFixture{key: key}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.fetches.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"kid-1": certPEM})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *googleFixture) sign(t *testing.T, kid string, mutate func(c *googleClaims)) string {
	t.Helper()
	c := &googleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "g-42",
			Audience:  jwt.ClaimStrings{testClientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:         "carol@example.com",
		EmailVerified: true,
		Name:          "Carol",
	}
	if mutate != nil {
		mutate(c)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return s
}

func TestGoogleVerifier_Valid(t *testing.T) {
	f := newGoogleFixture(t)
	v := NewGoogleVerifier(testClientID, f.server.URL)

	id, err := v.Verify(context.Background(), f.sign(t, "kid-1", nil))
	require.NoError(t, err)
	assert.Equal(t, "g-42", id.Subject)
	assert.Equal(t, "carol@example.com", id.Email)
	assert.True(t, id.EmailVerified)

	_, err = v.Verify(context.Background(), f.sign(t, "kid-1", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.fetches.Load(), "certificates are cached")
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	f := newGoogleFixture(t)
	v := NewGoogleVerifier(testClientID, f.server.URL)

	cases := map[string]string{
		"wrong audience": f.sign(t, "kid-1", func(c *googleClaims) { c.Audience = jwt.ClaimStrings{"other"} }),
		"wrong issuer":   f.sign(t, "kid-1", func(c *googleClaims) { c.Issuer = "evil.example.com" }),
		"expired":        f.sign(t, "kid-1", func(c *googleClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }),
		"unknown kid":    f.sign(t, "kid-2", nil),
		"no email":       f.sign(t, "kid-1", func(c *googleClaims) { c.Email = "" }),
		"garbage":        "x.y.z",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestGoogleVerifier_NotConfigured(t *testing.T) {
	v := NewGoogleVerifier("", "http://127.0.0.1:0")
	_, err := v.Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
