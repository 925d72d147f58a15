package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// GoogleIdentity is what a verified Google ID token tells us.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleVerifier checks Google ID tokens against the published signing
// certificates, which are cached for certsTTL.
type GoogleVerifier struct {
	clientID string
	certsURL string
	client   *http.Client
	certsTTL time.Duration

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

func NewGoogleVerifier(clientID, certsURL string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		certsURL: certsURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		certsTTL: time.Hour,
	}
}

// Verify validates signature, audience, issuer and expiry.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google login is not configured", common.ErrInvalidToken)
	}

	claims := &googleClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if _, ok := googleIssuers[claims.Issuer]; !ok {
		return nil, fmt.Errorf("%w: unexpected issuer %q", common.ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: token lacks subject or email", common.ErrInvalidToken)
	}

	return &GoogleIdentity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

// key returns the certificate for kid, refreshing the cache when it is
// stale or does not know kid.
func (v *GoogleVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if k, ok := v.keys[kid]; ok && time.Since(v.fetched) < v.certsTTL {
		return k, nil
	}
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	k, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return k, nil
}

func (v *GoogleVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch google certs: %s", resp.Status)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse google cert %s: %w", kid, err)
		}
		keys[kid] = k
	}
	v.keys = keys
	v.fetched = time.Now()
	return nil
}
