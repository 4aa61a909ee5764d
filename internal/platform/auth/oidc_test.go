package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signingJWK exposes a key's public half the way the identity provider's
// JWKS endpoint would.
func signingJWK(key *rsa.PrivateKey, kid string) JWKSKey {
	pub := &key.PublicKey
	return JWKSKey{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func newSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate signing key: %v", err)
	}
	return key
}

// jwksServer serves a fixed key set.
func jwksServer(t *testing.T, keys ...JWKSKey) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(JWKSResponse{Keys: keys})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ── Discovery ──

func TestNewOIDCProvider_Discovery(t *testing.T) {
	keys := jwksServer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":         "https://login.flourish.example/trials",
			"token_endpoint": "https://login.flourish.example/trials/oauth2/token",
			"jwks_uri":       keys.URL,
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	defer srv.Close()

	// A trailing slash on the configured issuer must not break the
	// well-known path.
	provider, err := NewOIDCProvider(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if provider.Issuer != "https://login.flourish.example/trials" {
		t.Errorf("issuer = %q", provider.Issuer)
	}
	if provider.JWKSURI != keys.URL {
		t.Errorf("jwks_uri = %q, want %q", provider.JWKSURI, keys.URL)
	}
	if len(provider.IDTokenSigningAlgValues) != 1 || provider.IDTokenSigningAlgValues[0] != "RS256" {
		t.Errorf("signing algs = %v", provider.IDTokenSigningAlgValues)
	}
	if provider.JWKSKeyFunc() == nil {
		t.Error("expected a key func from the discovered provider")
	}
}

func TestNewOIDCProvider_BadIssuer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := NewOIDCProvider(srv.URL); err == nil {
		t.Error("expected error for issuer without a discovery document")
	}
	if _, err := NewOIDCProvider("http://127.0.0.1:1"); err == nil {
		t.Error("expected error for unreachable issuer")
	}
}

func TestNewOIDCProvider_MissingJWKSURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer": "https://login.flourish.example/trials",
		})
	}))
	defer srv.Close()

	_, err := NewOIDCProvider(srv.URL)
	if err == nil || !strings.Contains(err.Error(), "jwks_uri") {
		t.Errorf("expected jwks_uri error, got %v", err)
	}
}

// ── JWKS cache ──

func TestJWKSCache_FetchAndHit(t *testing.T) {
	key := newSigningKey(t)
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		json.NewEncoder(w).Encode(JWKSResponse{Keys: []JWKSKey{signingJWK(key, "portal-2026")}})
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.URL, 5*time.Minute)
	got, err := cache.GetKey("portal-2026")
	if err != nil {
		t.Fatal(err)
	}
	if got.N.Cmp(key.PublicKey.N) != 0 || got.E != key.PublicKey.E {
		t.Error("fetched key does not match the signing key")
	}

	if _, err := cache.GetKey("portal-2026"); err != nil {
		t.Fatal(err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second lookup served from cache)", fetches)
	}
}

func TestJWKSCache_RefetchesOnUnknownKid(t *testing.T) {
	old := newSigningKey(t)
	rotated := newSigningKey(t)
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		keys := []JWKSKey{signingJWK(old, "portal-2025")}
		if fetches > 1 {
			keys = append(keys, signingJWK(rotated, "portal-2026"))
		}
		json.NewEncoder(w).Encode(JWKSResponse{Keys: keys})
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.URL, time.Hour)
	if _, err := cache.GetKey("portal-2025"); err != nil {
		t.Fatal(err)
	}

	// A token signed with the rotated key arrives before the TTL expires;
	// the unknown kid must force a refresh.
	got, err := cache.GetKey("portal-2026")
	if err != nil {
		t.Fatalf("rotated key lookup failed: %v", err)
	}
	if got.N.Cmp(rotated.PublicKey.N) != 0 {
		t.Error("rotated key does not match")
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2", fetches)
	}
}

func TestJWKSCache_KeyNotFound(t *testing.T) {
	srv := jwksServer(t, signingJWK(newSigningKey(t), "portal-2026"))
	cache := NewJWKSCache(srv.URL, 5*time.Minute)

	if _, err := cache.GetKey("retired-key"); err == nil {
		t.Error("expected error for a kid the issuer no longer publishes")
	}
}

func TestJWKSCache_EndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.URL, 5*time.Minute)
	if _, err := cache.GetKey("portal-2026"); err == nil {
		t.Error("expected error when the JWKS endpoint is down")
	}
}

// ── Key parsing ──

func TestParseRSAPublicKey(t *testing.T) {
	key := newSigningKey(t)
	pub, err := parseRSAPublicKey(signingJWK(key, "portal-2026"))
	if err != nil {
		t.Fatal(err)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 || pub.E != key.PublicKey.E {
		t.Error("parsed key does not round-trip")
	}
}

func TestParseRSAPublicKey_Malformed(t *testing.T) {
	cases := []struct {
		name string
		jwk  JWKSKey
	}{
		{"bad modulus", JWKSKey{Kty: "RSA", N: "!!!", E: "AQAB"}},
		{"bad exponent", JWKSKey{Kty: "RSA", N: base64.RawURLEncoding.EncodeToString(big.NewInt(12345).Bytes()), E: "!!!"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseRSAPublicKey(tc.jwk); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestJwksKeyFunc_RequiresKid(t *testing.T) {
	srv := jwksServer(t)
	keyFunc := jwksKeyFunc(srv.URL)

	_, err := keyFunc(&jwt.Token{Header: map[string]interface{}{}})
	if err == nil || !strings.Contains(err.Error(), "kid") {
		t.Errorf("expected kid error, got %v", err)
	}
}
