package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"

	"github.com/jobdeck/jobdeck/internal/common"
)

// KeySet maps a key id (kid) to the issuer's public verification key.
type KeySet map[string]*rsa.PublicKey

// HTTPClient abstracts the HTTP client used to fetch the key set, so tests
// and callers can supply their own timeouts or transport.
// The standard *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// KeySetCache fetches and memoizes the issuer's published key set.
// There is one cache per process and one issuer per cache; a refresh
// replaces the whole set, never merges. Invalidation is reactive only:
// the verifier drops the cached set when a signature check fails and the
// next Get re-fetches.
//
// Concurrent invalidate-and-refetch cycles may cause redundant upstream
// fetches but no correctness issue, since every attempt uses whichever
// complete set is current when it reads.
type KeySetCache struct {
	url    string
	client HTTPClient

	mu   sync.RWMutex
	keys KeySet
}

// NewKeySetCache returns a cache for the JWKS document published at jwksURL.
// If client is nil, http.DefaultClient is used.
func NewKeySetCache(jwksURL string, client HTTPClient) *KeySetCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &KeySetCache{url: jwksURL, client: client}
}

// Get returns the memoized key set, fetching it from the issuer on first
// use. Fetch or parse failures surface as configuration errors; the cache
// never retries internally.
func (c *KeySetCache) Get(ctx context.Context) (KeySet, error) {
	c.mu.RLock()
	keys := c.keys
	c.mu.RUnlock()
	if keys != nil {
		return keys, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching key set: %v", common.ErrConfiguration, err)
	}

	c.mu.Lock()
	c.keys = fetched
	c.mu.Unlock()

	return fetched, nil
}

// Invalidate drops the memoized set, forcing the next Get to re-fetch.
func (c *KeySetCache) Invalidate() {
	c.mu.Lock()
	c.keys = nil
	c.mu.Unlock()
}

// jwksDocument is the wire form of the issuer's published key set.
type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey carries the fields needed to reconstruct an RSA public key.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (c *KeySetCache) fetch(ctx context.Context) (KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing key set: %w", err)
	}

	keys := make(KeySet, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kid == "" || k.Kty != "RSA" {
			// The issuer only signs with RSA keys; skip anything else.
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("key set contains no usable keys")
	}
	return keys, nil
}

// parseRSAPublicKey constructs an *rsa.PublicKey from base64url-encoded
// modulus (n) and exponent (e) values.
func parseRSAPublicKey(nB64, eB64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
