package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"institute-admin/internal/domain"
)

// Legacy bootstrap accounts: when a token carries no role claim, these two
// addresses map to the owner and limited tiers. Kept for compatibility with
// the original seed accounts.
const (
	DefaultOwnerEmail   = "waseem38650@gmail.com"
	DefaultLimitedEmail = "waseemscs105@gmail.com"

	fallbackFrontDeskRoleID = "role-frontdesk"
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksResponse struct {
	Keys []jwk `json:"keys"`
}

type jwkCache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	ttl       time.Duration
	url       string
	client    *http.Client
}

func newJWKCache(url string, ttl time.Duration) *jwkCache {
	return &jwkCache{
		keys:   map[string]*rsa.PublicKey{},
		ttl:    ttl,
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *jwkCache) keyForKid(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if key, ok := c.keys[kid]; ok && time.Now().Before(c.expiresAt) {
		c.mu.RUnlock()
		return key, nil
	}
	c.mu.RUnlock()

	if err := c.refresh(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	if !ok {
		return nil, errors.New("jwk key not found")
	}
	return key, nil
}

func (c *jwkCache) refresh() error {
	resp, err := c.client.Get(c.url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unable to fetch jwks")
	}
	var parsed jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	keys := make(map[string]*rsa.PublicKey, len(parsed.Keys))
	for _, key := range parsed.Keys {
		if key.Kty != "RSA" || key.Kid == "" || key.N == "" || key.E == "" {
			continue
		}
		pubKey, err := rsaFromJWK(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pubKey
	}
	if len(keys) == 0 {
		return errors.New("no valid jwk keys")
	}
	c.mu.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

func rsaFromJWK(nB64, eB64 string) (*rsa.PublicKey, error) {
	nRaw, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eRaw, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	var eInt int
	for _, b := range eRaw {
		eInt = eInt<<8 + int(b)
	}
	if eInt == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nRaw), E: eInt}, nil
}

// TokenMiddleware turns a bearer token into a domain.Principal. Requests
// without a token pass through unauthenticated; the gates decide what that
// means per route. A token that fails verification does not kill the
// session: the principal degrades to the email table with baseline-only
// resolution.
type TokenMiddleware struct {
	cache        *jwkCache
	ownerEmail   string
	limitedEmail string
}

func NewTokenMiddleware(jwksURL, ownerEmail, limitedEmail string) *TokenMiddleware {
	if ownerEmail == "" {
		ownerEmail = DefaultOwnerEmail
	}
	if limitedEmail == "" {
		limitedEmail = DefaultLimitedEmail
	}
	return &TokenMiddleware{
		cache:        newJWKCache(jwksURL, 15*time.Minute),
		ownerEmail:   ownerEmail,
		limitedEmail: limitedEmail,
	}
}

func (m *TokenMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if tokenString == "" {
			return next(c)
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
				return nil, errors.New("unexpected signing method")
			}
			kid, ok := token.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, errors.New("missing kid")
			}
			return m.cache.keyForKid(kid)
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

		var principal domain.Principal
		if err != nil || !token.Valid {
			principal = m.degradedPrincipal(tokenString)
		} else {
			principal = m.principalFromClaims(claims)
		}
		c.Set("principal", principal)
		c.Set("id_token", tokenString)
		return next(c)
	}
}

func (m *TokenMiddleware) principalFromClaims(claims jwt.MapClaims) domain.Principal {
	p := domain.Principal{}
	p.UID, _ = claims["sub"].(string)
	p.Email, _ = claims["email"].(string)
	p.Role, _ = claims["role"].(string)
	p.AppRoleID, _ = claims["appRoleId"].(string)
	if p.Role == "" {
		switch p.Email {
		case m.ownerEmail:
			p.Role = domain.CoarseOwner
		case m.limitedEmail:
			p.Role = domain.CoarseLimited
		}
	}
	if p.AppRoleID == "" && p.Email == m.limitedEmail {
		p.AppRoleID = fallbackFrontDeskRoleID
	}
	return p
}

// degradedPrincipal recovers what it can from an unverifiable token: the
// email claim feeds the legacy table, nothing else is trusted.
func (m *TokenMiddleware) degradedPrincipal(tokenString string) domain.Principal {
	p := domain.Principal{Degraded: true}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err == nil {
		p.Email, _ = claims["email"].(string)
		p.UID, _ = claims["sub"].(string)
	}
	switch p.Email {
	case m.ownerEmail:
		p.Role = domain.CoarseOwner
	case m.limitedEmail:
		p.Role = domain.CoarseLimited
		p.AppRoleID = fallbackFrontDeskRoleID
	}
	return p
}
