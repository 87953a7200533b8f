package authtoken

import (
	"academy/authority"
	"academy/infra/metrics"
	"academy/session"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

type Issuer struct {
	config      Config
	revocations *cache.Cache
	now         func() time.Time
}

func NewIssuer(config Config) *Issuer {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	return &Issuer{
		config:      config,
		revocations: cache.New(config.TTL, time.Minute),
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) TTL() time.Duration {
	return i.config.TTL
}

// Issue signs a token carrying a snapshot of the subject. Later role or grant changes are not
// reflected until a new token is issued.
func (i *Issuer) Issue(s Subject) (string, *Claims, error) {
	perms, err := authority.Normalize(s.Permissions)
	if err != nil {
		return "", nil, fmt.Errorf("issue token for %s: %w", s.Identity.Email, err)
	}
	roles := dedup(s.Roles)

	now := i.now().Truncate(time.Second)
	claims := &Claims{
		UserID:      s.Identity.ID,
		Email:       s.Identity.Email,
		FirstName:   s.Identity.FirstName,
		LastName:    s.Identity.LastName,
		Roles:       roles,
		Org:         s.Organization,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   s.Identity.Email,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.Secret)
	if err != nil {
		return "", nil, err
	}
	metrics.TokensIssuedTotal.Inc()
	return token, claims, nil
}

// Verify checks signature, issuer, expiry and revocation.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if _, revoked := i.revocations.Get(claims.ID); revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func (i *Issuer) Authenticate(token string) (*session.Session, error) {
	claims, err := i.Verify(token)
	if err != nil {
		return nil, err
	}
	return claims.ToSession(token), nil
}

// Revoke rejects the token id until the token would have expired anyway.
func (i *Issuer) Revoke(tokenID string, expiresAt time.Time) {
	if tokenID == "" {
		return
	}
	ttl := expiresAt.Sub(i.now())
	if ttl <= 0 {
		return
	}
	i.revocations.Set(tokenID, true, ttl)
}

func dedup(values []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
