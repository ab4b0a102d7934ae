package utils

import (
	"context"
	"time"
)

// RevokedTokenPrefix is the cache key prefix of logged-out token hashes.
const RevokedTokenPrefix = "revoked:"

// TokenDenyList remembers logged-out tokens until they would have expired.
type TokenDenyList struct {
	cache Cache
	now   func() time.Time
}

func NewTokenDenyList(cache Cache) *TokenDenyList {
	return &TokenDenyList{cache: cache, now: time.Now}
}

// Revoke stores the token hash until expiresAt. Already-expired tokens are ignored.
func (d *TokenDenyList) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.cache.Set(ctx, RevokedTokenPrefix+HashToken(token), []byte("1"), ttl)
}

// IsRevoked reports whether the token was logged out.
func (d *TokenDenyList) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, found, err := d.cache.Get(ctx, RevokedTokenPrefix+HashToken(token))
	return found, err
}
