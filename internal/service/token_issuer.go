package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/utils"
)

// Token lifetimes per credential class.
const (
	PinTokenTTL      = 3600 * time.Second
	PasswordTokenTTL = 32400 * time.Second
)

// TokenIssuer mints, verifies and revokes access tokens.  A token is valid
// from issuance until the earlier of its expiry or its revocation.
type TokenIssuer struct {
	secret string
	issuer string
	store  RevocationStore
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret.  store may be nil,
// in which case tokens cannot be revoked and Invalidate fails.
func NewTokenIssuer(secret, issuer string, store RevocationStore) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer, store: store, now: time.Now}
}

// IssueFor mints a token for u valid for ttl.
func (t *TokenIssuer) IssueFor(u *model.User, ttl time.Duration) (utils.AccessToken, error) {
	return utils.NewAccessToken(t.secret, t.issuer, u.ID, ttl, t.now())
}

// Verify checks signature, issuer, expiry and revocation of raw.  Every
// failure is reported as ErrUnauthenticated; a store failure is returned
// wrapped so callers can log it.
func (t *TokenIssuer) Verify(ctx context.Context, raw string) (utils.TokenClaims, error) {
	claims, err := utils.ParseAccessToken(t.secret, t.issuer, raw, true, t.now())
	if err != nil {
		return utils.TokenClaims{}, ErrUnauthenticated
	}
	if claims.ID == "" {
		return utils.TokenClaims{}, ErrUnauthenticated
	}
	if t.store != nil {
		revoked, err := t.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return utils.TokenClaims{}, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return utils.TokenClaims{}, ErrUnauthenticated
		}
	}
	return claims, nil
}

// Invalidate revokes raw permanently.  The signature must be valid but the
// token may already be expired; revoking twice is not an error.
func (t *TokenIssuer) Invalidate(ctx context.Context, raw string) (utils.TokenClaims, error) {
	claims, err := utils.ParseAccessToken(t.secret, "", raw, false, t.now())
	if err != nil || claims.ID == "" {
		return utils.TokenClaims{}, ErrUnauthenticated
	}
	if t.store == nil {
		return utils.TokenClaims{}, fmt.Errorf("no revocation store configured")
	}
	if err := t.store.Revoke(ctx, claims.ID, claims.UserID, claims.Exp); err != nil {
		return utils.TokenClaims{}, fmt.Errorf("revoke token: %w", err)
	}
	return claims, nil
}

// ExtractToken pulls a bearer token from the Authorization header.  The
// scheme is matched case-insensitively.
func ExtractToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", false
	}
	return tok, true
}
