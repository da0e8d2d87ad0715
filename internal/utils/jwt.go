package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"  // sentinel errors for malformed subjects
	"strconv" // user ids travel as decimal strings in the sub claim
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // random token ids for revocation lookups
)

// ErrInvalidSubject is returned when a token's sub claim is not a user id.
var ErrInvalidSubject = errors.New("invalid token subject")

// AccessToken represents a signed JWT access token along with its claims.
// ID is the jti claim; it is the handle used to revoke the token later.
type AccessToken struct {
	Token    string    // the serialized JWT string
	ID       string    // jti claim
	IssuedAt time.Time // the UTC issue time
	Exp      time.Time // the UTC expiration time
}

// TokenClaims is the parsed form of an access token.
type TokenClaims struct {
	UserID   uint64
	ID       string
	IssuedAt time.Time
	Exp      time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// carries only registered claims: subject (sub), token id (jti), issuer
// (iss), issued at (iat) and expiration (exp).  The caller picks the TTL.
func NewAccessToken(secret, issuer string, userID uint64, ttl time.Duration, now time.Time) (AccessToken, error) {
	now = now.UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	// Create a new token object specifying the signing method (HS256).
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: id, IssuedAt: now, Exp: exp}, nil
}

// ParseAccessToken verifies the signature of raw and returns its claims.
// Only HS256 is accepted.  When checkExpiry is false an expired token is
// still returned; this lets logout revoke a token regardless of its age.
func ParseAccessToken(secret, issuer, raw string, checkExpiry bool, now time.Time) (TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return TokenClaims{}, err
	}
	if !tok.Valid {
		return TokenClaims{}, jwt.ErrTokenInvalidClaims
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return TokenClaims{}, ErrInvalidSubject
	}
	out := TokenClaims{UserID: uid, ID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Time
	}
	return out, nil
}
