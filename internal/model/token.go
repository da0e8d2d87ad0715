package model

import "time"

// RevokedToken models an entry in the `revoked_tokens` table.  A row only
// matters until ExpiresAt: after that the token fails verification on its
// own and the row can be purged.
//
// Fields:
//
//	JTI       – the token's unique id claim.
//	UserID    – subject the token was issued to.
//	ExpiresAt – the token's own expiry.
//	RevokedAt – when logout happened.
type RevokedToken struct {
	JTI       string    // revoked_tokens.jti
	UserID    uint64    // revoked_tokens.user_id
	ExpiresAt time.Time // revoked_tokens.expires_at
	RevokedAt time.Time // revoked_tokens.revoked_at
}
