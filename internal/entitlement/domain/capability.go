package domain

import (
	"strings"
	"time"
)

// TimeLayout is the timestamp format used inside canonical signing strings.
// Fixed-width milliseconds keep the canonical form byte-stable across
// platforms and round trips through storage.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// WildcardScope matches every game scope.
const WildcardScope = "*"

// noExpiry is the canonical-string placeholder for capabilities that never expire.
const noExpiry = "NONE"

// Capability grants one action on one game scope for a bounded or unbounded
// time. The signature covers every other field, so mutating any of them
// invalidates it. Revocation state lives in the store, never in the payload:
// a copied capability cannot shed its revocation.
type Capability struct {
	ID        string
	Action    Action
	GameScope string
	IssuedAt  time.Time
	ExpiresAt *time.Time
	Signature string
}

// CanonicalString builds the exact byte sequence covered by the signature:
//
//	{id}|{action}|{game_scope}|{issued_at}|{expires_at or NONE}
//
// Field order, separator, and timestamp layout are frozen; changing any of
// them invalidates every previously issued capability.
func (c *Capability) CanonicalString() string {
	expiresAt := noExpiry
	if c.ExpiresAt != nil {
		expiresAt = c.ExpiresAt.UTC().Format(TimeLayout)
	}

	return strings.Join([]string{
		c.ID,
		string(c.Action),
		c.GameScope,
		c.IssuedAt.UTC().Format(TimeLayout),
		expiresAt,
	}, "|")
}

// IsExpired reports whether the capability's expiry has passed at the given
// instant. Capabilities without an expiry never expire.
func (c *Capability) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// MatchesScope reports whether the capability covers the requested game
// scope. A stored wildcard covers everything; otherwise scopes compare
// case-insensitively so "EldenRing" and "eldenring" are the same game.
func (c *Capability) MatchesScope(gameScope string) bool {
	return c.GameScope == WildcardScope || strings.EqualFold(c.GameScope, gameScope)
}
