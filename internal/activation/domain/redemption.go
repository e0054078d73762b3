package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RedemptionRecord marks one activation code as redeemed on one machine.
// Redemption is machine-bound rather than globally tracked, so the same
// code can activate the tool on a second machine without a license server.
type RedemptionRecord struct {
	CodeHash   string
	MachineID  string
	GameScope  string
	RedeemedAt time.Time
}

// HashCode returns the redemption-store key for a code: the SHA-256 hex of
// its normalized form. Only the hash is persisted, so a copied database
// never yields redeemable codes.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(NormalizeCode(code)))
	return hex.EncodeToString(sum[:])
}
