package dto

import (
	"encoding/hex"
	"time"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
)

// AdminTokenResponse represents an admin token in API responses. The field
// set and encoding match the token file exactly, so a client can base64 a
// response body and present it as a Bearer credential unchanged.
type AdminTokenResponse struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Nonce     string    `json:"nonce"`
	Signature string    `json:"signature"`
	Method    string    `json:"method"`
}

// MapAdminTokenToResponse converts a domain admin token to an API response.
func MapAdminTokenToResponse(token *adminDomain.AdminToken) AdminTokenResponse {
	return AdminTokenResponse{
		ID:        token.ID,
		Scope:     token.Scope,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		Nonce:     hex.EncodeToString(token.Nonce[:]),
		Signature: token.Signature,
		Method:    string(token.Method),
	}
}

// ToDomain reverses MapAdminTokenToResponse for presented credentials.
// Nothing is authenticated here; the caller validates the result against
// the signing key. Returns ErrMalformedToken when the payload cannot even
// be shaped into a token.
func (r *AdminTokenResponse) ToDomain() (*adminDomain.AdminToken, error) {
	nonce, err := hex.DecodeString(r.Nonce)
	if err != nil || len(nonce) != adminDomain.NonceSize {
		return nil, adminDomain.ErrMalformedToken
	}

	token := &adminDomain.AdminToken{
		ID:        r.ID,
		Scope:     r.Scope,
		IssuedAt:  r.IssuedAt,
		ExpiresAt: r.ExpiresAt,
		Signature: r.Signature,
		Method:    adminDomain.Method(r.Method),
	}
	copy(token.Nonce[:], nonce)

	return token, nil
}

// BreakGlassChallengeResponse carries today's challenge for this machine.
type BreakGlassChallengeResponse struct {
	Challenge string `json:"challenge"`
}

// DiagnosticsResponse represents the support snapshot in API responses.
type DiagnosticsResponse struct {
	TokenPresent       bool       `json:"token_present"`
	TokenValid         bool       `json:"token_valid"`
	TokenScope         string     `json:"token_scope,omitempty"`
	TokenExpiresAt     *time.Time `json:"token_expires_at,omitempty"`
	ActiveCapabilities int64      `json:"active_capabilities"`
	AuditEntries       int64      `json:"audit_entries"`
	StoreHealthy       bool       `json:"store_healthy"`
}

// MapDiagnosticsToResponse converts a domain diagnostics snapshot to an API
// response.
func MapDiagnosticsToResponse(diagnostics *adminDomain.Diagnostics) DiagnosticsResponse {
	return DiagnosticsResponse{
		TokenPresent:       diagnostics.TokenPresent,
		TokenValid:         diagnostics.TokenValid,
		TokenScope:         diagnostics.TokenScope,
		TokenExpiresAt:     diagnostics.TokenExpiresAt,
		ActiveCapabilities: diagnostics.ActiveCapabilities,
		AuditEntries:       diagnostics.AuditEntries,
		StoreHealthy:       diagnostics.StoreHealthy,
	}
}
