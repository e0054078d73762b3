// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
)

// CapabilityResponse represents a capability in API responses.
// The signature is included so diagnostics views can show the full payload;
// it is useless without the store anyway, revocation lives server side.
type CapabilityResponse struct {
	ID        string     `json:"id"`
	Action    string     `json:"action"`
	GameScope string     `json:"game_scope"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Signature string     `json:"signature"`
}

// MapCapabilityToResponse converts a domain capability to an API response.
func MapCapabilityToResponse(capability *entitlementDomain.Capability) CapabilityResponse {
	return CapabilityResponse{
		ID:        capability.ID,
		Action:    string(capability.Action),
		GameScope: capability.GameScope,
		IssuedAt:  capability.IssuedAt,
		ExpiresAt: capability.ExpiresAt,
		Signature: capability.Signature,
	}
}

// PurgeResponse contains the result of purging expired capabilities.
type PurgeResponse struct {
	Purged int64 `json:"purged"`
}

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	CapabilityID string    `json:"capability_id,omitempty"`
	GameScope    string    `json:"game_scope,omitempty"`
	Outcome      string    `json:"outcome"`
	Detail       string    `json:"detail,omitempty"`
}

// MapAuditEntryToResponse converts a domain audit entry to an API response.
func MapAuditEntryToResponse(entry *entitlementDomain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:           entry.ID.String(),
		Timestamp:    entry.Timestamp,
		Action:       entry.Action,
		CapabilityID: entry.CapabilityID,
		GameScope:    entry.GameScope,
		Outcome:      string(entry.Outcome),
		Detail:       entry.Detail,
	}
}

// ListAuditEntriesResponse represents a paginated list of audit entries in API
// responses. Total carries the unpaginated entry count.
type ListAuditEntriesResponse struct {
	Data  []AuditEntryResponse `json:"data"`
	Total int64                `json:"total"`
}

// MapAuditEntriesToListResponse converts a slice of domain audit entries to a
// list API response.
func MapAuditEntriesToListResponse(
	entries []*entitlementDomain.AuditEntry,
	total int64,
) ListAuditEntriesResponse {
	entryResponses := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		entryResponses = append(entryResponses, MapAuditEntryToResponse(entry))
	}
	return ListAuditEntriesResponse{
		Data:  entryResponses,
		Total: total,
	}
}

// ConsentResponse represents a consent record in API responses. Current
// reports whether the record satisfies the consent version this build ships.
type ConsentResponse struct {
	GameScope       string    `json:"game_scope"`
	ConsentVersion  int       `json:"consent_version"`
	ConsentTextHash string    `json:"consent_text_hash"`
	AcceptedAt      time.Time `json:"accepted_at"`
	Current         bool      `json:"current"`
}

// MapConsentToResponse converts a domain consent record to an API response.
func MapConsentToResponse(record *entitlementDomain.ConsentRecord, current bool) ConsentResponse {
	return ConsentResponse{
		GameScope:       record.GameScope,
		ConsentVersion:  record.ConsentVersion,
		ConsentTextHash: record.ConsentTextHash,
		AcceptedAt:      record.AcceptedAt,
		Current:         current,
	}
}
