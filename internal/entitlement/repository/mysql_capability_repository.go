package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/savegatehq/savegate/internal/database"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// MySQLCapabilityRepository implements Capability persistence for MySQL.
// Uses transaction support via database.GetTx().
type MySQLCapabilityRepository struct {
	db *sql.DB
}

// Store inserts a Capability or replaces an existing row with the same ID.
// The revoked_at column is never touched by the upsert, so a revocation
// survives any later re-store of the same capability. Returns an error if
// database insertion fails.
func (m *MySQLCapabilityRepository) Store(
	ctx context.Context,
	capability *entitlementDomain.Capability,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO capabilities (id, action, game_scope, issued_at, expires_at, signature)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  action = VALUES(action),
				  game_scope = VALUES(game_scope),
				  issued_at = VALUES(issued_at),
				  expires_at = VALUES(expires_at),
				  signature = VALUES(signature)`

	_, err := querier.ExecContext(
		ctx,
		query,
		capability.ID,
		string(capability.Action),
		capability.GameScope,
		capability.IssuedAt,
		capability.ExpiresAt,
		capability.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to store capability")
	}
	return nil
}

// GetCapabilities retrieves candidate capabilities for an action and game scope
// in insertion order. Matching is deliberately loose here (wildcard rows match
// every scope, scope comparison is case-insensitive); the validator re-checks
// every candidate before it is trusted. Returns empty slice if nothing matches.
func (m *MySQLCapabilityRepository) GetCapabilities(
	ctx context.Context,
	action entitlementDomain.Action,
	gameScope string,
) ([]*entitlementDomain.Capability, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action, game_scope, issued_at, expires_at, signature
			  FROM capabilities
			  WHERE action = ?
				AND (game_scope = '*' OR LOWER(game_scope) = LOWER(?))
			  ORDER BY seq ASC`

	rows, err := querier.QueryContext(ctx, query, string(action), gameScope)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get capabilities")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	capabilities := make([]*entitlementDomain.Capability, 0)
	for rows.Next() {
		var capability entitlementDomain.Capability
		var actionValue string

		err := rows.Scan(
			&capability.ID,
			&actionValue,
			&capability.GameScope,
			&capability.IssuedAt,
			&capability.ExpiresAt,
			&capability.Signature,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan capability")
		}

		capability.Action = entitlementDomain.Action(actionValue)
		capabilities = append(capabilities, &capability)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate capabilities")
	}

	return capabilities, nil
}

// Revoke marks a capability as revoked. Revoking an already revoked or unknown
// capability is a no-op, so the operation is idempotent.
func (m *MySQLCapabilityRepository) Revoke(ctx context.Context, capabilityID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE capabilities SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`

	_, err := querier.ExecContext(ctx, query, time.Now().UTC(), capabilityID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke capability")
	}
	return nil
}

// IsRevoked reports whether a capability has been revoked. Unknown capability
// IDs report false; the validator rejects their signatures anyway.
func (m *MySQLCapabilityRepository) IsRevoked(ctx context.Context, capabilityID string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT revoked_at IS NOT NULL FROM capabilities WHERE id = ?`

	var revoked bool
	err := querier.QueryRowContext(ctx, query, capabilityID).Scan(&revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check capability revocation")
	}

	return revoked, nil
}

// PurgeExpired deletes capabilities that are past their expiry or have been
// revoked and returns the number of rows removed. Perpetual unrevoked
// capabilities are never purged.
func (m *MySQLCapabilityRepository) PurgeExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM capabilities
			  WHERE (expires_at IS NOT NULL AND expires_at < ?)
				 OR revoked_at IS NOT NULL`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge expired capabilities")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count purged capabilities")
	}

	return count, nil
}

// CountActive returns the number of capabilities that are neither revoked nor
// expired. Used by the diagnostics report.
func (m *MySQLCapabilityRepository) CountActive(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM capabilities
			  WHERE revoked_at IS NULL
				AND (expires_at IS NULL OR expires_at >= ?)`

	var count int64
	err := querier.QueryRowContext(ctx, query, time.Now().UTC()).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count active capabilities")
	}

	return count, nil
}

// NewMySQLCapabilityRepository creates a new MySQL Capability repository.
func NewMySQLCapabilityRepository(db *sql.DB) *MySQLCapabilityRepository {
	return &MySQLCapabilityRepository{db: db}
}
