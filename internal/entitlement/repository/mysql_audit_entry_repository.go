package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/savegatehq/savegate/internal/database"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// MySQLAuditEntryRepository implements AuditEntry persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditEntryRepository struct {
	db *sql.DB
}

// Append inserts a new AuditEntry into the MySQL database using BINARY(16) for
// UUIDs. Entries are immutable once written; there is no update path. Returns
// an error if UUID marshaling or database insertion fails.
func (m *MySQLAuditEntryRepository) Append(
	ctx context.Context,
	entry *entitlementDomain.AuditEntry,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_entries (id, action, capability_id, game_scope, outcome, detail, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.Action,
		entry.CapabilityID,
		entry.GameScope,
		string(entry.Outcome),
		entry.Detail,
		entry.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to append audit entry")
	}

	return nil
}

// List retrieves audit entries ordered by ID descending (newest first) with
// pagination. UUIDv7 identifiers keep the ID order aligned with insertion
// time. Returns empty slice if no entries found.
func (m *MySQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*entitlementDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, action, capability_id, game_scope, outcome, detail, created_at
			  FROM audit_entries
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	entries := make([]*entitlementDomain.AuditEntry, 0)
	for rows.Next() {
		var entry entitlementDomain.AuditEntry
		var idBytes []byte
		var outcome string

		err := rows.Scan(
			&idBytes,
			&entry.Action,
			&entry.CapabilityID,
			&entry.GameScope,
			&outcome,
			&entry.Detail,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
		}

		entry.Outcome = entitlementDomain.Outcome(outcome)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// Count returns the total number of audit entries.
func (m *MySQLAuditEntryRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM audit_entries`

	var count int64
	err := querier.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries")
	}

	return count, nil
}

// CountByOutcome returns the number of audit entries with the given outcome.
func (m *MySQLAuditEntryRepository) CountByOutcome(
	ctx context.Context,
	outcome entitlementDomain.Outcome,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM audit_entries WHERE outcome = ?`

	var count int64
	err := querier.QueryRowContext(ctx, query, string(outcome)).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries by outcome")
	}

	return count, nil
}

// DeleteOlderThan removes audit entries recorded before the cutoff and returns
// the number of rows removed.
func (m *MySQLAuditEntryRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM audit_entries WHERE created_at < ?`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete old audit entries")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted audit entries")
	}

	return count, nil
}

// NewMySQLAuditEntryRepository creates a new MySQL AuditEntry repository.
func NewMySQLAuditEntryRepository(db *sql.DB) *MySQLAuditEntryRepository {
	return &MySQLAuditEntryRepository{db: db}
}
