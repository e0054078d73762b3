package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/savegatehq/savegate/internal/database"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// PostgreSQLAuditEntryRepository implements AuditEntry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditEntryRepository struct {
	db *sql.DB
}

// Append inserts a new AuditEntry into the PostgreSQL database. Entries are
// immutable once written; there is no update path. Returns an error if
// database insertion fails.
func (p *PostgreSQLAuditEntryRepository) Append(
	ctx context.Context,
	entry *entitlementDomain.AuditEntry,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_entries (id, action, capability_id, game_scope, outcome, detail, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
func (p *PostgreSQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*entitlementDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, action, capability_id, game_scope, outcome, detail, created_at
			  FROM audit_entries
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

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
		var outcome string

		err := rows.Scan(
			&entry.ID,
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

		entry.Outcome = entitlementDomain.Outcome(outcome)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// Count returns the total number of audit entries.
func (p *PostgreSQLAuditEntryRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_entries`

	var count int64
	err := querier.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries")
	}

	return count, nil
}

// CountByOutcome returns the number of audit entries with the given outcome.
func (p *PostgreSQLAuditEntryRepository) CountByOutcome(
	ctx context.Context,
	outcome entitlementDomain.Outcome,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM audit_entries WHERE outcome = $1`

	var count int64
	err := querier.QueryRowContext(ctx, query, string(outcome)).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit entries by outcome")
	}

	return count, nil
}

// DeleteOlderThan removes audit entries recorded before the cutoff and returns
// the number of rows removed.
func (p *PostgreSQLAuditEntryRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM audit_entries WHERE created_at < $1`

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

// NewPostgreSQLAuditEntryRepository creates a new PostgreSQL AuditEntry repository.
func NewPostgreSQLAuditEntryRepository(db *sql.DB) *PostgreSQLAuditEntryRepository {
	return &PostgreSQLAuditEntryRepository{db: db}
}
