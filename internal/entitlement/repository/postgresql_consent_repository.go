package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/savegatehq/savegate/internal/database"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// PostgreSQLConsentRepository implements ConsentRecord persistence for PostgreSQL.
// Game scopes are normalized to lower case on write and lookup so consent
// matching stays case-insensitive across both database backends. Uses
// transaction support via database.GetTx().
type PostgreSQLConsentRepository struct {
	db *sql.DB
}

// Record inserts a ConsentRecord or replaces the existing record for the same
// game scope. Each scope carries at most one consent record; re-consenting
// after a consent text update overwrites the old version.
func (p *PostgreSQLConsentRepository) Record(
	ctx context.Context,
	record *entitlementDomain.ConsentRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consent_records (game_scope, consent_version, consent_text_hash, accepted_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (game_scope) DO UPDATE
			  SET consent_version = EXCLUDED.consent_version,
				  consent_text_hash = EXCLUDED.consent_text_hash,
				  accepted_at = EXCLUDED.accepted_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		strings.ToLower(record.GameScope),
		record.ConsentVersion,
		record.ConsentTextHash,
		record.AcceptedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to record consent")
	}
	return nil
}

// Get retrieves the consent record for a game scope. Returns
// ErrConsentNotFound if no consent has been recorded for the scope.
func (p *PostgreSQLConsentRepository) Get(
	ctx context.Context,
	gameScope string,
) (*entitlementDomain.ConsentRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT game_scope, consent_version, consent_text_hash, accepted_at
			  FROM consent_records WHERE game_scope = $1`

	var record entitlementDomain.ConsentRecord

	err := querier.QueryRowContext(ctx, query, strings.ToLower(gameScope)).Scan(
		&record.GameScope,
		&record.ConsentVersion,
		&record.ConsentTextHash,
		&record.AcceptedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entitlementDomain.ErrConsentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get consent record")
	}

	return &record, nil
}

// HasConsent reports whether the scope holds a consent record at the given
// version or newer.
func (p *PostgreSQLConsentRepository) HasConsent(
	ctx context.Context,
	gameScope string,
	version int,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM consent_records
				  WHERE game_scope = $1 AND consent_version >= $2
			  )`

	var hasConsent bool
	err := querier.QueryRowContext(ctx, query, strings.ToLower(gameScope), version).Scan(&hasConsent)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check consent")
	}

	return hasConsent, nil
}

// NewPostgreSQLConsentRepository creates a new PostgreSQL ConsentRecord repository.
func NewPostgreSQLConsentRepository(db *sql.DB) *PostgreSQLConsentRepository {
	return &PostgreSQLConsentRepository{db: db}
}
