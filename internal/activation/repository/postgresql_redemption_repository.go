package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	"github.com/savegatehq/savegate/internal/database"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// PostgreSQLRedemptionRepository implements RedemptionRecord persistence for
// PostgreSQL. The (code_hash, machine_id) primary key holds one redemption per
// code per machine; concurrent redeemers race on the insert and the loser sees
// ErrAlreadyRedeemed. Uses transaction support via database.GetTx().
type PostgreSQLRedemptionRepository struct {
	db *sql.DB
}

// IsRedeemed reports whether the code hash has already been redeemed on the machine.
func (p *PostgreSQLRedemptionRepository) IsRedeemed(
	ctx context.Context,
	codeHash, machineID string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM code_redemptions
				  WHERE code_hash = $1 AND machine_id = $2
			  )`

	var redeemed bool
	err := querier.QueryRowContext(ctx, query, codeHash, machineID).Scan(&redeemed)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check redemption")
	}

	return redeemed, nil
}

// MarkRedeemed inserts a RedemptionRecord. Returns ErrAlreadyRedeemed when the
// (code_hash, machine_id) pair already exists.
func (p *PostgreSQLRedemptionRepository) MarkRedeemed(
	ctx context.Context,
	record *activationDomain.RedemptionRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO code_redemptions (code_hash, machine_id, game_scope, redeemed_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.CodeHash,
		record.MachineID,
		record.GameScope,
		record.RedeemedAt,
	)
	if err != nil {
		// Check for unique violation error (PostgreSQL error code 23505)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return activationDomain.ErrAlreadyRedeemed
		}
		return apperrors.Wrap(err, "failed to mark code redeemed")
	}
	return nil
}

// CountByMachine returns the number of codes redeemed on the machine.
func (p *PostgreSQLRedemptionRepository) CountByMachine(
	ctx context.Context,
	machineID string,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM code_redemptions WHERE machine_id = $1`

	var count int64
	err := querier.QueryRowContext(ctx, query, machineID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count redemptions by machine")
	}

	return count, nil
}

// NewPostgreSQLRedemptionRepository creates a new PostgreSQL RedemptionRecord repository.
func NewPostgreSQLRedemptionRepository(db *sql.DB) *PostgreSQLRedemptionRepository {
	return &PostgreSQLRedemptionRepository{db: db}
}
