package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	"github.com/savegatehq/savegate/internal/database"
	apperrors "github.com/savegatehq/savegate/internal/errors"
)

// MySQLRedemptionRepository implements RedemptionRecord persistence for MySQL.
// The (code_hash, machine_id) primary key holds one redemption per code per
// machine; concurrent redeemers race on the insert and the loser sees
// ErrAlreadyRedeemed. Uses transaction support via database.GetTx().
type MySQLRedemptionRepository struct {
	db *sql.DB
}

// IsRedeemed reports whether the code hash has already been redeemed on the machine.
func (m *MySQLRedemptionRepository) IsRedeemed(
	ctx context.Context,
	codeHash, machineID string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM code_redemptions
				  WHERE code_hash = ? AND machine_id = ?
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
func (m *MySQLRedemptionRepository) MarkRedeemed(
	ctx context.Context,
	record *activationDomain.RedemptionRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO code_redemptions (code_hash, machine_id, game_scope, redeemed_at)
			  VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.CodeHash,
		record.MachineID,
		record.GameScope,
		record.RedeemedAt,
	)
	if err != nil {
		// Check for duplicate entry error (MySQL error number 1062)
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return activationDomain.ErrAlreadyRedeemed
		}
		return apperrors.Wrap(err, "failed to mark code redeemed")
	}
	return nil
}

// CountByMachine returns the number of codes redeemed on the machine.
func (m *MySQLRedemptionRepository) CountByMachine(
	ctx context.Context,
	machineID string,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM code_redemptions WHERE machine_id = ?`

	var count int64
	err := querier.QueryRowContext(ctx, query, machineID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count redemptions by machine")
	}

	return count, nil
}

// NewMySQLRedemptionRepository creates a new MySQL RedemptionRecord repository.
func NewMySQLRedemptionRepository(db *sql.DB) *MySQLRedemptionRepository {
	return &MySQLRedemptionRepository{db: db}
}
