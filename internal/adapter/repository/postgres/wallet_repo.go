package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mobiwallet/ledger/internal/domain"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Get retrieves the wallet for (ownerID, currency). A pair that has never
// been written reads as a fresh zero-balance wallet.
func (r *WalletRepository) Get(ctx context.Context, ownerID, currency string) (*domain.Wallet, error) {
	query := `
		SELECT owner_id, currency, balance, locked_balance, version, created_at, updated_at
		FROM wallets
		WHERE owner_id = $1 AND currency = $2
	`

	var (
		wallet    domain.Wallet
		balance   pgtype.Numeric
		locked    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query, ownerID, currency).Scan(
		&wallet.OwnerID,
		&wallet.Currency,
		&balance,
		&locked,
		&wallet.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewWallet(ownerID, currency), nil
		}
		return nil, err
	}

	wallet.Balance = numericToDecimal(balance)
	wallet.LockedBalance = numericToDecimal(locked)
	wallet.CreatedAt = createdAt.Time
	wallet.UpdatedAt = updatedAt.Time

	return &wallet, nil
}

// Save persists the wallet if the stored version still equals
// previousVersion. previousVersion zero inserts a new row; a concurrent
// writer in either path surfaces as domain.ErrVersionConflict.
func (r *WalletRepository) Save(ctx context.Context, wallet *domain.Wallet, previousVersion int64) error {
	if previousVersion == 0 {
		query := `
			INSERT INTO wallets (owner_id, currency, balance, locked_balance, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (owner_id, currency) DO NOTHING
		`

		tag, err := r.pool.Exec(ctx, query,
			wallet.OwnerID,
			wallet.Currency,
			decimalToNumeric(wallet.Balance),
			decimalToNumeric(wallet.LockedBalance),
			wallet.Version,
			timeToPgTimestamptz(wallet.CreatedAt),
			timeToPgTimestamptz(wallet.UpdatedAt),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}
		return nil
	}

	query := `
		UPDATE wallets
		SET balance = $3, locked_balance = $4, version = $5, updated_at = $6
		WHERE owner_id = $1 AND currency = $2 AND version = $7
	`

	tag, err := r.pool.Exec(ctx, query,
		wallet.OwnerID,
		wallet.Currency,
		decimalToNumeric(wallet.Balance),
		decimalToNumeric(wallet.LockedBalance),
		wallet.Version,
		timeToPgTimestamptz(wallet.UpdatedAt),
		previousVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
