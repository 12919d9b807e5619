package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mobiwallet/ledger/internal/domain"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	var metadata []byte
	if tx.Metadata != nil {
		var err error
		metadata, err = json.Marshal(tx.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO transactions (
			reference_id, owner_id, kind, currency, amount, fee,
			status, description, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		tx.ReferenceID,
		tx.OwnerID,
		string(tx.Kind),
		tx.Currency,
		decimalToNumeric(tx.Amount),
		decimalToNumeric(tx.Fee),
		string(tx.Status),
		tx.Description,
		metadata,
		timeToPgTimestamptz(tx.CreatedAt),
		timeToPgTimestamptz(tx.UpdatedAt),
	)

	return err
}

// Get retrieves a transaction by reference id.
func (r *TransactionRepository) Get(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	query := `
		SELECT reference_id, owner_id, kind, currency, amount, fee,
		       status, description, metadata, created_at, updated_at
		FROM transactions
		WHERE reference_id = $1
	`

	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return tx, nil
}

// UpdateStatus advances the status of a transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, referenceID string, status domain.TransactionStatus, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, updated_at = $3
		WHERE reference_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, referenceID, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByOwner lists an owner's transactions, newest first.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT reference_id, owner_id, kind, currency, amount, fee,
		       status, description, metadata, created_at, updated_at
		FROM transactions
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListPendingOlderThan lists pending transactions created before cutoff,
// oldest first.
func (r *TransactionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT reference_id, owner_id, kind, currency, amount, fee,
		       status, description, metadata, created_at, updated_at
		FROM transactions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, string(domain.StatusPending), timeToPgTimestamptz(cutoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		kind      string
		status    string
		amount    pgtype.Numeric
		fee       pgtype.Numeric
		metadata  []byte
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&tx.ReferenceID,
		&tx.OwnerID,
		&kind,
		&tx.Currency,
		&amount,
		&fee,
		&status,
		&tx.Description,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Kind = domain.TransactionKind(kind)
	tx.Status = domain.TransactionStatus(status)
	tx.Amount = numericToDecimal(amount)
	tx.Fee = numericToDecimal(fee)
	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return nil, err
		}
	}

	return &tx, nil
}
