package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/insightdelivered/finance-tracker/internal/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

const transactionColumns = `id::text, user_id::text, amount::float8, type, category,
		to_char(date, 'YYYY-MM-DD'), note, created_at`

const insertTransactionRow = `INSERT INTO transactions (id, user_id, amount, type, category, date, note)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7)`

const insertTransaction = insertTransactionRow + `
		 RETURNING created_at`

// CreateTransaction stores t for its UserID and returns it with ID and CreatedAt set.
func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = uuid.NewString()
	err := s.db.QueryRow(ctx, insertTransaction,
		t.ID, t.UserID, t.Amount, string(t.Type), string(t.Category), t.Date, t.Note,
	).Scan(&t.CreatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	return t, nil
}

// CreateTransactions stores a batch for one user in a single database
// transaction. Either every row is written or none is.
func (s *Store) CreateTransactions(ctx context.Context, userID string, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	for i, t := range txs {
		_, err := tx.Exec(ctx, insertTransactionRow,
			uuid.NewString(), userID, t.Amount, string(t.Type), string(t.Category), t.Date, t.Note,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Info("stored transaction batch", "user_id", userID, "count", len(txs))
	return len(txs), nil
}

// NormalizeFilter applies the default page and clamps the page size.
func NormalizeFilter(f models.TransactionFilter) models.TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// ListTransactions returns one page of the user's transactions, newest date first.
func (s *Store) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) (models.TransactionPage, error) {
	f = NormalizeFilter(f)
	where, args := whereClause(userID, f.Type, f.Start, f.End)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE `+where, args...).Scan(&total); err != nil {
		return models.TransactionPage{}, fmt.Errorf("counting transactions: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s
		 ORDER BY date DESC, created_at DESC
		 LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)+1, len(args)+2)

	txs, err := s.queryTransactions(ctx, query, append(args, f.Limit, offset)...)
	if err != nil {
		return models.TransactionPage{}, err
	}

	return models.TransactionPage{
		Transactions: txs,
		Total:        total,
		Page:         f.Page,
		TotalPages:   (total + f.Limit - 1) / f.Limit,
	}, nil
}

// AllTransactions returns every transaction of the user, newest date first.
// start and end are optional inclusive YYYY-MM-DD bounds.
func (s *Store) AllTransactions(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	where, args := whereClause(userID, "", start, end)
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s
		 ORDER BY date DESC, created_at DESC`, transactionColumns, where)
	return s.queryTransactions(ctx, query, args...)
}

// DeleteTransaction removes one of the user's transactions. Rows owned by
// someone else are reported as ErrNotFound.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var (
		t        models.Transaction
		typ, cat string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &typ, &cat, &t.Date, &t.Note, &t.CreatedAt); err != nil {
		return models.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}
	t.Type = models.TxType(typ)
	t.Category = models.Category(cat)
	return t, nil
}

func whereClause(userID string, typ models.TxType, start, end string) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	if typ != "" {
		args = append(args, string(typ))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if start != "" {
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if end != "" {
		args = append(args, end)
		conds = append(conds, fmt.Sprintf("date <= $%d::date", len(args)))
	}
	return strings.Join(conds, " AND "), args
}
