package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAccountInUse = errors.New("account has transactions")
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// TransactionInput carries the fields needed to record a new transaction.
// Amount is a magnitude in cents; the sign is derived from Type.
type TransactionInput struct {
	Date        core.Date
	Description string
	AmountCents int64
	Type        core.TxType
	Category    string
	Account     string
}

// CreateTransaction records a transaction, creating its category and account
// by name when they do not exist yet. The row starts in mirror_status
// 'pending' so the mirror worker picks it up.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	kind := string(in.Type)
	categoryID, err := q.UpsertCategory(ctx, in.Category, kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("upsert category %q: %w", in.Category, err)
	}

	accountID, err := q.UpsertAccount(ctx, in.Account, "corrente")
	if err != nil {
		return core.Transaction{}, fmt.Errorf("upsert account %q: %w", in.Account, err)
	}

	signed := core.NormalizedAmount(in.Type, in.AmountCents).Cents
	id, err := q.InsertTransaction(ctx, in.Date.String(), in.Description, signed, string(in.Type), categoryID, accountID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	created := core.Transaction{
		ID:          id,
		Date:        in.Date,
		Description: in.Description,
		Amount:      core.Money{Cents: signed},
		Type:        in.Type,
		Category:    in.Category,
		Account:     in.Account,
		CreatedAt:   time.Now().UTC(),
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", in.Description,
		"amount_cents", signed,
		"date", in.Date.String())

	return created, nil
}

// ListTransactions returns the full transaction history, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return rowToTransaction(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, core.Account{ID: row.ID, Name: row.Name, Type: row.Type})
	}
	return accounts, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, name, accountType string) (core.Account, error) {
	row, err := r.queries.CreateAccount(ctx, name, accountType)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account %q: %w", name, err)
	}
	return core.Account{ID: row.ID, Name: row.Name, Type: row.Type}, nil
}

// DeleteAccount removes an account. Accounts referenced by transactions are
// protected and return ErrAccountInUse.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) error {
	count, err := r.queries.CountTransactionsByAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("count account transactions: %w", err)
	}
	if count > 0 {
		return ErrAccountInUse
	}

	affected, err := r.queries.DeleteAccount(ctx, id)
	if err != nil {
		// The count above races with concurrent inserts; the constraint is
		// still enforced by the database.
		if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
			return ErrAccountInUse
		}
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, core.Category{ID: row.ID, Name: row.Name, Kind: core.TxType(row.Kind)})
	}
	return categories, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name, kind string) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, name, kind)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", name, err)
	}
	return core.Category{ID: row.ID, Name: row.Name, Kind: core.TxType(row.Kind)}, nil
}

// ListPendingMirror returns IDs of transactions not yet mirrored to the sheet.
func (r *SQLiteRepository) ListPendingMirror(ctx context.Context, limit int) ([]int64, error) {
	ids, err := r.queries.ListPendingMirror(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	return ids, nil
}

// MarkMirrored marks a transaction as successfully mirrored to the sheet.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if err := r.queries.MarkMirrored(ctx, id); err != nil {
		return fmt.Errorf("mark transaction mirrored: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as mirrored", "id", id)
	return nil
}

// MarkMirrorError marks a transaction as having failed to mirror.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64, message string) error {
	if err := r.queries.MarkMirrorError(ctx, id, message); err != nil {
		return fmt.Errorf("mark transaction mirror error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with mirror error", "id", id, "reason", message)
	return nil
}

func rowToTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", row.Date, err)
	}
	t := core.Transaction{
		ID:          row.ID,
		Date:        date,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Type:        core.TxType(row.Type),
		Category:    row.Category,
		Account:     row.Account,
	}
	if row.CreatedAt.Valid {
		t.CreatedAt = row.CreatedAt.Time.UTC()
	}
	return t, nil
}
