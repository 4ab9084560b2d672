package storage

import (
	"context"
	"database/sql"
)

// Queries is a thin query layer over the database handle. Every method maps
// to a single statement so the repository stays readable.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *TxQueries {
	return &TxQueries{tx: tx}
}

type TxQueries struct {
	tx *sql.Tx
}

type TransactionRow struct {
	ID           int64
	Date         string
	Description  string
	AmountCents  int64
	Type         string
	Category     string
	Account      string
	MirrorStatus string
	CreatedAt    sql.NullTime
}

type AccountRow struct {
	ID   int64
	Name string
	Type string
}

type CategoryRow struct {
	ID   int64
	Name string
	Kind string
}

const transactionColumns = `
	t.id, t.date, t.description, t.amount_cents, t.type,
	c.name, a.name, t.mirror_status, t.created_at
FROM transactions t
JOIN categories c ON c.id = t.category_id
JOIN accounts a ON a.id = t.account_id`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.AmountCents, &t.Type,
		&t.Category, &t.Account, &t.MirrorStatus, &t.CreatedAt)
	return t, err
}

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+transactionColumns+`
ORDER BY t.date DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+transactionColumns+`
WHERE t.id = ?`, id)
	return scanTransaction(row)
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *TxQueries) InsertTransaction(ctx context.Context, date, description string, amountCents int64, txType string, categoryID, accountID int64) (int64, error) {
	res, err := q.tx.ExecContext(ctx, `INSERT INTO transactions (date, description, amount_cents, type, category_id, account_id)
VALUES (?, ?, ?, ?, ?, ?)`, date, description, amountCents, txType, categoryID, accountID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *TxQueries) UpsertCategory(ctx context.Context, name, kind string) (int64, error) {
	var id int64
	err := q.tx.QueryRowContext(ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET kind = excluded.kind
RETURNING id`, name, kind).Scan(&id)
	return id, err
}

func (q *TxQueries) UpsertAccount(ctx context.Context, name, accountType string) (int64, error) {
	var id int64
	err := q.tx.QueryRowContext(ctx, `INSERT INTO accounts (name, type) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET name = excluded.name
RETURNING id`, name, accountType).Scan(&id)
	return id, err
}

func (q *Queries) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, type FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountRow
	for rows.Next() {
		var a AccountRow
		if err := rows.Scan(&a.ID, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *Queries) CreateAccount(ctx context.Context, name, accountType string) (AccountRow, error) {
	var a AccountRow
	err := q.db.QueryRowContext(ctx, `INSERT INTO accounts (name, type) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET type = excluded.type
RETURNING id, name, type`, name, accountType).Scan(&a.ID, &a.Name, &a.Type)
	return a, err
}

func (q *Queries) CountTransactionsByAccount(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, kind FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) CreateCategory(ctx context.Context, name, kind string) (CategoryRow, error) {
	var c CategoryRow
	err := q.db.QueryRowContext(ctx, `INSERT INTO categories (name, kind) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET kind = excluded.kind
RETURNING id, name, kind`, name, kind).Scan(&c.ID, &c.Name, &c.Kind)
	return c, err
}

func (q *Queries) ListPendingMirror(ctx context.Context, limit int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM transactions
WHERE mirror_status = 'pending'
ORDER BY created_at ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) MarkMirrored(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE transactions
SET mirror_status = 'mirrored', mirror_error = NULL, mirrored_at = CURRENT_TIMESTAMP
WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkMirrorError(ctx context.Context, id int64, message string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE transactions
SET mirror_status = 'error', mirror_error = ?
WHERE id = ?`, message, id)
	return err
}
