package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransactionKind is returned by Append for a kind outside
// {stock_orders, sales}.
var ErrInvalidTransactionKind = &DomainError{
	Kind:    KindValidation,
	Message: "transaction type must be 'stock_orders' or 'sales'",
}

// LedgerService is the append-only store of dated stock and cash events and
// the single source of truth for point-in-time state. Rows are never updated
// or deleted; every read aggregates fresh over the log as of a date.
type LedgerService interface {
	// Append inserts one immutable record and returns its insertion id.
	// itemName and units are nil for pure cash events.
	Append(ctx context.Context, itemName *string, kind TransactionKind, units *int, price decimal.Decimal, date time.Time) (int64, error)
	// StockAsOf returns net units of an item on or before date. Absence is 0.
	StockAsOf(ctx context.Context, itemName string, asOf time.Time) (int, error)
	// AllStockAsOf returns net stock per item, restricted to strictly
	// positive balances.
	AllStockAsOf(ctx context.Context, asOf time.Time) (map[string]int, error)
	// CashAsOf returns sales receipts minus stock purchases on or before
	// date, pure cash events included.
	CashAsOf(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
	// RecentTransactions returns the newest ledger rows, highest id first.
	RecentTransactions(ctx context.Context, limit int) ([]Transaction, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// aggregation queries serve standalone reads and TX-scoped fulfillment reads.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Pool exposes the underlying pool for TX-scoped callers (fulfillment).
func (l *Ledger) Pool() *pgxpool.Pool { return l.pool }

func (l *Ledger) Append(ctx context.Context, itemName *string, kind TransactionKind, units *int, price decimal.Decimal, date time.Time) (int64, error) {
	return appendTx(ctx, l.pool, itemName, kind, units, price, date)
}

func (l *Ledger) StockAsOf(ctx context.Context, itemName string, asOf time.Time) (int, error) {
	return stockAsOfTx(ctx, l.pool, itemName, asOf)
}

func (l *Ledger) AllStockAsOf(ctx context.Context, asOf time.Time) (map[string]int, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT item_name,
		       SUM(CASE
		           WHEN transaction_type = 'stock_orders' THEN units
		           WHEN transaction_type = 'sales' THEN -units
		           ELSE 0
		       END) AS stock
		FROM transactions
		WHERE item_name IS NOT NULL AND transaction_date <= $1
		GROUP BY item_name
		HAVING SUM(CASE
		           WHEN transaction_type = 'stock_orders' THEN units
		           WHEN transaction_type = 'sales' THEN -units
		           ELSE 0
		       END) > 0
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock snapshot: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var name string
		var units int
		if err := rows.Scan(&name, &units); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock[name] = units
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock rows: %w", err)
	}
	return stock, nil
}

func (l *Ledger) CashAsOf(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	return cashAsOfTx(ctx, l.pool, asOf)
}

func (l *Ledger) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, item_name, transaction_type, units, price, transaction_date
		FROM transactions
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.ItemName, &t.Kind, &t.Units, &t.Price, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txs, nil
}

// ── Shared aggregation queries ────────────────────────────────────────────────

// appendTx validates and inserts one ledger row via q (pool or open TX).
// An insert is a single statement, so each append is individually atomic and
// totally ordered by the assigned id.
func appendTx(ctx context.Context, q querier, itemName *string, kind TransactionKind, units *int, price decimal.Decimal, date time.Time) (int64, error) {
	if kind != StockOrders && kind != Sales {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidTransactionKind, kind)
	}
	if price.IsNegative() {
		return 0, Validationf("price must be the positive realized amount, got %s", price)
	}

	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO transactions (item_name, transaction_type, units, price, transaction_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, itemName, string(kind), units, price, date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return id, nil
}

func stockAsOfTx(ctx context.Context, q querier, itemName string, asOf time.Time) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
		           WHEN transaction_type = 'stock_orders' THEN units
		           WHEN transaction_type = 'sales' THEN -units
		           ELSE 0
		       END), 0)
		FROM transactions
		WHERE item_name = $1 AND transaction_date <= $2
	`, itemName, asOf).Scan(&stock)
	if err != nil {
		return 0, fmt.Errorf("failed to query stock for %s: %w", itemName, err)
	}
	return stock, nil
}

func cashAsOfTx(ctx context.Context, q querier, asOf time.Time) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE
		           WHEN transaction_type = 'sales' THEN price
		           ELSE -price
		       END), 0)
		FROM transactions
		WHERE transaction_date <= $1
	`, asOf).Scan(&cash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query cash balance: %w", err)
	}
	return cash, nil
}
