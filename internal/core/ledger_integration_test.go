package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"supplies-agent/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id               BIGSERIAL PRIMARY KEY,
			item_name        TEXT,
			transaction_type TEXT NOT NULL CHECK (transaction_type IN ('stock_orders', 'sales')),
			units            INT,
			price            NUMERIC NOT NULL,
			transaction_date TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS catalog_items (
			item_name  TEXT PRIMARY KEY,
			category   TEXT NOT NULL,
			unit_price NUMERIC NOT NULL
		);
		CREATE TABLE IF NOT EXISTS quote_requests (
			id       SERIAL PRIMARY KEY,
			response TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS quotes (
			id                SERIAL PRIMARY KEY,
			request_id        INT NOT NULL REFERENCES quote_requests (id),
			total_amount      NUMERIC NOT NULL,
			quote_explanation TEXT NOT NULL,
			order_date        TIMESTAMPTZ NOT NULL,
			job_type          TEXT NOT NULL DEFAULT '',
			order_size        TEXT NOT NULL DEFAULT '',
			event_type        TEXT NOT NULL DEFAULT ''
		);
		TRUNCATE TABLE quotes, quote_requests, transactions, catalog_items RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to prepare test database: %v", err)
	}

	return pool
}

func seedTestCatalog(t *testing.T, pool *pgxpool.Pool) *core.Catalog {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
		INSERT INTO catalog_items (item_name, category, unit_price) VALUES
		('A4 paper', 'paper', 0.05),
		('Glossy paper', 'paper', 0.20),
		('Cardstock', 'paper', 0.15),
		('Table covers', 'product', 1.50);
	`)
	if err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}
	catalog, err := core.LoadCatalog(ctx, pool)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return catalog
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func mustDate(t *testing.T, s string) time.Time {
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestLedger_PointInTimeStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Receive 500 on Jan 1, sell 200 on Feb 1.
	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.StockOrders, intPtr(500),
		decimal.NewFromInt(25), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("append stock order: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.Sales, intPtr(200),
		decimal.NewFromInt(10), mustDate(t, "2025-02-01")); err != nil {
		t.Fatalf("append sale: %v", err)
	}

	tests := []struct {
		asOf string
		want int
	}{
		{"2024-12-31", 0},
		{"2025-01-01", 500}, // same-day midnight events are included
		{"2025-01-31", 500},
		{"2025-02-01", 300},
		{"2025-06-01", 300},
	}
	for _, tt := range tests {
		got, err := ledger.StockAsOf(ctx, "A4 paper", mustDate(t, tt.asOf))
		if err != nil {
			t.Fatalf("StockAsOf(%s): %v", tt.asOf, err)
		}
		if got != tt.want {
			t.Errorf("StockAsOf(%s) = %d, want %d", tt.asOf, got, tt.want)
		}
	}
}

func TestLedger_CashAsOf(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	// Capitalization: null-item sales row. Cash in, no stock movement.
	if _, err := ledger.Append(ctx, nil, core.Sales, nil,
		decimal.NewFromInt(50000), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("append capitalization: %v", err)
	}
	// Buy stock for 120, sell some for 75.
	if _, err := ledger.Append(ctx, strPtr("Cardstock"), core.StockOrders, intPtr(800),
		decimal.NewFromInt(120), mustDate(t, "2025-01-10")); err != nil {
		t.Fatalf("append purchase: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("Cardstock"), core.Sales, intPtr(500),
		decimal.NewFromInt(75), mustDate(t, "2025-01-20")); err != nil {
		t.Fatalf("append sale: %v", err)
	}

	tests := []struct {
		asOf string
		want string
	}{
		{"2025-01-01", "50000"},
		{"2025-01-15", "49880"},
		{"2025-02-01", "49955"},
	}
	for _, tt := range tests {
		got, err := ledger.CashAsOf(ctx, mustDate(t, tt.asOf))
		if err != nil {
			t.Fatalf("CashAsOf(%s): %v", tt.asOf, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("CashAsOf(%s) = %s, want %s", tt.asOf, got, tt.want)
		}
	}
}

func TestLedger_AllStockAsOf_OmitsExhaustedItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	appends := []struct {
		item  string
		kind  core.TransactionKind
		units int
	}{
		{"A4 paper", core.StockOrders, 300},
		{"Glossy paper", core.StockOrders, 100},
		{"Glossy paper", core.Sales, 100}, // fully sold out
	}
	for _, a := range appends {
		if _, err := ledger.Append(ctx, strPtr(a.item), a.kind, intPtr(a.units),
			decimal.NewFromInt(1), mustDate(t, "2025-03-01")); err != nil {
			t.Fatalf("append %s: %v", a.item, err)
		}
	}

	stock, err := ledger.AllStockAsOf(ctx, mustDate(t, "2025-03-02"))
	if err != nil {
		t.Fatalf("AllStockAsOf: %v", err)
	}
	if got := stock["A4 paper"]; got != 300 {
		t.Errorf("A4 paper stock = %d, want 300", got)
	}
	if _, present := stock["Glossy paper"]; present {
		t.Error("exhausted item should be omitted from stock map")
	}
}

func TestLedger_RecentTransactions(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, nil, core.Sales, nil,
		decimal.NewFromInt(50000), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("append capitalization: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.StockOrders, intPtr(400),
		decimal.NewFromInt(20), mustDate(t, "2025-01-02")); err != nil {
		t.Fatalf("append purchase: %v", err)
	}

	txs, err := ledger.RecentTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	// Newest first.
	if txs[0].Kind != core.StockOrders || txs[0].ItemName == nil || *txs[0].ItemName != "A4 paper" {
		t.Errorf("first row = %+v, want the A4 paper purchase", txs[0])
	}
	if txs[1].ItemName != nil || txs[1].Units != nil {
		t.Errorf("cash row should have nil item and units, got %+v", txs[1])
	}

	txs, err = ledger.RecentTransactions(ctx, 1)
	if err != nil {
		t.Fatalf("RecentTransactions with limit: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("limit 1: got %d rows", len(txs))
	}
}

func TestLedger_Append_RejectsInvalidInput(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	_, err := ledger.Append(ctx, strPtr("A4 paper"), core.TransactionKind("refund"), intPtr(1),
		decimal.NewFromInt(1), mustDate(t, "2025-01-01"))
	if !core.HasKind(err, core.KindValidation) {
		t.Errorf("invalid kind: expected validation error, got %v", err)
	}

	_, err = ledger.Append(ctx, strPtr("A4 paper"), core.Sales, intPtr(1),
		decimal.NewFromInt(-5), mustDate(t, "2025-01-01"))
	if !core.HasKind(err, core.KindValidation) {
		t.Errorf("negative price: expected validation error, got %v", err)
	}

	// Nothing was written.
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty ledger after rejected appends, got %d rows", count)
	}
}
