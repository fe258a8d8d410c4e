package core_test

import (
	"context"
	"testing"

	"supplies-agent/internal/core"

	"github.com/shopspring/decimal"
)

func TestFulfillment_ProcessSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	fulfillment := core.NewFulfillmentService(ledger, catalog)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.StockOrders, intPtr(1000),
		decimal.NewFromInt(30), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	result, err := fulfillment.ProcessSale(ctx,
		[]core.RequestedItem{{ItemName: "A4 paper", Quantity: 200}},
		mustDate(t, "2025-02-01"))
	if err != nil {
		t.Fatalf("ProcessSale: %v", err)
	}

	// 200 x 0.05 with 5% off = 9.50.
	if got := result.TotalRevenue.StringFixed(2); got != "9.50" {
		t.Errorf("revenue = %s, want 9.50", got)
	}

	stock, err := ledger.StockAsOf(ctx, "A4 paper", mustDate(t, "2025-02-01"))
	if err != nil {
		t.Fatalf("StockAsOf: %v", err)
	}
	if stock != 800 {
		t.Errorf("stock after sale = %d, want 800", stock)
	}
}

func TestFulfillment_ProcessSale_ShortItemLeavesLedgerUntouched(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	fulfillment := core.NewFulfillmentService(ledger, catalog)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.StockOrders, intPtr(1000),
		decimal.NewFromInt(30), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("seed A4 stock: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("Glossy paper"), core.StockOrders, intPtr(50),
		decimal.NewFromInt(6), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("seed glossy stock: %v", err)
	}

	// First item is in stock, second is short: nothing may be recorded.
	_, err := fulfillment.ProcessSale(ctx, []core.RequestedItem{
		{ItemName: "A4 paper", Quantity: 100},
		{ItemName: "Glossy paper", Quantity: 80},
	}, mustDate(t, "2025-02-01"))
	if !core.HasKind(err, core.KindBusinessRule) {
		t.Fatalf("expected business-rule error, got %v", err)
	}

	var salesRows int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE transaction_type = 'sales'").Scan(&salesRows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if salesRows != 0 {
		t.Errorf("partial sale recorded: %d sales rows, want 0", salesRows)
	}
}

func TestFulfillment_ProcessSale_UnknownItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	fulfillment := core.NewFulfillmentService(core.NewLedger(pool), catalog)

	_, err := fulfillment.ProcessSale(context.Background(),
		[]core.RequestedItem{{ItemName: "Vellum", Quantity: 10}},
		mustDate(t, "2025-02-01"))
	if !core.HasKind(err, core.KindBusinessRule) {
		t.Errorf("expected business-rule error for unknown item, got %v", err)
	}
}

func TestFulfillment_Restock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	fulfillment := core.NewFulfillmentService(ledger, catalog)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, nil, core.Sales, nil,
		decimal.NewFromInt(1000), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("seed cash: %v", err)
	}

	// 100 x A4 paper at wholesale = 100 x 0.05 x 0.6 = 3.00.
	result, err := fulfillment.Restock(ctx, "A4 paper", 100, mustDate(t, "2025-02-01"))
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if got := result.Cost.StringFixed(2); got != "3.00" {
		t.Errorf("cost = %s, want 3.00", got)
	}
	if result.DeliveryDate != "2025-02-02" {
		t.Errorf("delivery = %s, want 2025-02-02", result.DeliveryDate)
	}

	cash, err := ledger.CashAsOf(ctx, mustDate(t, "2025-02-01"))
	if err != nil {
		t.Fatalf("CashAsOf: %v", err)
	}
	if got := cash.StringFixed(2); got != "997.00" {
		t.Errorf("cash after restock = %s, want 997.00", got)
	}
}

func TestFulfillment_Restock_InsufficientFunds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	fulfillment := core.NewFulfillmentService(ledger, catalog)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, nil, core.Sales, nil,
		decimal.NewFromInt(5), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("seed cash: %v", err)
	}

	// 10 x Table covers at wholesale = 10 x 1.50 x 0.6 = 9.00 > 5.00 cash.
	_, err := fulfillment.Restock(ctx, "Table covers", 10, mustDate(t, "2025-02-01"))
	if !core.HasKind(err, core.KindBusinessRule) {
		t.Fatalf("expected business-rule error, got %v", err)
	}

	var orderRows int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE transaction_type = 'stock_orders'").Scan(&orderRows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if orderRows != 0 {
		t.Errorf("rejected restock recorded: %d stock_orders rows, want 0", orderRows)
	}
}
