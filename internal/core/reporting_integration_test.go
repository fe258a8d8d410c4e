package core_test

import (
	"context"
	"testing"

	"supplies-agent/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_Report(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	reporting := core.NewReportingService(pool, ledger, catalog)
	ctx := context.Background()

	// Capitalize, buy two items, sell part of one.
	if _, err := ledger.Append(ctx, nil, core.Sales, nil,
		decimal.NewFromInt(50000), mustDate(t, "2025-01-01")); err != nil {
		t.Fatalf("capitalize: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.StockOrders, intPtr(400),
		decimal.NewFromInt(12), mustDate(t, "2025-01-05")); err != nil {
		t.Fatalf("buy A4: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("Cardstock"), core.StockOrders, intPtr(100),
		decimal.NewFromInt(9), mustDate(t, "2025-01-05")); err != nil {
		t.Fatalf("buy cardstock: %v", err)
	}
	if _, err := ledger.Append(ctx, strPtr("A4 paper"), core.Sales, intPtr(100),
		decimal.NewFromInt(5), mustDate(t, "2025-01-10")); err != nil {
		t.Fatalf("sell A4: %v", err)
	}

	report, err := reporting.Report(ctx, mustDate(t, "2025-02-01"))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	// Cash: 50000 - 12 - 9 + 5 = 49984.
	if got := report.CashBalance.StringFixed(2); got != "49984.00" {
		t.Errorf("cash = %s, want 49984.00", got)
	}
	// Inventory at retail: 300 x 0.05 + 100 x 0.15 = 30.00.
	if got := report.InventoryValue.StringFixed(2); got != "30.00" {
		t.Errorf("inventory value = %s, want 30.00", got)
	}
	if got := report.TotalAssets.StringFixed(2); got != "50014.00" {
		t.Errorf("total assets = %s, want 50014.00", got)
	}

	if len(report.InventorySummary) != 2 {
		t.Fatalf("expected 2 inventory lines, got %d", len(report.InventorySummary))
	}
	if len(report.TopSellers) != 1 || report.TopSellers[0].ItemName != "A4 paper" {
		t.Fatalf("expected A4 paper as sole top seller, got %+v", report.TopSellers)
	}
	if got := report.TopSellers[0].TotalRevenue.StringFixed(2); got != "5.00" {
		t.Errorf("top seller revenue = %s, want 5.00", got)
	}
}

func TestReporting_Report_BeforeAnyTrading(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := seedTestCatalog(t, pool)
	ledger := core.NewLedger(pool)
	reporting := core.NewReportingService(pool, ledger, catalog)

	report, err := reporting.Report(context.Background(), mustDate(t, "2020-01-01"))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !report.CashBalance.IsZero() || !report.InventoryValue.IsZero() {
		t.Errorf("empty ledger should report zero balances, got cash=%s inventory=%s",
			report.CashBalance, report.InventoryValue)
	}
	if len(report.TopSellers) != 0 {
		t.Errorf("expected no top sellers, got %d", len(report.TopSellers))
	}
}
