package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryLine is one item's position in a financial snapshot.
type InventoryLine struct {
	ItemName  string          `json:"item_name"`
	Stock     int             `json:"stock"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Value     decimal.Decimal `json:"value"`
}

// TopSeller ranks an item by total sales revenue as of the report date.
type TopSeller struct {
	ItemName     string          `json:"item_name"`
	TotalUnits   int             `json:"total_units"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// FinancialReport is the as-of snapshot of cash, inventory, and sales.
type FinancialReport struct {
	AsOf             time.Time       `json:"as_of_date"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	InventoryValue   decimal.Decimal `json:"inventory_value"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	InventorySummary []InventoryLine `json:"inventory_summary"`
	TopSellers       []TopSeller     `json:"top_selling_products"`
}

// ReportingService composes the ledger and catalog into financial snapshots.
type ReportingService interface {
	Report(ctx context.Context, asOf time.Time) (*FinancialReport, error)
}

type reportingService struct {
	pool    *pgxpool.Pool
	ledger  *Ledger
	catalog *Catalog
}

func NewReportingService(pool *pgxpool.Pool, ledger *Ledger, catalog *Catalog) ReportingService {
	return &reportingService{pool: pool, ledger: ledger, catalog: catalog}
}

// Report values inventory at retail over the whole catalog; items never
// stocked contribute zero. Top sellers are capped at 5, ties left in query
// order.
func (s *reportingService) Report(ctx context.Context, asOf time.Time) (*FinancialReport, error) {
	cash, err := s.ledger.CashAsOf(ctx, asOf)
	if err != nil {
		return nil, err
	}

	stock, err := s.ledger.AllStockAsOf(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &FinancialReport{
		AsOf:           asOf,
		CashBalance:    cash,
		InventoryValue: decimal.Zero,
	}
	for _, name := range s.catalog.Names() {
		units, ok := stock[name]
		if !ok {
			continue
		}
		price, _ := s.catalog.UnitPrice(name)
		value := price.Mul(decimal.NewFromInt(int64(units)))
		report.InventoryValue = report.InventoryValue.Add(value)
		report.InventorySummary = append(report.InventorySummary, InventoryLine{
			ItemName:  name,
			Stock:     units,
			UnitPrice: price,
			Value:     value,
		})
	}
	report.TotalAssets = report.CashBalance.Add(report.InventoryValue)

	rows, err := s.pool.Query(ctx, `
		SELECT item_name, SUM(units) AS total_units, SUM(price) AS total_revenue
		FROM transactions
		WHERE transaction_type = 'sales'
		  AND item_name IS NOT NULL
		  AND transaction_date <= $1
		GROUP BY item_name
		ORDER BY total_revenue DESC
		LIMIT 5
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts TopSeller
		if err := rows.Scan(&ts.ItemName, &ts.TotalUnits, &ts.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan top seller: %w", err)
		}
		report.TopSellers = append(report.TopSellers, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top sellers: %w", err)
	}

	return report, nil
}
