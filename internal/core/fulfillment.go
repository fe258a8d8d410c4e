package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// wholesaleRate is the supplier cost as a fraction of retail price.
var wholesaleRate = decimal.NewFromFloat(0.6)

// SaleResult reports a committed sale.
type SaleResult struct {
	Lines        []QuoteLine     `json:"lines"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// RestockResult reports a committed supplier order.
type RestockResult struct {
	ItemName     string          `json:"item_name"`
	Quantity     int             `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryDate string          `json:"delivery_date"`
}

// FulfillmentService records sales and supplier restocks against the ledger.
type FulfillmentService interface {
	// ProcessSale verifies stock for every requested item, then appends one
	// sales transaction per item priced with the bulk discount table. The
	// stock checks and appends run in one serializable transaction: a short
	// item leaves the ledger completely unchanged.
	ProcessSale(ctx context.Context, items []RequestedItem, date time.Time) (*SaleResult, error)
	// Restock appends one stock_orders transaction at 60% of retail, failing
	// if cash as of date cannot cover the cost. Returns the estimated
	// delivery date.
	Restock(ctx context.Context, itemName string, quantity int, date time.Time) (*RestockResult, error)
}

type fulfillmentService struct {
	ledger  *Ledger
	catalog *Catalog
	now     func() time.Time
}

func NewFulfillmentService(ledger *Ledger, catalog *Catalog) FulfillmentService {
	return &fulfillmentService{ledger: ledger, catalog: catalog, now: time.Now}
}

func (s *fulfillmentService) ProcessSale(ctx context.Context, items []RequestedItem, date time.Time) (*SaleResult, error) {
	if len(items) == 0 {
		return nil, Validationf("sale requires at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, Validationf("quantity for %s must be positive, got %d", item.ItemName, item.Quantity)
		}
	}

	// One serializable transaction covers both the stock checks and the
	// appends, so two concurrent sales cannot both observe sufficient stock
	// and oversell.
	tx, err := s.ledger.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Check every item before touching the ledger.
	for _, item := range items {
		if _, ok := s.catalog.UnitPrice(item.ItemName); !ok {
			return nil, BusinessRulef("%s is not in the catalog", item.ItemName)
		}
		stock, err := stockAsOfTx(ctx, tx, item.ItemName, date)
		if err != nil {
			return nil, err
		}
		if stock < item.Quantity {
			return nil, BusinessRulef("insufficient stock of %s: have %d, need %d", item.ItemName, stock, item.Quantity)
		}
	}

	result := &SaleResult{TotalRevenue: decimal.Zero}
	for _, item := range items {
		base, _ := s.catalog.UnitPrice(item.ItemName)
		tier := DiscountFor(item.Quantity)
		effective := base.Mul(decimal.NewFromInt(1).Sub(tier.Rate))
		amount := effective.Mul(decimal.NewFromInt(int64(item.Quantity)))

		name := item.ItemName
		units := item.Quantity
		if _, err := appendTx(ctx, tx, &name, Sales, &units, amount, date); err != nil {
			return nil, fmt.Errorf("failed to record sale of %s: %w", item.ItemName, err)
		}

		result.Lines = append(result.Lines, QuoteLine{
			ItemName:       item.ItemName,
			Quantity:       item.Quantity,
			InCatalog:      true,
			UnitPrice:      base,
			DiscountLabel:  tier.Label,
			EffectivePrice: effective,
			Subtotal:       amount,
		})
		result.TotalRevenue = result.TotalRevenue.Add(amount)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return result, nil
}

func (s *fulfillmentService) Restock(ctx context.Context, itemName string, quantity int, date time.Time) (*RestockResult, error) {
	if quantity <= 0 {
		return nil, Validationf("restock quantity must be positive, got %d", quantity)
	}
	retail, ok := s.catalog.UnitPrice(itemName)
	if !ok {
		return nil, BusinessRulef("%s is not in the catalog", itemName)
	}

	cost := retail.Mul(wholesaleRate).Mul(decimal.NewFromInt(int64(quantity)))

	tx, err := s.ledger.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin restock transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// No restocking on credit.
	cash, err := cashAsOfTx(ctx, tx, date)
	if err != nil {
		return nil, err
	}
	if cash.LessThan(cost) {
		return nil, BusinessRulef("insufficient funds: need $%s, have $%s", cost.StringFixed(2), cash.StringFixed(2))
	}

	name := itemName
	units := quantity
	if _, err := appendTx(ctx, tx, &name, StockOrders, &units, cost, date); err != nil {
		return nil, fmt.Errorf("failed to record restock of %s: %w", itemName, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit restock: %w", err)
	}

	return &RestockResult{
		ItemName:     itemName,
		Quantity:     quantity,
		Cost:         cost,
		DeliveryDate: EstimateDelivery(date.Format("2006-01-02"), quantity, s.now),
	}, nil
}
