package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"supplies-agent/internal/ai"
	"supplies-agent/internal/core"

	"github.com/shopspring/decimal"
)

// Toolset binds the domain services to the agent tool contracts. Stage
// registries are built per request so quotation handlers can capture the
// quoted total for the history index.
type Toolset struct {
	Ledger      core.LedgerService
	Catalog     *core.Catalog
	Pricing     *core.PricingEngine
	Fulfillment core.FulfillmentService
	Reporting   core.ReportingService
	History     core.QuoteHistoryService
}

// quoteRecorder captures the last quote produced during one orchestration
// run, so the completed run can be appended to the quote history.
type quoteRecorder struct {
	total       decimal.Decimal
	explanation string
	recorded    bool
}

// ── Tool argument structs (schemas generated from tags) ───────────────────────

type itemsDateArgs struct {
	Items []core.RequestedItem `json:"items" jsonschema_description:"Requested items with exact catalog names and quantities"`
	Date  string               `json:"date" jsonschema_description:"Date in YYYY-MM-DD format"`
}

type keywordsArgs struct {
	Keywords string `json:"keywords" jsonschema_description:"Comma-separated search keywords (e.g. \"wedding,glossy,cards\")"`
}

type restockArgs struct {
	ItemName string `json:"item_name" jsonschema_description:"Exact catalog item name to order"`
	Quantity int    `json:"quantity" jsonschema_description:"Number of units to order"`
	Date     string `json:"date" jsonschema_description:"Order date in YYYY-MM-DD format"`
}

type dateArgs struct {
	Date string `json:"date" jsonschema_description:"Date in YYYY-MM-DD format"`
}

// decodeArgs maps loosely-typed tool parameters onto a typed args struct.
func decodeArgs[T any](params map[string]any) (T, error) {
	var args T
	raw, err := json.Marshal(params)
	if err != nil {
		return args, err
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, err
	}
	return args, nil
}

// ── Stage registries ──────────────────────────────────────────────────────────

// AvailabilityTools holds inventory and cash read tools only.
func (t *Toolset) AvailabilityTools() *ai.ToolRegistry {
	r := ai.NewToolRegistry()
	r.Register(ai.ToolDefinition{
		Name:        "check_inventory_availability",
		Description: "Check inventory availability for requested items as of a date. Returns a status line per item.",
		InputSchema: ai.SchemaFor(itemsDateArgs{}),
		Handler:     t.checkAvailability,
	})
	r.Register(ai.ToolDefinition{
		Name:        "get_full_inventory_report",
		Description: "Get a complete inventory snapshot showing all items in stock as of a date.",
		InputSchema: ai.SchemaFor(dateArgs{}),
		Handler:     t.fullInventoryReport,
	})
	r.Register(ai.ToolDefinition{
		Name:        "check_cash",
		Description: "Get the cash balance as of a date.",
		InputSchema: ai.SchemaFor(dateArgs{}),
		Handler:     t.checkCash,
	})
	r.Register(ai.ToolDefinition{
		Name:        "get_financial_summary",
		Description: "Generate a financial report with cash, inventory value, total assets, and top selling products as of a date.",
		InputSchema: ai.SchemaFor(dateArgs{}),
		Handler:     t.financialSummary,
	})
	return r
}

// QuotationTools holds quote and history tools only.
func (t *Toolset) QuotationTools(rec *quoteRecorder) *ai.ToolRegistry {
	r := ai.NewToolRegistry()
	r.Register(ai.ToolDefinition{
		Name:        "search_past_quotes",
		Description: "Search historical quotes for similar orders by keywords.",
		InputSchema: ai.SchemaFor(keywordsArgs{}),
		Handler:     t.searchPastQuotes,
	})
	r.Register(ai.ToolDefinition{
		Name:        "create_quote",
		Description: "Generate a price quote with bulk discounts and a per-line breakdown.",
		InputSchema: ai.SchemaFor(itemsDateArgs{}),
		Handler:     t.createQuote(rec),
	})
	return r
}

// FulfillmentTools holds the only tools allowed to mutate the ledger.
func (t *Toolset) FulfillmentTools() *ai.ToolRegistry {
	r := ai.NewToolRegistry()
	r.Register(ai.ToolDefinition{
		Name:        "process_customer_sale",
		Description: "Process a customer sale, recording one sales transaction per item. Fails without any change if stock is short.",
		InputSchema: ai.SchemaFor(itemsDateArgs{}),
		Handler:     t.processSale,
	})
	r.Register(ai.ToolDefinition{
		Name:        "restock_from_supplier",
		Description: "Order stock from the supplier at 60% of retail price. Fails if cash cannot cover the cost.",
		InputSchema: ai.SchemaFor(restockArgs{}),
		Handler:     t.restock,
	})
	return r
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (t *Toolset) checkAvailability(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[itemsDateArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: invalid items list: %v", err), nil
	}
	asOf, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	var lines []string
	for _, item := range args.Items {
		if _, ok := t.Catalog.UnitPrice(item.ItemName); !ok {
			lines = append(lines, fmt.Sprintf("X %s: NOT IN INVENTORY", item.ItemName))
			continue
		}
		stock, err := t.Ledger.StockAsOf(ctx, item.ItemName, asOf)
		if err != nil {
			return "", err
		}
		if stock >= item.Quantity {
			lines = append(lines, fmt.Sprintf("OK %s: %d available (requested %d)", item.ItemName, stock, item.Quantity))
		} else {
			lines = append(lines, fmt.Sprintf("WARNING %s: Only %d available (requested %d, short %d)",
				item.ItemName, stock, item.Quantity, item.Quantity-stock))
		}
	}
	if len(lines) == 0 {
		return "No items to check.", nil
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Toolset) fullInventoryReport(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[dateArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	asOf, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	stock, err := t.Ledger.AllStockAsOf(ctx, asOf)
	if err != nil {
		return "", err
	}
	if len(stock) == 0 {
		return "No items currently in stock.", nil
	}

	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{"CURRENT INVENTORY:"}
	totalUnits := 0
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  • %s: %d units", name, stock[name]))
		totalUnits += stock[name]
	}
	lines = append(lines, fmt.Sprintf("\nTotal items in stock: %d units across %d product types", totalUnits, len(stock)))
	return strings.Join(lines, "\n"), nil
}

func (t *Toolset) checkCash(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[dateArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	asOf, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	cash, err := t.Ledger.CashAsOf(ctx, asOf)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cash balance: $%s", cash.StringFixed(2)), nil
}

func (t *Toolset) financialSummary(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[dateArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	asOf, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	report, err := t.Reporting.Report(ctx, asOf)
	if err != nil {
		return "", err
	}

	lines := []string{
		"FINANCIAL SUMMARY:",
		fmt.Sprintf("  Date: %s", asOf.Format("2006-01-02")),
		fmt.Sprintf("  Cash Balance: $%s", report.CashBalance.StringFixed(2)),
		fmt.Sprintf("  Inventory Value: $%s", report.InventoryValue.StringFixed(2)),
		fmt.Sprintf("  Total Assets: $%s", report.TotalAssets.StringFixed(2)),
	}
	if len(report.TopSellers) > 0 {
		lines = append(lines, "\nTop Selling Products:")
		for i, product := range report.TopSellers {
			if i >= 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("  %d. %s: $%s revenue", i+1, product.ItemName, product.TotalRevenue.StringFixed(2)))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Toolset) searchPastQuotes(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[keywordsArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	var terms []string
	for _, k := range strings.Split(args.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			terms = append(terms, k)
		}
	}

	quotes, err := t.History.Search(ctx, terms, core.DefaultSearchLimit)
	if err != nil {
		return "", err
	}
	if len(quotes) == 0 {
		return "No similar quotes found.", nil
	}

	var out []string
	for i, q := range quotes {
		out = append(out, fmt.Sprintf("\n=== Quote %d ===", i+1))
		out = append(out, fmt.Sprintf("Event: %s, Size: %s", orNA(q.EventType), orNA(q.OrderSize)))
		out = append(out, fmt.Sprintf("Amount: $%s", q.TotalAmount.StringFixed(2)))
		out = append(out, fmt.Sprintf("Details: %s...", truncate(q.QuoteExplanation, 120)))
	}
	return strings.Join(out, "\n"), nil
}

func (t *Toolset) createQuote(rec *quoteRecorder) ai.ToolHandler {
	return func(ctx context.Context, params map[string]any) (string, error) {
		args, err := decodeArgs[itemsDateArgs](params)
		if err != nil {
			return fmt.Sprintf("Error: invalid items list: %v", err), nil
		}

		breakdown := t.Pricing.Quote(args.Items)
		text := breakdown.Format()
		if rec != nil {
			rec.total = breakdown.Total
			rec.explanation = text
			rec.recorded = true
		}
		return text, nil
	}
}

func (t *Toolset) processSale(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[itemsDateArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: invalid items list: %v", err), nil
	}
	date, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("X SALE FAILED: %v", err), nil
	}

	result, err := t.Fulfillment.ProcessSale(ctx, args.Items, date)
	switch {
	case err == nil:
		return fmt.Sprintf("OK SALE PROCESSED! Total revenue: $%s", result.TotalRevenue.StringFixed(2)), nil
	case core.HasKind(err, core.KindBusinessRule), core.HasKind(err, core.KindValidation):
		return fmt.Sprintf("X SALE FAILED: %v", err), nil
	default:
		return "", err
	}
}

func (t *Toolset) restock(ctx context.Context, params map[string]any) (string, error) {
	args, err := decodeArgs[restockArgs](params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	date, err := core.ParseDate(args.Date)
	if err != nil {
		return fmt.Sprintf("X ORDER FAILED: %v", err), nil
	}

	result, err := t.Fulfillment.Restock(ctx, args.ItemName, args.Quantity, date)
	switch {
	case err == nil:
		return fmt.Sprintf("OK RESTOCKED! %s x%d, Cost: $%s, Delivery: %s",
			result.ItemName, result.Quantity, result.Cost.StringFixed(2), result.DeliveryDate), nil
	case core.HasKind(err, core.KindBusinessRule), core.HasKind(err, core.KindValidation):
		return fmt.Sprintf("X ORDER FAILED: %v", err), nil
	default:
		return "", err
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
