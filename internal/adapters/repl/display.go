package repl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"supplies-agent/internal/core"
)

func printReport(r *core.FinancialReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  FINANCIAL REPORT — as of %s\n", r.AsOf.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Cash balance    : $%s\n", r.CashBalance.StringFixed(2))
	fmt.Printf("  Inventory value : $%s\n", r.InventoryValue.StringFixed(2))
	fmt.Printf("  Total assets    : $%s\n", r.TotalAssets.StringFixed(2))
	if len(r.TopSellers) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Printf("  %-36s %8s %14s\n", "TOP SELLER", "UNITS", "REVENUE")
		for _, s := range r.TopSellers {
			fmt.Printf("  %-36s %8d %14s\n", s.ItemName, s.TotalUnits, s.TotalRevenue.StringFixed(2))
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printInventory(stock map[string]int, asOf time.Time) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  INVENTORY — as of %s\n", asOf.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 62))
	if len(stock) == 0 {
		fmt.Println("  No stock on hand.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("  %-46s %12s\n", "ITEM", "UNITS")
	fmt.Println(strings.Repeat("-", 62))
	for _, name := range names {
		fmt.Printf("  %-46s %12d\n", name, stock[name])
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printTransactions(txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Println("No transactions recorded.")
		return
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-6s %-12s %-32s %8s %12s\n", "ID", "TYPE", "ITEM", "UNITS", "PRICE")
	fmt.Println(strings.Repeat("-", 78))
	for _, tx := range txs {
		item, units := "(cash)", "-"
		if tx.ItemName != nil {
			item = *tx.ItemName
		}
		if tx.Units != nil {
			units = strconv.Itoa(*tx.Units)
		}
		fmt.Printf("  %-6d %-12s %-32s %8s %12s\n",
			tx.ID, tx.Kind, item, units, tx.Price.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printCatalog(catalog *core.Catalog) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  CATALOG — %d items\n", catalog.Len())
	fmt.Println(strings.Repeat("=", 62))
	for _, category := range catalog.Categories() {
		fmt.Printf("  [%s]\n", category)
		for _, name := range catalog.NamesByCategory(category) {
			item, _ := catalog.Item(name)
			fmt.Printf("    %-44s $%s\n", name, item.UnitPrice.StringFixed(2))
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printQuotes(quotes []core.HistoricalQuote, keywords []string) {
	if len(quotes) == 0 {
		fmt.Printf("No quotes found matching: %s\n", strings.Join(keywords, ", "))
		return
	}
	for _, q := range quotes {
		fmt.Println()
		fmt.Println(strings.Repeat("-", 62))
		fmt.Printf("  Date:   %s\n", q.OrderDate.Format("2006-01-02"))
		fmt.Printf("  Total:  $%s\n", q.TotalAmount.StringFixed(2))
		fmt.Printf("  Request: %s\n", q.OriginalRequest)
		fmt.Printf("  Explanation: %s\n", q.QuoteExplanation)
	}
	fmt.Println(strings.Repeat("-", 62))
}
