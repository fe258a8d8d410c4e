package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountTier reduces the unit price by Rate once Quantity meets MinQty.
// Tiers are evaluated highest threshold first; the first match wins.
type DiscountTier struct {
	MinQty int
	Rate   decimal.Decimal
	Label  string
}

// discountTiers is the bulk discount table. Thresholds are inclusive.
// The same table prices quotes and recorded sales so a customer is always
// charged exactly what was quoted.
var discountTiers = []DiscountTier{
	{MinQty: 1000, Rate: decimal.NewFromFloat(0.15), Label: "15%"},
	{MinQty: 500, Rate: decimal.NewFromFloat(0.10), Label: "10%"},
	{MinQty: 100, Rate: decimal.NewFromFloat(0.05), Label: "5%"},
}

// DiscountFor returns the applicable tier for a quantity, or a zero tier.
func DiscountFor(quantity int) DiscountTier {
	for _, t := range discountTiers {
		if quantity >= t.MinQty {
			return t
		}
	}
	return DiscountTier{Rate: decimal.Zero}
}

// QuoteLine is one priced line of a quote. InCatalog is false for unknown
// items, which carry no amounts and are excluded from the total.
type QuoteLine struct {
	ItemName      string          `json:"item_name"`
	Quantity      int             `json:"quantity"`
	InCatalog     bool            `json:"in_catalog"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountLabel string          `json:"discount_label,omitempty"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// QuoteBreakdown is the line-itemized result of pricing one request.
type QuoteBreakdown struct {
	Lines []QuoteLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// PricingEngine computes line-itemized quotes against the catalog.
type PricingEngine struct {
	catalog *Catalog
}

func NewPricingEngine(catalog *Catalog) *PricingEngine {
	return &PricingEngine{catalog: catalog}
}

// Quote prices each requested item. Items missing from the catalog produce a
// not-in-catalog line and are skipped from the total; they never abort the
// rest of the quote.
func (p *PricingEngine) Quote(items []RequestedItem) QuoteBreakdown {
	var q QuoteBreakdown
	q.Total = decimal.Zero
	for _, item := range items {
		base, ok := p.catalog.UnitPrice(item.ItemName)
		if !ok {
			q.Lines = append(q.Lines, QuoteLine{ItemName: item.ItemName, Quantity: item.Quantity})
			continue
		}

		tier := DiscountFor(item.Quantity)
		effective := base.Mul(decimal.NewFromInt(1).Sub(tier.Rate))
		subtotal := effective.Mul(decimal.NewFromInt(int64(item.Quantity)))

		q.Lines = append(q.Lines, QuoteLine{
			ItemName:       item.ItemName,
			Quantity:       item.Quantity,
			InCatalog:      true,
			UnitPrice:      base,
			DiscountLabel:  tier.Label,
			EffectivePrice: effective,
			Subtotal:       subtotal,
		})
		q.Total = q.Total.Add(subtotal)
	}
	return q
}

// Format renders the breakdown as customer-facing quote text.
func (q QuoteBreakdown) Format() string {
	var b strings.Builder
	for _, line := range q.Lines {
		if !line.InCatalog {
			fmt.Fprintf(&b, "  X %s: NOT IN CATALOG\n", line.ItemName)
			continue
		}
		discountNote := ""
		if line.DiscountLabel != "" {
			discountNote = fmt.Sprintf(" (%s bulk discount)", line.DiscountLabel)
		}
		fmt.Fprintf(&b, "  • %s: %d units @ $%s%s\n", line.ItemName, line.Quantity, line.UnitPrice.StringFixed(4), discountNote)
		if line.DiscountLabel != "" {
			fmt.Fprintf(&b, "    Final price: $%s each\n", line.EffectivePrice.StringFixed(4))
		}
		fmt.Fprintf(&b, "    Subtotal: $%s\n", line.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTOTAL: $%s", q.Total.StringFixed(2))
	return b.String()
}
