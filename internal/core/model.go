package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is one of the two recognized ledger event kinds.
// StockOrders increase stock and decrease cash; Sales decrease stock and
// increase cash. Price is always stored positive — the kind implies the sign.
type TransactionKind string

const (
	StockOrders TransactionKind = "stock_orders"
	Sales       TransactionKind = "sales"
)

// Transaction is one immutable row of the append-only ledger.
// ItemName and Units are nil for pure cash events (e.g. initial capital).
type Transaction struct {
	ID       int64           `json:"id"`
	ItemName *string         `json:"item_name,omitempty"`
	Kind     TransactionKind `json:"transaction_type"`
	Units    *int            `json:"units,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"transaction_date"`
}

// CatalogItem is static reference data: the retail price list.
type CatalogItem struct {
	ItemName  string          `json:"item_name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RequestedItem is one (item, quantity) pair of a customer request.
type RequestedItem struct {
	ItemName string `json:"item_name" jsonschema_description:"Exact catalog item name"`
	Quantity int    `json:"quantity" jsonschema_description:"Requested number of units"`
}

// HistoricalQuote is a previously recorded quote joined with its originating
// request text. Read via QuoteHistory.Search.
type HistoricalQuote struct {
	OriginalRequest  string          `json:"original_request"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	QuoteExplanation string          `json:"quote_explanation"`
	JobType          string          `json:"job_type"`
	OrderSize        string          `json:"order_size"`
	EventType        string          `json:"event_type"`
	OrderDate        time.Time       `json:"order_date"`
}

// QuoteMetadata carries the classification columns stored alongside a quote.
type QuoteMetadata struct {
	JobType   string
	OrderSize string
	EventType string
}

// dateLayouts are the accepted forms of an as-of or event date, most common
// first. Bare dates resolve to midnight, which keeps same-day events visible
// to a bare-date as-of query.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses an ISO date or datetime string.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Validationf("invalid date %q: expected YYYY-MM-DD or ISO datetime", s)
}
