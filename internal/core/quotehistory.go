package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DefaultSearchLimit caps Search results when the caller passes limit <= 0.
const DefaultSearchLimit = 5

// QuoteHistoryService is the read-oriented index over recorded quotes and
// their originating request text.
type QuoteHistoryService interface {
	// Search returns quotes matching every keyword (case-insensitive
	// substring against request text or explanation), most recent first.
	// An empty keyword list matches everything.
	Search(ctx context.Context, keywords []string, limit int) ([]HistoricalQuote, error)
	// Record appends a quote and its originating request so later searches
	// see it. Called by the seed loader and after each live quotation stage.
	Record(ctx context.Context, requestText, explanation string, total decimal.Decimal, date time.Time, meta QuoteMetadata) error
}

type quoteHistory struct {
	pool *pgxpool.Pool
}

func NewQuoteHistory(pool *pgxpool.Pool) QuoteHistoryService {
	return &quoteHistory{pool: pool}
}

func (h *quoteHistory) Search(ctx context.Context, keywords []string, limit int) ([]HistoricalQuote, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := `
		SELECT qr.response, q.total_amount, q.quote_explanation,
		       q.job_type, q.order_size, q.event_type, q.order_date
		FROM quotes q
		JOIN quote_requests qr ON q.request_id = qr.id`

	var args []any
	var conditions []string
	for _, term := range keywords {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		args = append(args, "%"+strings.ToLower(term)+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(qr.response) LIKE $%d OR LOWER(q.quote_explanation) LIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		q += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	q += fmt.Sprintf("\n\t\tORDER BY q.order_date DESC\n\t\tLIMIT $%d", len(args))

	rows, err := h.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search quote history: %w", err)
	}
	defer rows.Close()

	var quotes []HistoricalQuote
	for rows.Next() {
		var hq HistoricalQuote
		if err := rows.Scan(
			&hq.OriginalRequest, &hq.TotalAmount, &hq.QuoteExplanation,
			&hq.JobType, &hq.OrderSize, &hq.EventType, &hq.OrderDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote row: %w", err)
		}
		quotes = append(quotes, hq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", err)
	}
	return quotes, nil
}

func (h *quoteHistory) Record(ctx context.Context, requestText, explanation string, total decimal.Decimal, date time.Time, meta QuoteMetadata) error {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin quote record transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var requestID int
	if err := tx.QueryRow(ctx,
		"INSERT INTO quote_requests (response) VALUES ($1) RETURNING id", requestText,
	).Scan(&requestID); err != nil {
		return fmt.Errorf("failed to insert quote request: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO quotes (request_id, total_amount, quote_explanation, order_date, job_type, order_size, event_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, requestID, total, explanation, date, meta.JobType, meta.OrderSize, meta.EventType); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quote record: %w", err)
	}
	return nil
}
