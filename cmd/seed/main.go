// seed is a one-shot tool that creates the database schema and loads the
// initial business state: the paper catalog, the opening cash injection, and
// a deterministic sample of opening stock. Safe to re-run; it drops and
// recreates the tables.
//
// Usage: go run ./cmd/seed [quotes.csv]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"supplies-agent/internal/config"
	"supplies-agent/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	stockCoverage = 0.4
	stockSeed     = 137
)

// openingDate is the capitalization date. Every later query with an as-of
// date on or after it sees the opening balances.
var openingDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type catalogEntry struct {
	name     string
	category string
	price    string
}

var paperCatalog = []catalogEntry{
	{"A4 paper", "paper", "0.05"},
	{"Letter-sized paper", "paper", "0.06"},
	{"Cardstock", "paper", "0.15"},
	{"Colored paper", "paper", "0.10"},
	{"Glossy paper", "paper", "0.20"},
	{"Matte paper", "paper", "0.18"},
	{"Recycled paper", "paper", "0.08"},
	{"Eco-friendly paper", "paper", "0.12"},
	{"Poster paper", "paper", "0.25"},
	{"Banner paper", "paper", "0.30"},
	{"Kraft paper", "paper", "0.10"},
	{"Construction paper", "paper", "0.07"},
	{"Wrapping paper", "paper", "0.15"},
	{"Glitter paper", "paper", "0.22"},
	{"Decorative paper", "paper", "0.18"},
	{"Letterhead paper", "paper", "0.12"},
	{"Legal-size paper", "paper", "0.08"},
	{"Crepe paper", "paper", "0.05"},
	{"Photo paper", "paper", "0.25"},
	{"Uncoated paper", "paper", "0.06"},
	{"Butcher paper", "paper", "0.10"},
	{"Heavyweight paper", "paper", "0.20"},
	{"Standard copy paper", "paper", "0.04"},
	{"Bright-colored paper", "paper", "0.12"},
	{"Patterned paper", "paper", "0.15"},
	{"Paper plates", "product", "0.10"},
	{"Paper cups", "product", "0.08"},
	{"Paper napkins", "product", "0.02"},
	{"Disposable cups", "product", "0.10"},
	{"Table covers", "product", "1.50"},
	{"Envelopes", "product", "0.05"},
	{"Sticky notes", "product", "0.03"},
	{"Notepads", "product", "2.00"},
	{"Invitation cards", "product", "0.50"},
	{"Flyers", "product", "0.15"},
	{"Party streamers", "product", "0.05"},
	{"Decorative adhesive tape (washi tape)", "product", "0.20"},
	{"Paper party bags", "product", "0.25"},
	{"Name tags with lanyards", "product", "0.75"},
	{"Presentation folders", "product", "0.50"},
	{"Large poster paper (24x36 inches)", "large_format", "1.00"},
	{"Rolls of banner paper (36-inch width)", "large_format", "2.50"},
	{"100 lb cover stock", "specialty", "0.50"},
	{"80 lb text paper", "specialty", "0.40"},
	{"250 gsm cardstock", "specialty", "0.30"},
	{"220 gsm poster paper", "specialty", "0.35"},
}

const schemaSQL = `
DROP TABLE IF EXISTS quotes;
DROP TABLE IF EXISTS quote_requests;
DROP TABLE IF EXISTS transactions;
DROP TABLE IF EXISTS catalog_items;

CREATE TABLE transactions (
    id               BIGSERIAL PRIMARY KEY,
    item_name        TEXT,
    transaction_type TEXT NOT NULL CHECK (transaction_type IN ('stock_orders', 'sales')),
    units            INT,
    price            NUMERIC NOT NULL,
    transaction_date TIMESTAMPTZ NOT NULL
);
CREATE INDEX idx_transactions_item_date ON transactions (item_name, transaction_date);
CREATE INDEX idx_transactions_date ON transactions (transaction_date);

CREATE TABLE catalog_items (
    item_name  TEXT PRIMARY KEY,
    category   TEXT NOT NULL,
    unit_price NUMERIC NOT NULL
);

CREATE TABLE quote_requests (
    id       SERIAL PRIMARY KEY,
    response TEXT NOT NULL
);

CREATE TABLE quotes (
    id                SERIAL PRIMARY KEY,
    request_id        INT NOT NULL REFERENCES quote_requests (id),
    total_amount      NUMERIC NOT NULL,
    quote_explanation TEXT NOT NULL,
    order_date        TIMESTAMPTZ NOT NULL,
    job_type          TEXT NOT NULL DEFAULT '',
    order_size        TEXT NOT NULL DEFAULT '',
    event_type        TEXT NOT NULL DEFAULT ''
);
`

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("begin")
	}
	defer tx.Rollback(ctx)

	log.Info().Msg("creating schema")
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		log.Fatal().Err(err).Msg("schema")
	}

	log.Info().Int("items", len(paperCatalog)).Msg("loading catalog")
	for _, e := range paperCatalog {
		if _, err := tx.Exec(ctx,
			`INSERT INTO catalog_items (item_name, category, unit_price) VALUES ($1, $2, $3)`,
			e.name, e.category, e.price); err != nil {
			log.Fatal().Err(err).Str("item", e.name).Msg("catalog insert")
		}
	}

	// Opening capitalization: one null-item sales row so CashAsOf sees
	// $50,000 before any trading.
	log.Info().Msg("recording opening cash")
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (item_name, transaction_type, units, price, transaction_date)
		 VALUES (NULL, 'sales', NULL, $1, $2)`,
		"50000.00", openingDate); err != nil {
		log.Fatal().Err(err).Msg("opening cash")
	}

	log.Info().Msg("recording opening stock")
	total := seedOpeningStock(ctx, tx, log)
	log.Info().Str("cost", total.StringFixed(2)).Msg("opening stock recorded")

	if len(os.Args) > 1 {
		n, err := loadQuotesCSV(ctx, tx, os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Str("file", os.Args[1]).Msg("quotes csv")
		}
		log.Info().Int("quotes", n).Msg("loaded historical quotes")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit")
	}
	log.Info().Msg("seed complete")
}

// seedOpeningStock appends one stock_orders row for a deterministic sample
// of roughly 40% of the catalog, with units in [200, 800) and price
// units x unit_price. A fixed PRNG seed keeps reruns identical.
func seedOpeningStock(ctx context.Context, tx pgx.Tx, log zerolog.Logger) decimal.Decimal {
	rng := rand.New(rand.NewSource(stockSeed))

	numItems := int(float64(len(paperCatalog)) * stockCoverage)
	picked := rng.Perm(len(paperCatalog))[:numItems]

	total := decimal.Zero
	for _, i := range picked {
		e := paperCatalog[i]
		units := 200 + rng.Intn(600)
		unitPrice, err := decimal.NewFromString(e.price)
		if err != nil {
			log.Fatal().Err(err).Str("item", e.name).Msg("bad catalog price")
		}
		cost := unitPrice.Mul(decimal.NewFromInt(int64(units)))

		if _, err := tx.Exec(ctx,
			`INSERT INTO transactions (item_name, transaction_type, units, price, transaction_date)
			 VALUES ($1, 'stock_orders', $2, $3, $4)`,
			e.name, units, cost, openingDate); err != nil {
			log.Fatal().Err(err).Str("item", e.name).Msg("opening stock insert")
		}
		total = total.Add(cost)
	}
	return total
}

// loadQuotesCSV imports historical quotes from a CSV with the columns
// request_text, total_amount, quote_explanation, job_type, order_size,
// event_type. A header row is detected and skipped.
func loadQuotesCSV(ctx context.Context, tx pgx.Tx, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if count == 0 && rec[0] == "request_text" {
			continue
		}

		total, err := decimal.NewFromString(rec[1])
		if err != nil {
			return count, fmt.Errorf("row %d: bad total_amount %q: %w", count+1, rec[1], err)
		}

		var requestID int
		if err := tx.QueryRow(ctx,
			`INSERT INTO quote_requests (response) VALUES ($1) RETURNING id`,
			rec[0]).Scan(&requestID); err != nil {
			return count, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO quotes (request_id, total_amount, quote_explanation, order_date, job_type, order_size, event_type)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			requestID, total, rec[2], openingDate, rec[3], rec[4], rec[5]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
