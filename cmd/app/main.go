package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"supplies-agent/internal/adapters/repl"
	"supplies-agent/internal/ai"
	"supplies-agent/internal/app"
	"supplies-agent/internal/config"
	"supplies-agent/internal/core"
	"supplies-agent/internal/db"

	"github.com/rs/zerolog"
)

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

	catalog, err := core.LoadCatalog(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog")
	}

	ledger := core.NewLedger(pool)
	tools := &app.Toolset{
		Ledger:      ledger,
		Catalog:     catalog,
		Pricing:     core.NewPricingEngine(catalog),
		Fulfillment: core.NewFulfillmentService(ledger, catalog),
		Reporting:   core.NewReportingService(pool, ledger, catalog),
		History:     core.NewQuoteHistory(pool),
	}

	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	workflow := app.NewWorkflow(agent, tools, log, cfg.AgentMaxSteps, cfg.AgentStageTimeout)

	if len(os.Args) > 1 {
		runCommand(ctx, log, os.Args[1], os.Args[2:], workflow, tools)
		return
	}

	repl.Run(ctx, workflow, tools.Ledger, tools.Catalog, tools.Reporting, tools.History, bufio.NewReader(os.Stdin))
}

func runCommand(ctx context.Context, log zerolog.Logger, cmd string, args []string,
	workflow app.WorkflowService, tools *app.Toolset) {

	asOf := func() time.Time {
		if len(args) > 0 {
			t, err := core.ParseDate(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("invalid date")
			}
			return t
		}
		return time.Now()
	}

	switch cmd {
	case "handle":
		if len(args) < 1 {
			log.Fatal().Msg("usage: app handle \"<customer request>\" [date]")
		}
		date := time.Now().Format("2006-01-02")
		if len(args) > 1 {
			date = args[1]
		}
		fmt.Println(workflow.Handle(ctx, args[0], date))

	case "report":
		report, err := tools.Reporting.Report(ctx, asOf())
		if err != nil {
			log.Fatal().Err(err).Msg("report")
		}
		fmt.Printf("As of:           %s\n", report.AsOf.Format("2006-01-02"))
		fmt.Printf("Cash balance:    $%s\n", report.CashBalance.StringFixed(2))
		fmt.Printf("Inventory value: $%s\n", report.InventoryValue.StringFixed(2))
		fmt.Printf("Total assets:    $%s\n", report.TotalAssets.StringFixed(2))
		for _, s := range report.TopSellers {
			fmt.Printf("  %s: %d units, $%s\n", s.ItemName, s.TotalUnits, s.TotalRevenue.StringFixed(2))
		}

	case "inventory":
		stock, err := tools.Ledger.AllStockAsOf(ctx, asOf())
		if err != nil {
			log.Fatal().Err(err).Msg("inventory")
		}
		for _, name := range tools.Catalog.Names() {
			if units, ok := stock[name]; ok {
				fmt.Printf("%-46s %8d\n", name, units)
			}
		}

	case "cash":
		cash, err := tools.Ledger.CashAsOf(ctx, asOf())
		if err != nil {
			log.Fatal().Err(err).Msg("cash")
		}
		fmt.Printf("$%s\n", cash.StringFixed(2))

	case "quotes":
		if len(args) == 0 {
			log.Fatal().Msg("usage: app quotes <keyword> [keyword...]")
		}
		quotes, err := tools.History.Search(ctx, args, core.DefaultSearchLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("quotes")
		}
		if len(quotes) == 0 {
			fmt.Printf("No quotes found matching: %s\n", strings.Join(args, ", "))
			return
		}
		for _, q := range quotes {
			fmt.Printf("%s  $%-10s %s\n", q.OrderDate.Format("2006-01-02"), q.TotalAmount.StringFixed(2), q.OriginalRequest)
		}

	default:
		log.Fatal().Str("command", cmd).Msg("unknown command")
	}
}
