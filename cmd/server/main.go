package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "supplies-agent/internal/adapters/web"
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
	log.Info().Int("items", catalog.Len()).Msg("catalog loaded")

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

	handler := webAdapter.NewHandler(workflow, tools.Ledger, tools.Reporting, tools.History, cfg.AllowedOrigins, log)

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
