package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"supplies-agent/internal/ai"
	"supplies-agent/internal/core"

	"github.com/rs/zerolog"
)

// WorkflowService coordinates the three-stage customer request workflow.
// Handle never returns an error: every failure becomes an apology response.
type WorkflowService interface {
	Handle(ctx context.Context, requestText, requestDate string) string
}

// orderKeywords classify a request as an order rather than an inquiry.
var orderKeywords = []string{"order", "buy", "purchase", "place an order"}

// IsOrderRequest reports whether the request text carries order intent.
func IsOrderRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Workflow runs Availability → Quotation → {Fulfillment | Skip} → Synthesize,
// strictly sequentially. Each stage makes exactly one agent call against its
// own tool registry, with every prior stage output embedded verbatim.
type Workflow struct {
	runner       ai.StageRunner
	tools        *Toolset
	log          zerolog.Logger
	maxSteps     int
	stageTimeout time.Duration
	now          func() time.Time
}

func NewWorkflow(runner ai.StageRunner, tools *Toolset, log zerolog.Logger, maxSteps int, stageTimeout time.Duration) *Workflow {
	if maxSteps <= 0 {
		maxSteps = 10
	}
	if stageTimeout <= 0 {
		stageTimeout = 2 * time.Minute
	}
	return &Workflow{
		runner:       runner,
		tools:        tools,
		log:          log,
		maxSteps:     maxSteps,
		stageTimeout: stageTimeout,
		now:          time.Now,
	}
}

func (w *Workflow) Handle(ctx context.Context, requestText, requestDate string) (response string) {
	defer func() {
		if rv := recover(); rv != nil {
			w.log.Error().Interface("panic", rv).Msg("workflow panic")
			response = w.apology(fmt.Errorf("%v", rv))
		}
	}()

	isOrder := IsOrderRequest(requestText)
	w.log.Info().Bool("is_order", isOrder).Str("date", requestDate).Msg("handling request")

	// Stage 1: availability. Shortfalls are advisory and forwarded, never a
	// hard stop.
	availability, err := w.runStage(ctx, "availability", w.availabilityPrompt(requestText, requestDate), w.tools.AvailabilityTools())
	if err != nil {
		return w.apology(err)
	}

	// Stage 2: quotation, always. The recorder captures the quoted total so
	// the run can be appended to the searchable history.
	rec := &quoteRecorder{}
	quote, err := w.runStage(ctx, "quotation", w.quotationPrompt(requestText, requestDate, availability), w.tools.QuotationTools(rec))
	if err != nil {
		return w.apology(err)
	}
	w.recordQuote(ctx, requestText, requestDate, rec, isOrder)

	if !isOrder {
		return fmt.Sprintf(`Thank you for your inquiry!

%s

All quoted items are based on current availability. Please let us know if you'd like to proceed with this order.`, quote)
	}

	// Stage 3: fulfillment — the only stage whose tools can mutate the ledger.
	sale, err := w.runStage(ctx, "fulfillment", w.fulfillmentPrompt(requestText, requestDate, availability, quote), w.tools.FulfillmentTools())
	if err != nil {
		return w.apology(err)
	}

	return fmt.Sprintf(`Thank you for your order!

%s

%s

Your order has been processed. We appreciate your business!`, quote, sale)
}

// runStage makes one bounded agent call. The timeout caps the only
// unbounded-duration operation in the pipeline.
func (w *Workflow) runStage(ctx context.Context, name, prompt string, tools *ai.ToolRegistry) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, w.stageTimeout)
	defer cancel()

	start := w.now()
	out, err := w.runner.Run(stageCtx, prompt, tools, w.maxSteps)
	if err != nil {
		w.log.Error().Err(err).Str("stage", name).Msg("stage failed")
		return "", err
	}
	w.log.Info().Str("stage", name).Dur("elapsed", w.now().Sub(start)).Msg("stage complete")
	return out, nil
}

// recordQuote appends the completed quotation to the history index. Failures
// here must not fail the customer response, so they are only logged.
func (w *Workflow) recordQuote(ctx context.Context, requestText, requestDate string, rec *quoteRecorder, isOrder bool) {
	if !rec.recorded {
		return
	}
	date, err := core.ParseDate(requestDate)
	if err != nil {
		date = w.now()
	}
	eventType := "inquiry"
	if isOrder {
		eventType = "order"
	}
	meta := core.QuoteMetadata{EventType: eventType}
	if err := w.tools.History.Record(ctx, requestText, rec.explanation, rec.total, date, meta); err != nil {
		w.log.Warn().Err(err).Msg("failed to record quote history")
	}
}

func (w *Workflow) apology(err error) string {
	return fmt.Sprintf("We apologize, but we encountered an issue processing your request. Please contact our support team. (Error: %s)", truncate(err.Error(), 100))
}

// ── Stage prompts ─────────────────────────────────────────────────────────────

func (w *Workflow) availabilityPrompt(requestText, requestDate string) string {
	return fmt.Sprintf(`Today is %s.

Customer request: %s

Task: Check if we have the requested items in stock.
- Extract item names and quantities from the request
- Map informal names to exact catalog names (e.g., "glossy paper" to "Glossy paper")
- Use check_inventory_availability to verify stock levels
- Report availability status

Catalog items:
%s`, requestDate, requestText, w.catalogHints())
}

// catalogHints lists every catalog item grouped by category, so the
// availability stage can map informal names onto exact catalog names.
func (w *Workflow) catalogHints() string {
	var b strings.Builder
	for _, category := range w.tools.Catalog.Categories() {
		fmt.Fprintf(&b, "- %s: %s\n", category, strings.Join(w.tools.Catalog.NamesByCategory(category), ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (w *Workflow) quotationPrompt(requestText, requestDate, availability string) string {
	return fmt.Sprintf(`Today is %s.

Customer request: %s
Inventory status: %s

Task: Generate a professional price quote.
- Search for similar past quotes for pricing guidance
- Calculate prices with bulk discounts (15%% for 1000+, 10%% for 500+, 5%% for 100+)
- Provide detailed line-item breakdown
- Show transparent pricing

Use create_quote to generate the final quote.`, requestDate, requestText, availability)
}

func (w *Workflow) fulfillmentPrompt(requestText, requestDate, availability, quote string) string {
	return fmt.Sprintf(`Today is %s.

Customer request: %s
Inventory status: %s
Quote: %s

Task: Process the customer order.
- Use process_customer_sale to record the transaction
- After sale, check if restocking is needed
- If inventory is low and funds available, use restock_from_supplier

Provide confirmation of the sale and any restock actions.`, requestDate, requestText, availability, quote)
}
