package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"supplies-agent/internal/app"
	"supplies-agent/internal/core"
)

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically,
// and routes natural language input through the request workflow.
func Run(ctx context.Context, workflow app.WorkflowService, ledger core.LedgerService, catalog *core.Catalog,
	reporting core.ReportingService, history core.QuoteHistoryService, reader *bufio.Reader) {

	requestDate := time.Now().Format("2006-01-02")

	fmt.Println("Supplies Agent")
	fmt.Printf("Request date: %s\n", requestDate)
	fmt.Println("Describe what you need to get a quote or place an order, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	parseAsOf := func(args []string) (time.Time, error) {
		if len(args) == 0 {
			return core.ParseDate(requestDate)
		}
		return core.ParseDate(args[0])
	}

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "report":
			asOf, err := parseAsOf(args)
			if err != nil {
				return err
			}
			report, err := reporting.Report(ctx, asOf)
			if err != nil {
				return err
			}
			printReport(report)

		case "inventory", "stock":
			asOf, err := parseAsOf(args)
			if err != nil {
				return err
			}
			stock, err := ledger.AllStockAsOf(ctx, asOf)
			if err != nil {
				return err
			}
			printInventory(stock, asOf)

		case "cash":
			asOf, err := parseAsOf(args)
			if err != nil {
				return err
			}
			cash, err := ledger.CashAsOf(ctx, asOf)
			if err != nil {
				return err
			}
			fmt.Printf("Cash balance as of %s: $%s\n", asOf.Format("2006-01-02"), cash.StringFixed(2))

		case "transactions", "tx":
			limit := 20
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					fmt.Println("Usage: /transactions [count]")
					return nil
				}
				limit = n
			}
			txs, err := ledger.RecentTransactions(ctx, limit)
			if err != nil {
				return err
			}
			printTransactions(txs)

		case "catalog":
			printCatalog(catalog)

		case "quotes":
			if len(args) == 0 {
				fmt.Println("Usage: /quotes <keyword> [keyword...]")
				return nil
			}
			quotes, err := history.Search(ctx, args, core.DefaultSearchLimit)
			if err != nil {
				return err
			}
			printQuotes(quotes, args)

		case "date":
			if len(args) == 0 {
				fmt.Printf("Current request date: %s\n", requestDate)
				return nil
			}
			if _, err := core.ParseDate(args[0]); err != nil {
				return err
			}
			requestDate = args[0]
			fmt.Printf("Request date set to %s\n", requestDate)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		// No slash prefix → route the request through the full workflow.
		fmt.Println("[AI] Processing...")
		response := workflow.Handle(ctx, input, requestDate)
		fmt.Println()
		fmt.Println(response)
	}
}

func printHelp() {
	fmt.Println(`
Commands:
  /report [date]          Financial report as of a date (default: request date)
  /inventory [date]       Stock levels as of a date
  /cash [date]            Cash balance as of a date
  /transactions [count]   Most recent ledger entries
  /catalog                Full price list by category
  /quotes <keywords...>   Search past quotes by keyword
  /date [YYYY-MM-DD]      Show or set the request date
  /help                   Show this help
  /exit                   Quit

Anything else is treated as a customer request and sent to the agent.`)
}
