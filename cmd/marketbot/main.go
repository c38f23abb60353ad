// Command marketbot posts NSE market snapshots and watchlist alerts to
// Telegram and answers stock questions with an LLM.
package main

import (
	"os"

	"market-bot/internal/cli"
	"market-bot/internal/logging"
)

func main() {
	// Replaced by the configured logger once the config is loaded.
	os.Exit(cli.Execute(logging.Bootstrap()))
}
