package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Market Bot Configuration

[market]
# Label shown in message headers
exchange_label = "NSE"
# Index queried for top gainers / losers: NIFTY, BANKNIFTY, NIFTYNEXT50, allSec
index = "NIFTY"
# Number of gainers / losers to display
top_n = 5
# Cron spec (IST) for scheduled snapshots while running 'marketbot alerts'.
# Empty disables. Example: "35 15 * * 1-5"
snapshot_schedule = ""

[alerts]
# Symbols re-checked every cycle
watchlist = ["RELIANCE", "TCS", "HDFCBANK", "INFY"]
# Fire when the absolute % change is at least this
threshold_percent = 0.0
# Minutes between watchlist checks
interval_minutes = 1
# Alert each symbol at most once per trading day
once_per_day = true
# Send the watchlist every cycle, even without triggers
always_send_snapshot = true
# Skip cycles outside 09:15-15:30 IST on weekdays
market_hours_only = false

[provider]
base_url = "https://www.nseindia.com"
archive_url = "https://nsearchives.nseindia.com"
timeout = "15s"

[telegram]
api_url = "https://api.telegram.org"
timeout = "15s"
poll_timeout = "30s"

[llm]
# Any OpenAI-compatible endpoint; the default is a local Ollama
base_url = "http://localhost:11434/v1"
model = "llama3.2"
max_tokens = 600
temperature = 0.4

[logging]
# debug, info, warn, error
level = "info"
console = true
file = true
`

const credentialsTemplate = `# Market Bot Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[telegram]
bot_token = ""
chat_id = ""

[openai]
# Local Ollama accepts any non-empty key
api_key = "ollama"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
