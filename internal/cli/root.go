// Package cli provides the command-line interface for the market bot.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"market-bot/internal/assistant"
	"market-bot/internal/bot"
	"market-bot/internal/config"
	"market-bot/internal/logging"
	"market-bot/internal/notify"
	"market-bot/internal/provider"
)

// Version information, overridable with -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// App holds the application dependencies. Config and Logger are filled in
// once flags are parsed.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
}

// skipConfig lists commands that work without a loadable configuration.
var skipConfig = map[string]bool{
	"version": true,
	"path":    true,
	"help":    true,
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	app := &App{Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "marketbot",
		Short: "NSE market movers and watchlist alerts for Telegram",
		Long: `marketbot posts a daily NSE top gainers / losers snapshot with heuristic
sentiment tags to a Telegram chat, watches a list of symbols for large moves,
and answers free-form questions about stocks with a local LLM.

Tags and bias lines are descriptive heuristics, not investment advice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.ConfigDir, _ = cmd.Flags().GetString("config")
			if app.ConfigDir == "" {
				app.ConfigDir = config.DefaultConfigDir()
			}
			if skipConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.Load(app.ConfigDir)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/market-bot)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addBotCommands(rootCmd, app)

	return rootCmd
}

// Execute runs the root command and reports errors on stderr.
func Execute(logger zerolog.Logger) int {
	rootCmd := NewRootCmd(logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newBot wires the provider, assistant and n into a bot.
func (a *App) newBot(n notify.Notifier) *bot.Bot {
	var llm assistant.LLMClient
	if a.Config.LLM.Model != "" {
		llm = assistant.NewOpenAIClient(a.Config.LLM, a.Config.Credentials.OpenAI.APIKey)
	}
	return bot.New(bot.Options{
		Config:   a.Config,
		Provider: provider.NewNSEClient(a.Config.Provider, a.Logger),
		Notifier: n,
		LLM:      llm,
		Logger:   a.Logger,
	})
}

// telegram returns the Telegram notifier, failing early when credentials
// are missing.
func (a *App) telegram() (*notify.TelegramNotifier, error) {
	if err := a.Config.RequireTelegram(); err != nil {
		return nil, err
	}
	return notify.NewTelegramNotifier(a.Config.Telegram, a.Config.Credentials.Telegram), nil
}

// notifier picks the delivery channel: the terminal for dry runs, Telegram
// otherwise.
func (a *App) notifier(cmd *cobra.Command, dryRun bool) (notify.Notifier, error) {
	if dryRun {
		if NewOutput(cmd).IsJSON() {
			return notify.NoOpNotifier{}, nil
		}
		return notify.NewConsoleNotifier(cmd.OutOrStdout()), nil
	}
	return a.telegram()
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("marketbot v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the configuration in the config directory.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(redacted(app.Config))
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.ConfigDir})
			}
			output.Println(app.ConfigDir)
			output.Dim("%s", filepath.Join(app.ConfigDir, "config.toml"))
			output.Dim("%s", filepath.Join(app.ConfigDir, "credentials.toml"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			// Load already validated the files; check delivery credentials too.
			telegramErr := app.Config.RequireTelegram()
			if output.IsJSON() {
				result := map[string]interface{}{"valid": true, "telegram": telegramErr == nil}
				if telegramErr != nil {
					result["telegram_error"] = telegramErr.Error()
				}
				return output.JSON(result)
			}
			output.Success("✓ Configuration is valid")
			if telegramErr != nil {
				output.Warning("⚠ %v", telegramErr)
			} else {
				output.Success("✓ Telegram credentials present")
			}
			return nil
		},
	})

	return cmd
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func redacted(cfg *config.Config) config.Config {
	out := *cfg
	out.Credentials.Telegram.BotToken = maskSecret(cfg.Credentials.Telegram.BotToken)
	out.Credentials.OpenAI.APIKey = maskSecret(cfg.Credentials.OpenAI.APIKey)
	return out
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Market")
	output.Printf("  Exchange label:    %s\n", cfg.Market.ExchangeLabel)
	output.Printf("  Index:             %s\n", cfg.Market.Index)
	output.Printf("  Top N:             %d\n", cfg.Market.TopN)
	output.Printf("  Snapshot schedule: %s\n", orDash(cfg.Market.SnapshotSchedule))
	output.Println()

	output.Bold("Alerts")
	output.Printf("  Watchlist:         %v\n", cfg.Alerts.Watchlist)
	output.Printf("  Threshold:         ±%.1f%%\n", cfg.Alerts.ThresholdPercent)
	output.Printf("  Interval:          %d min\n", cfg.Alerts.IntervalMinutes)
	output.Printf("  Once per day:      %v\n", cfg.Alerts.OncePerDay)
	output.Printf("  Always snapshot:   %v\n", cfg.Alerts.AlwaysSendSnapshot)
	output.Printf("  Market hours only: %v\n", cfg.Alerts.MarketHoursOnly)
	output.Println()

	output.Bold("Telegram")
	output.Printf("  Bot token:         %s\n", orDash(maskSecret(cfg.Credentials.Telegram.BotToken)))
	output.Printf("  Chat ID:           %s\n", orDash(cfg.Credentials.Telegram.ChatID))
	output.Println()

	output.Bold("Assistant")
	output.Printf("  Endpoint:          %s\n", cfg.LLM.BaseURL)
	output.Printf("  Model:             %s\n", cfg.LLM.Model)
	output.Printf("  Max tokens:        %d\n", cfg.LLM.MaxTokens)
	output.Printf("  Temperature:       %.2f\n", cfg.LLM.Temperature)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
