package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"market-bot/internal/market"
	"market-bot/internal/models"
	"market-bot/internal/notify"
	"market-bot/internal/scheduler"
	"market-bot/pkg/utils"
)

func addBotCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSnapshotCmd(app))
	rootCmd.AddCommand(newAlertsCmd(app))
	rootCmd.AddCommand(newAskCmd(app))
	rootCmd.AddCommand(newListenCmd(app))
	rootCmd.AddCommand(newResolveCmd(app))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Send the top gainers / losers snapshot once",
		Example: `  marketbot snapshot
  marketbot snapshot --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			n, err := app.notifier(cmd, dryRun)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			msg, err := app.newBot(n).RunSnapshot(ctx)
			if output.IsJSON() {
				result := map[string]interface{}{"message": msg, "sent": err == nil && !dryRun}
				if err != nil {
					result["error"] = err.Error()
				}
				if jerr := output.JSON(result); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}
			if !dryRun {
				output.Success("✓ Market snapshot sent to Telegram")
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "print the message instead of sending it")
	return cmd
}

func newAlertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Watch the watchlist and send alerts on large moves",
		Long: `Checks every watchlist symbol immediately and then every interval_minutes.
A symbol whose absolute % change reaches threshold_percent is flagged, at most
once per trading day when once_per_day is set. If market.snapshot_schedule is
set, the market snapshot is also sent on that cron schedule (IST).`,
		Example: `  marketbot alerts
  marketbot alerts --once --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			once, _ := cmd.Flags().GetBool("once")

			n, err := app.notifier(cmd, dryRun)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			b := app.newBot(n)
			if once {
				res, err := b.RunAlerts(ctx)
				if output.IsJSON() {
					if jerr := output.JSON(res); jerr != nil {
						return jerr
					}
					return err
				}
				if err != nil {
					return err
				}
				printWatchRows(output, res)
				return nil
			}

			interval := time.Duration(app.Config.Alerts.IntervalMinutes) * time.Minute
			if !output.IsJSON() {
				output.Info("Starting alert mode every %d minute(s) for watchlist: %s",
					app.Config.Alerts.IntervalMinutes, strings.Join(app.Config.Alerts.Watchlist, ", "))
			}
			return scheduler.New(b, interval, app.Config.Market.SnapshotSchedule, app.Logger).Run(ctx)
		},
	}
	cmd.Flags().Bool("dry-run", false, "print messages instead of sending them")
	cmd.Flags().Bool("once", false, "run a single alert cycle and exit")
	return cmd
}

func printWatchRows(output *Output, res models.WatchResult) {
	if len(res.Rows) == 0 {
		output.Dim("No watchlist rows this cycle")
		return
	}
	for _, row := range res.Rows {
		marker := " "
		if row.Triggered {
			marker = "*"
		}
		output.Printf("%s %-12s %s  %s\n", marker, row.Symbol,
			output.Change(row.ChangePct, utils.FormatPercent(row.ChangePct)),
			utils.FormatPrice(row.LastPrice))
	}
	if !res.ShouldSend {
		output.Dim("Nothing sent this cycle")
	}
}

func newAskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the assistant about stocks mentioned in a question",
		Args:  cobra.MinimumNArgs(1),
		Example: `  marketbot ask "How is TCS doing today?"
  marketbot ask --send what about infosys and wipro`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			send, _ := cmd.Flags().GetBool("send")
			question := strings.Join(args, " ")

			ctx, cancel := signalContext(cmd)
			defer cancel()

			var n notify.Notifier = notify.NoOpNotifier{}
			if send {
				tg, err := app.telegram()
				if err != nil {
					return err
				}
				n = tg
			}
			b := app.newBot(n)
			// Failure only costs company-name matching.
			_ = b.LoadDirectory(ctx)

			answer, err := b.Answer(ctx, question)
			if err != nil {
				return err
			}

			var sendErr error
			if send {
				sendErr = b.Send(ctx, answer, false)
			}

			if output.IsJSON() {
				result := map[string]interface{}{"question": question, "answer": answer}
				if send {
					result["sent"] = sendErr == nil
				}
				return output.JSON(result)
			}
			output.Println(answer)
			if send {
				if sendErr != nil {
					output.Warning("⚠ Answer not delivered: %v", sendErr)
				} else {
					output.Success("✓ Answer sent to Telegram")
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("send", false, "also send the answer to the Telegram chat as plain text")
	return cmd
}

func newListenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Answer questions posted in the Telegram chat",
		Long: `Long-polls Telegram for messages in the configured chat and replies to each
with the assistant's answer. Plain messages and "/ask <question>" are both
treated as questions; other commands are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := app.telegram()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			b := app.newBot(tg)
			_ = b.LoadDirectory(ctx)

			if !NewOutput(cmd).IsJSON() {
				NewOutput(cmd).Info("Listening for questions in chat %s (Ctrl+C to stop)", tg.ChatID())
			}
			return b.Listen(ctx, tg, tg.ChatID(), app.Config.Telegram.PollTimeout)
		},
	}
}

type resolvedSymbol struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
}

func newResolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <text...>",
		Short: "Show which NSE symbols a question resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := signalContext(cmd)
			defer cancel()

			b := app.newBot(notify.NoOpNotifier{})
			if err := b.LoadDirectory(ctx); err != nil {
				return err
			}
			dir := b.Directory()

			symbols := market.ResolveSymbols(strings.Join(args, " "), dir)
			out := make([]resolvedSymbol, 0, len(symbols))
			for _, s := range symbols {
				out = append(out, resolvedSymbol{Symbol: s, Company: dir.Name(s)})
			}

			if output.IsJSON() {
				return output.JSON(out)
			}
			if len(out) == 0 {
				output.Warning("No symbols resolved (directory has %d symbols)", dir.Len())
				return nil
			}
			for _, r := range out {
				output.Printf("%-12s %s\n", r.Symbol, r.Company)
			}
			return nil
		},
	}
}
