// Command dashctl runs the dashboard's operations from a shell: batch
// ingestion, status checks, stats reports and media migration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/ctxutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

var logMode string

var rootCmd = &cobra.Command{
	Use:           "dashctl",
	Short:         "Operate the ad data health dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", envOr("LOG_MODE", "production"), "logger config: production or development")
	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "health", Title: "Health:"},
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// withApp builds the app for one command run and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	log, err := logger.New(logMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithInvocation(ctx, ctxutil.Invocation{
		Origin:    ctxutil.OriginCLI,
		RequestID: uuid.NewString(),
		Operation: cmd.CommandPath(),
	})
	log = log.With(ctxutil.LogFields(ctx)...)

	a, err := app.New(ctx, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
