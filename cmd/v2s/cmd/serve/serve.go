package serve

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"captionflow/cmd/v2s/cmd/shared"
)

var shutdownTimeout time.Duration

func init() {
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second,
		"how long in-flight requests may run after SIGINT or SIGTERM")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on SERVER_HOST:SERVER_PORT.

- Swagger UI is served at /swagger/index.html
- Prometheus metrics at /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := shared.Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		a.Logger.Info("providers ready",
			zap.Strings("providers", a.Registry.Names()),
			zap.String("default", a.Registry.DefaultName()),
			zap.String("translator", a.Translator.GeneratorName()),
			zap.String("storage", a.Persister.Backend()))

		return a.Server().ListenAndServe(ctx, shutdownTimeout)
	},
}
