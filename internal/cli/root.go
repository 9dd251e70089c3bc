package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/peteraglen/restconsumer"
	"github.com/peteraglen/restconsumer/internal/config"
)

var (
	cfgPath     string
	isDebug     bool
	showMetrics bool
)

// loaded by the persistent pre-run hook.
var (
	cfg      *config.AppConfig
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "restcall",
	Short: "Call a REST API described by a descriptor tree",
	Long: `restcall loads an API descriptor from its config file and issues calls
against it, navigating members by name and resolving path placeholders.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err, "kind", restconsumer.KindOf(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "restcall.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print transport metrics after the call")

	rootCmd.AddCommand(callCmd, treeCmd)
}

func setup(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	// Load Configuration
	loaded, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return err
	}

	// Setup logging
	stylelog.InitDefault(&tint.Options{
		Level:      logLevel(loaded.Logging.Level, isDebug),
		TimeFormat: time.RFC3339,
	})

	if loaded.API == nil {
		return fmt.Errorf("config %s declares no api", cfgPath)
	}

	cfg = loaded
	registry = prometheus.NewRegistry()
	return nil
}

func logLevel(name string, debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newFetcher builds the transport described by c. Tokens select a
// [restconsumer.TokenTransport].
func newFetcher(c *config.AppConfig, reg prometheus.Registerer) (restconsumer.Fetcher, error) {
	opts := append(c.TransportOptions(),
		restconsumer.WithRequestLogger(restconsumer.NewSlogLogger(slog.Default())),
		restconsumer.WithMetrics(restconsumer.NewMetrics(reg)),
	)

	if len(c.Tokens) > 0 {
		transport := restconsumer.NewTokenTransport(c.Tokens, opts...)
		if err := transport.Validate(); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
		return transport, nil
	}

	transport := restconsumer.NewTransport(opts...)
	if err := transport.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return transport, nil
}
