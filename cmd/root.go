package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/instrumentation"
	"github.com/teemow/outlookmail/internal/logging"
	"github.com/teemow/outlookmail/internal/outlook"
)

// rootCmd represents the base command for the outlookmail application
var rootCmd = &cobra.Command{
	Use:   "outlookmail",
	Short: "Work with an Outlook mailbox from the command line",
	Long: `outlookmail reads and manages an Outlook mailbox over the Microsoft
Graph mail API: list and inspect messages, manage folders, route
senders between the Focused and Other inbox sections, and send mail.

Authentication uses a bearer token obtained outside this tool, passed
via --token or the OUTLOOK_TOKEN environment variable.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	tokenFlag         string
	baseURLFlag       string
	logLevelFlag      string
	metricsListenFlag string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "outlookmail version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token for the mail API. Can also use OUTLOOK_TOKEN env var.")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", outlook.DefaultBaseURL, "Mail API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsListenFlag, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(newMessagesCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newContactsCmd())
	rootCmd.AddCommand(newAutoReplyCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newAccount builds the account facade shared by all subcommands: token
// from flag or environment, structured logging to stderr, and the
// instrumentation provider wired into the request path. The returned
// cleanup flushes telemetry and must run before the process exits.
func newAccount(ctx context.Context) (*outlook.Account, func(), error) {
	token := tokenFlag
	if token == "" {
		token = os.Getenv("OUTLOOK_TOKEN")
	}
	if token == "" {
		return nil, nil, fmt.Errorf("no token provided: use --token or set OUTLOOK_TOKEN")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(logLevelFlag),
	}))

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	var metricsServer *http.Server
	if metricsListenFlag != "" {
		if handler := provider.PrometheusHandler(); handler != nil {
			mux := http.NewServeMux()
			mux.Handle("/metrics", handler)
			metricsServer = &http.Server{
				Addr:              metricsListenFlag,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server failed", logging.Err(err))
				}
			}()
		} else {
			logger.Warn("metrics listener requested but the prometheus exporter is not active",
				slog.String("addr", metricsListenFlag))
		}
	}

	account := outlook.NewAccount(token,
		outlook.WithBaseURL(baseURLFlag),
		outlook.WithLogger(logger),
		outlook.WithMetrics(provider.Metrics()),
		outlook.WithTracer(provider.Tracer(instrumentation.TracerName)),
	)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}

	return account, cleanup, nil
}
