package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/meetbot/config"
	"github.com/s0up4200/meetbot/meetbot"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *meetbot.Client
	registry *prometheus.Registry

	// Global flags
	baseURL    string
	apiKey     string
	timeout    time.Duration
	outputMode string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "meetbot",
	Short: "A command line client for the meeting bot service",
	Long: `meetbot talks to a meeting bot service: register users, manage API keys,
send bots into video meetings and read back their transcripts.

Connection settings come from config.yaml, MEETBOT_* environment variables
or the global flags, in increasing order of precedence.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: logRequestSummary,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, ~/.meetbot/config.yaml)")
	flags.StringVar(&baseURL, "base-url", "", "meeting bot service URL (overrides service.url)")
	flags.StringVar(&apiKey, "api-key", "", "API key for bot and transcript commands (overrides service.api_key)")
	flags.DurationVar(&timeout, "timeout", 0, "request timeout (overrides service.timeout)")
	flags.StringVarP(&outputMode, "output", "o", "", "output format: text or json (overrides output)")
}

// initializeApp initializes the configuration, logger and client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line flags take precedence over config and environment
	if cmd.Flags().Changed("base-url") {
		cfg.Service.URL = baseURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Service.APIKey = apiKey
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Service.Timeout = timeout
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = outputMode
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	registry = prometheus.NewRegistry()
	metrics, err := meetbot.NewMetrics(registry)
	if err != nil {
		return err
	}

	client, err = meetbot.NewClient(meetbot.Config{
		BaseURL: cfg.Service.URL,
		Timeout: cfg.Service.Timeout,
	}, logger, meetbot.WithMetrics(metrics), meetbot.WithUserAgent("meetbot-cli/"+version))
	if err != nil {
		return fmt.Errorf("failed to create meeting bot client: %w", err)
	}

	logger.Debug().
		Str("url", client.BaseURL()).
		Dur("timeout", client.Timeout()).
		Msg("Meeting bot client ready")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Colors only when asked for and stderr is a terminal
	noColor := !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// logRequestSummary reports per-operation request counts at debug level
func logRequestSummary(cmd *cobra.Command, args []string) error {
	if registry == nil || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return nil
	}

	for _, family := range families {
		if family.GetName() != "meetbot_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			event := logger.Debug()
			for _, label := range metric.GetLabel() {
				event = event.Str(label.GetName(), label.GetValue())
			}
			event.Float64("count", metric.GetCounter().GetValue()).Msg("Request summary")
		}
	}

	return nil
}

// requireAPIKey returns the configured credential or an error naming how to set it
func requireAPIKey() (string, error) {
	key := strings.TrimSpace(cfg.Service.APIKey)
	if key == "" {
		return "", fmt.Errorf("an API key is required: use --api-key, service.api_key or MEETBOT_SERVICE_API_KEY")
	}
	return key, nil
}

// commandContext returns the command context, or a background context outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
