package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/config"
	"github.com/dasch-swiss/mls-app-ng/pkg/handlers"
	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/logging"
	"github.com/dasch-swiss/mls-app-ng/pkg/middleware"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/retry"
	"github.com/dasch-swiss/mls-app-ng/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	email      string
	password   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "mls-app-ng",
		Short:         "Lexicon client for the Knora/DSP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.email, "email", "", "Log in with this email before running the command")
	cmd.PersistentFlags().StringVar(&flags.password, "password", "", "Password for --email")

	cmd.AddCommand(
		serveCmd(flags),
		resourceCmd(flags),
		lemmaCmd(flags),
		resinfoCmd(flags),
		searchCmd(flags),
		versionCmd(),
	)
	return cmd
}

// app holds the wired components of one process.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	knora   *knora.Client
	lexicon services.LexiconService
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := config.LoadFile(flags.configPath, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client := knora.NewClient(cfg.Knora.BaseURL(), logger,
		knora.WithTimeout(cfg.Knora.Timeout),
		knora.WithRetry(retry.WithMaxRetries(cfg.Knora.RetryMax)),
	)

	queries, err := services.NewQueryTemplates(cfg.QueriesFile)
	if err != nil {
		return nil, err
	}

	lexicon := services.NewLexiconService(
		&cfg.Knora,
		client,
		services.NewOntologyCache(client, logger),
		services.NewListCache(client, logger),
		services.NewSessionState(client, logger),
		queries,
		logger,
	)

	return &app{cfg: cfg, logger: logger, knora: client, lexicon: lexicon}, nil
}

// login authenticates when credentials were given on the command line.
func (a *app) login(ctx context.Context, flags *globalFlags) error {
	if flags.email == "" {
		return nil
	}
	result, err := a.lexicon.Login(ctx, flags.email, flags.password)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Token)
	}
	return nil
}

// runCLI wires the app, logs in if asked and runs fn, printing its result as JSON.
func runCLI(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) (any, error)) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx := cmd.Context()
	if err := a.login(ctx, flags); err != nil {
		return err
	}

	result, err := fn(ctx, a)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("Configuration loaded",
		zap.String("env", a.cfg.Env),
		zap.String("knora", a.cfg.Knora.BaseURL()),
		zap.String("ontology", a.cfg.Knora.MLSOntology()))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(a.cfg, a.knora, a.logger).RegisterRoutes(mux)
	handlers.NewLexiconHandler(a.lexicon, a.logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(a.lexicon, a.logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              a.cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(a.logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting mls-app-ng",
			zap.String("addr", server.Addr),
			zap.String("version", a.cfg.Version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func resourceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resource <iri>",
		Short: "Print a resource with generically projected properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, flags, func(ctx context.Context, a *app) (any, error) {
				return a.lexicon.GetResource(ctx, args[0])
			})
		},
	}
}

func lemmaCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lemma <iri>",
		Short: "Print a resource with flat projected properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, flags, func(ctx context.Context, a *app) (any, error) {
				return a.lexicon.GetLemma(ctx, args[0])
			})
		},
	}
}

func resinfoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resinfo <ontology> <class>",
		Short: "Print the property descriptors of a resource class",
		Long: `Print the property descriptors of a resource class.
Class names without a namespace are taken from the MLS ontology.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd, flags, func(ctx context.Context, a *app) (any, error) {
				classIRI := args[1]
				if !strings.Contains(classIRI, "#") {
					classIRI = a.lexicon.MLSOntology() + classIRI
				}
				return a.lexicon.GetResInfo(ctx, args[0], classIRI)
			})
		},
	}
}

func searchCmd(flags *globalFlags) *cobra.Command {
	var (
		params []string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a named Gravsearch query and print the result rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			return runCLI(cmd, flags, func(ctx context.Context, a *app) (any, error) {
				rows, err := a.lexicon.GravsearchQuery(ctx, args[0], values, fields)
				if err != nil {
					return nil, err
				}
				count, err := a.lexicon.GravsearchQueryCount(ctx, args[0], values)
				if err != nil {
					return nil, err
				}
				return models.SearchResult{Count: count, Rows: rows}, nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Template parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field to project into a column (repeatable)")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

// parseParams turns key=value pairs into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", pair)
		}
		params[k] = v
	}
	return params, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mls-app-ng version %s\n", Version)
		},
	}
}
