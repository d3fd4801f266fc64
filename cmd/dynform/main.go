package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/internal/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/schema"
)

const httpTimeout = 30 * time.Second

// app carries the state every subcommand shares once the persistent flags
// have been resolved.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
	loader     *schema.Loader
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:           "dynform",
		Short:         "Render, serve and fill schema driven forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a dynform YAML config file")
	flags.String("schema", "", "schema file or URL (embedded sign-up form when empty)")
	flags.String("operation", "", "import the schema from this OpenAPI operation's request body")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-format", "", "log format (console|json)")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newFillCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newCheckCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := map[string]*string{
		"schema":     &cfg.Schema,
		"operation":  &cfg.Operation,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
	}
	for name, target := range overrides {
		if flags.Changed(name) {
			value, err := flags.GetString(name)
			if err != nil {
				return err
			}
			*target = value
		}
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.loader = schema.NewLoader(schema.WithHTTPFallback(httpTimeout))
	return nil
}

// source resolves the configured schema location. A nil source means the
// embedded default schema.
func (a *app) source() (schema.Source, error) {
	if a.cfg.Schema == "" {
		return nil, nil
	}
	return schema.ParseSource(a.cfg.Schema)
}

func (a *app) loadSchema(ctx context.Context) (model.Schema, error) {
	src, err := a.source()
	if err != nil {
		return model.Schema{}, err
	}
	if src == nil {
		return schema.Default()
	}
	if a.cfg.Operation == "" {
		return a.loader.Load(ctx, src)
	}
	doc, err := a.loader.Fetch(ctx, src)
	if err != nil {
		return model.Schema{}, err
	}
	return openapi.ImportDocument(ctx, doc, openapi.WithOperation(a.cfg.Operation), openapi.WithSchemaLoader(a.loader))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dynform:", err)
		os.Exit(1)
	}
}
