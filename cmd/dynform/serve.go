package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/metrics"
	"github.com/goliatone/go-dynform/internal/server"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.cfg.Addr, _ = flags.GetString("addr")
			}
			if flags.Changed("watch") {
				a.cfg.Watch, _ = flags.GetBool("watch")
			}
			if flags.Changed("verify") {
				a.cfg.Verify, _ = flags.GetBool("verify")
			}
			if flags.Changed("gate") {
				a.cfg.GateMode, _ = flags.GetString("gate")
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			initial, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}

			htmlOptions := []vanilla.Option{vanilla.WithDocument("/assets/" + vanilla.RuntimeScriptName)}
			if a.cfg.Templates != "" {
				htmlOptions = append(htmlOptions, vanilla.WithTemplatesDir(a.cfg.Templates))
			}
			if a.cfg.Stylesheet != "" {
				htmlOptions = append(htmlOptions, vanilla.WithStylesheet(a.cfg.Stylesheet))
			}
			html, err := vanilla.New(htmlOptions...)
			if err != nil {
				return err
			}

			options := []server.Option{
				server.WithLogger(a.logger),
				server.WithMetrics(metrics.New()),
				server.WithRenderer(html),
				server.WithGateMode(a.cfg.Gate()),
				server.WithPayloadVerification(a.cfg.Verify),
				server.WithDebounce(a.cfg.Debounce),
			}
			src, err := a.source()
			if err != nil {
				return err
			}
			if src != nil {
				options = append(options, server.WithSource(a.loader, src, a.cfg.Operation))
			}

			srv, err := server.New(initial, options...)
			if err != nil {
				return err
			}
			if a.cfg.Watch {
				stop, err := srv.Watch(ctx)
				if err != nil {
					return err
				}
				defer stop()
			}

			a.logger.Info("serving form", zap.String("form", initial.ID), zap.String("gate", string(a.cfg.Gate())))
			return srv.ListenAndServe(ctx, a.cfg.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("watch", false, "reload the schema file when it changes")
	cmd.Flags().Bool("verify", false, "check accepted payloads against the exported OpenAPI schema")
	cmd.Flags().String("gate", "", "submission gate (strict|presence)")
	return cmd
}
