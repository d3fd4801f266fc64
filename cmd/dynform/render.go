package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		rendererName string
		out          string
		document     bool
		action       string
		format       string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form with a registered renderer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}

			registry, err := a.renderers(cmd, document, tui.ParseOutputFormat(format))
			if err != nil {
				return err
			}
			renderer, err := registry.Get(rendererName)
			if err != nil {
				return err
			}

			data, err := renderer.Render(ctx, s, render.RenderOptions{Action: action})
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s output written to %s\n", renderer.Name(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&rendererName, "renderer", vanilla.Name, "renderer to use (vanilla|tui)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	cmd.Flags().BoolVar(&document, "document", false, "wrap HTML output in a standalone page")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "tui payload format (json|form|pretty)")
	return cmd
}

// renderers builds the registry of every renderer the CLI knows. The vanilla
// renderer is registered first and acts as the default.
func (a *app) renderers(cmd *cobra.Command, document bool, format tui.OutputFormat) (*render.Registry, error) {
	var htmlOptions []vanilla.Option
	if a.cfg.Templates != "" {
		htmlOptions = append(htmlOptions, vanilla.WithTemplatesDir(a.cfg.Templates))
	}
	if document {
		htmlOptions = append(htmlOptions, vanilla.WithDocument("assets/"+vanilla.RuntimeScriptName))
		if a.cfg.Stylesheet != "" {
			htmlOptions = append(htmlOptions, vanilla.WithStylesheet(a.cfg.Stylesheet))
		}
	}
	html, err := vanilla.New(htmlOptions...)
	if err != nil {
		return nil, err
	}

	terminal, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
		tui.WithOutputFormat(format),
		tui.WithFormOptions(form.WithGateMode(a.cfg.Gate()), form.WithLogger(a.logger)),
	)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(html, terminal)
}
