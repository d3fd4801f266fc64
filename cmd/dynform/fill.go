package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		format      string
		reveal      bool
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}

			session, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithOutputFormat(tui.ParseOutputFormat(format)),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithFormOptions(form.WithGateMode(a.cfg.Gate()), form.WithLogger(a.logger)),
			)
			if err != nil {
				return err
			}

			out, err := session.Render(ctx, s, render.RenderOptions{RevealPasswords: reveal})
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "payload format (json|form|pretty)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "echo password input")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "give up after this many invalid answers to one prompt (0 = unbounded)")
	return cmd
}
