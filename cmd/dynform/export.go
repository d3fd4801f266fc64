package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/openapi"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		server string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the schema as JSON, YAML or an OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.loadSchema(ctx)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(s, "", "  ")
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(s)
			case "openapi":
				doc, exportErr := openapi.Export(ctx, s, openapi.WithServer(server))
				if exportErr != nil {
					return exportErr
				}
				data, err = json.MarshalIndent(doc, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unknown format %q (json|yaml|openapi)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json|yaml|openapi)")
	cmd.Flags().StringVar(&server, "server", "", "server URL to list in the OpenAPI document")
	return cmd
}
