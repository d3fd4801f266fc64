package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/validation"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the schema and print the derived ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			rules, err := validation.Derive(s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			name := s.ID
			if name == "" {
				name = "form"
			}
			fmt.Fprintf(out, "%s: %d fields ok\n", name, len(s.Fields))

			tw := tablewriter.NewWriter(out)
			tw.SetHeader([]string{"Field", "Type", "Required", "Pattern"})
			tw.SetAutoWrapText(false)
			for _, field := range s.Fields {
				pattern := "-"
				if rule, ok := rules.Rule(field.Name); ok && rule.Pattern() != nil {
					pattern = rule.Pattern().String()
				}
				tw.Append([]string{field.Name, string(field.Type), strconv.FormatBool(field.Required), pattern})
			}
			tw.Render()

			var lists []string
			for _, field := range s.Fields {
				if field.IsMultiValue() {
					lists = append(lists, field.Name)
				}
			}
			if len(lists) > 0 {
				fmt.Fprintf(out, "multi-value: %s\n", strings.Join(lists, ", "))
			}
			return nil
		},
	}
}
