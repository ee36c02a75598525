package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vspec/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "Explain error codes",
		Long: `List the error codes vspec reports, or explain one.

Examples:
  vspec errors
  vspec errors E004`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				tmpl, ok := errors.GetTemplate(code)
				if !ok {
					return fmt.Errorf("unknown error code %q", args[0])
				}
				fmt.Fprintf(out, "%s %s (%s)\n", color.New(color.Bold).Sprint(code), tmpl.Message, tmpl.Category)
				if tmpl.Detail != "" {
					fmt.Fprintf(out, "\n  %s\n", tmpl.Detail)
				}
				return nil
			}
			for _, code := range errors.GetAllCodes() {
				tmpl, _ := errors.GetTemplate(code)
				fmt.Fprintf(out, "%s  %-10s %s\n", code, tmpl.Category, tmpl.Message)
			}
			return nil
		},
	}
}
