package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vspec/pkg/selector"
)

// exampleParams are the parameters shown for the built-in selectors.
var exampleParams = map[string]string{
	selector.NameButton:           "save",
	selector.NameFormWithID:       "signup",
	selector.NameElement:          "ul > li",
	selector.NameElementWithID:    "title",
	selector.NameElementWithClass: "error",
}

func selectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selectors",
		Short: "List the built-in selectors",
		Long: `List the built-in selectors with an example query and the
description used in failure messages and generated test names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXAMPLE QUERY\tDESCRIPTION")
			for _, name := range selector.Default.Names() {
				res, err := selector.Default.Resolve(name, exampleParams[name])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, res.Query, res.Description)
			}
			return w.Flush()
		},
	}
}
