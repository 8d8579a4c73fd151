package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groow/smoke/internal/catalog"
)

func newSuitesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "suites",
		Short:       "List the bundled endpoint catalog",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			suites, err := a.loadSuites()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-28s %-28s %s\n", "MODULE", "CATEGORY", "ENDPOINTS")
			for _, s := range suites {
				fmt.Fprintf(out, "%-28s %-28s %d\n", s.Module, s.Category, len(s.Endpoints))
			}
			fmt.Fprintf(out, "\n%d modules, %d endpoints\n", len(suites), catalog.Count(suites))
			return nil
		},
	}
}
