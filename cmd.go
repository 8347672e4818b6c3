package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pricequote/config"
	"pricequote/services"
)

// newCatalogCommand returns the "catalog" command group for checking the
// pricing workbook without starting the server.
func newCatalogCommand(configPath *string) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the pricing workbook",
	}

	var file string
	validateCmd := &cobra.Command{
		Use:          "validate",
		Short:        "Load every product sheet and report which modes are usable",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path := cfg.Catalog.Path
			if file != "" {
				path = file
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook: %s\n", path)
			return reportCatalog(cmd.OutOrStdout(), services.LoadCatalogFile(path))
		},
	}
	validateCmd.Flags().StringVar(&file, "file", "", "workbook to check instead of the configured one")

	catalogCmd.AddCommand(validateCmd)
	return catalogCmd
}

var errCatalogInvalid = errors.New("one or more product sheets failed to load")

// reportCatalog prints one status line per mode and fails when any mode is
// unavailable.
func reportCatalog(w io.Writer, cat *services.Catalog) error {
	failed := false
	for _, mode := range services.ModeOptions {
		t, err := cat.Table(mode)
		if err != nil {
			failed = true
			fmt.Fprintf(w, "  FAIL  %-15s %v\n", mode, err)
			continue
		}
		fmt.Fprintf(w, "  ok    %-15s %d markets\n", mode, len(t.Markets()))
	}
	if failed {
		return errCatalogInvalid
	}
	return nil
}
