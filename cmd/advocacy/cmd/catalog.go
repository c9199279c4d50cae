// Package cmd - catalog command
package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"advocacy-workers/internal/catalog"
)

func newCatalogCmd(_ *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the program catalog as YAML",
		Long: `Print the benefit program catalog. Without --catalog the built-in
reference catalog is printed, which is a valid starting point for a
custom catalog file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			programs, err := loadCatalog(cmd.Context(), path)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(catalog.File{Programs: programs})
		},
	}
	cmd.Flags().StringVarP(&path, "catalog", "c", "", "program catalog file to check and print")
	return cmd
}
