package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file...]",
		Short: "Ingest uplinks from csv or xlsx files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, core, closeCore, err := openCore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCore()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				summary, err := core.ImportFile(cmd.Context(), filepath.Base(path), f)
				f.Close()
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				if err := enc.Encode(summary); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
