package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reportai-backend/internal/extract"
)

func newVerifyCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that rendered reports contain every section in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := append(append([]string{}, files...), args...)
			if len(targets) == 0 {
				return fmt.Errorf("no files given")
			}
			for _, path := range targets {
				if err := verifyFile(cmd, path); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&files, "file", nil, "rendered report to check (repeatable)")
	return cmd
}

func verifyFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text, err := extract.ExtractTextFromBytes(cmd.Context(), data, "", filepath.Base(path))
	if err != nil {
		return err
	}
	return extract.VerifySectionOrder(text)
}
