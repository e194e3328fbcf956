package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Spok95/solar-bom/internal/bom"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the bill of materials of a project to an xlsx file",
		RunE:  runExport,
	}
	cmd.Flags().StringP("project", "p", "", "project id")
	cmd.Flags().StringP("out", "o", "", "output file (default stueckliste-<project>.xlsx)")
	cmd.Flags().StringP("ledger", "l", "", "YAML ledger snapshot instead of the database")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString("project")
	out, _ := cmd.Flags().GetString("out")
	ledgerPath, _ := cmd.Flags().GetString("ledger")
	if out == "" {
		out = fmt.Sprintf("stueckliste-%s.xlsx", projectID)
	}

	ctx := cmd.Context()
	b, err := openBackend(ctx, ledgerPath)
	if err != nil {
		return err
	}
	defer b.close()

	split, done, err := b.load(ctx, projectID)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := bom.WriteXLSX(f, projectID, split, done); err != nil {
		_ = f.Close()
		return fmt.Errorf("write xlsx: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", split.Len(), out)
	return nil
}
