package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Spok95/solar-bom/internal/bom"
)

func newBOMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bom",
		Short:   "Print the bill of materials of a project grouped by category",
		Aliases: []string{"stueckliste"},
		RunE:    runBOM,
	}
	cmd.Flags().StringP("project", "p", "", "project id")
	cmd.Flags().StringP("ledger", "l", "", "YAML ledger snapshot instead of the database")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func runBOM(cmd *cobra.Command, args []string) error {
	projectID, err := cmd.Flags().GetString("project")
	if err != nil {
		return fmt.Errorf("failed to get project flag: %w", err)
	}
	ledgerPath, err := cmd.Flags().GetString("ledger")
	if err != nil {
		return fmt.Errorf("failed to get ledger flag: %w", err)
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
	printBOM(cmd.OutOrStdout(), projectID, split, done)
	return nil
}

var groupHeaders = map[bom.Category]string{
	bom.CategoryConfigured: "Configured",
	bom.CategoryAuto:       "Auto",
	bom.CategoryManual:     "Manual",
}

func printBOM(w io.Writer, projectID string, s bom.Split, done map[string]bool) {
	title := color.New(color.Bold)
	header := color.New(color.FgCyan, color.Bold)
	check := color.New(color.FgGreen)
	warn := color.New(color.FgRed)

	_, _ = title.Fprintf(w, "Project %s\n", projectID)
	if s.Len() == 0 {
		_, _ = fmt.Fprintln(w, "no materials booked")
		return
	}

	for _, g := range s.Groups() {
		if len(g.Rows) == 0 {
			continue
		}
		_, _ = header.Fprintf(w, "\n%s (%d)\n", groupHeaders[g.Category], len(g.Rows))
		for _, m := range g.Rows {
			mark := "[ ]"
			if done[m.MaterialID] {
				mark = check.Sprint("[x]")
			}
			qty := fmt.Sprintf("%6d %-4s", m.Quantity, m.Unit)
			if m.Quantity < 0 {
				qty = warn.Sprint(qty)
			}
			_, _ = fmt.Fprintf(w, "%s %s %-16s %s\n", mark, qty, m.Code, m.Description)
		}
	}
}
