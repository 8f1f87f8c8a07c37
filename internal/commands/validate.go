package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recauda-dev/recauda/internal/ingest"
	"github.com/recauda-dev/recauda/internal/reconcile"
)

func newValidateCommand(opts *options) *cobra.Command {
	var strict bool
	var skippedPath string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check the aggregated totals against the declared ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0], strict, skippedPath)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero on any discrepancy")
	cmd.Flags().StringVar(&skippedPath, "skipped", "", "append skipped rows to this CSV report")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *options, path string, strict bool, skippedPath string) error {
	p, err := opts.run(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	for _, o := range p.mapper.Overlaps() {
		fmt.Fprintf(out, "config: %s\n", o)
	}
	for _, s := range p.x.Skipped {
		fmt.Fprintf(out, "skipped %s\n", s)
	}
	for _, u := range p.result.Unmapped {
		fmt.Fprintf(out, "warning: %s\n", u)
	}

	discs := reconcile.Check(p.doc, p.result)
	for _, d := range discs {
		fmt.Fprintf(out, "discrepancy %s\n", d.Error())
	}

	if skippedPath != "" && len(p.x.Skipped) > 0 {
		if err := ingest.AppendSkipped(skippedPath, filepath.Base(path), p.x.Skipped); err != nil {
			return fmt.Errorf("writing skipped report: %w", err)
		}
	}

	fmt.Fprintf(out, "%s: %d registros in %d ejercicios, %d skipped, %d warnings, %d discrepancies\n",
		filepath.Base(path), len(p.doc.Records), len(p.result.Years),
		len(p.x.Skipped), len(p.result.Unmapped), len(discs))

	if strict && len(discs) > 0 {
		return fmt.Errorf("%d discrepancies found", len(discs))
	}
	return nil
}
