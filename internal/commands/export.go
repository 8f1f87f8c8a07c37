package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/export"
	"github.com/recauda-dev/recauda/internal/ingest"
	"github.com/recauda-dev/recauda/internal/reconcile"
)

func newExportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write artifacts for a settlement file",
	}

	cmd.AddCommand(newExportExcelCommand(opts))
	cmd.AddCommand(newExportHTMLCommand(opts))
	cmd.AddCommand(newExportDatasCommand(opts))
	cmd.AddCommand(newExportReportCommand(opts))
	cmd.AddCommand(newExportCSVCommand(opts))
	cmd.AddCommand(newExportAllCommand(opts))

	return cmd
}

func newExportExcelCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "excel <file>",
		Short: "Write the workbook (registros and per-year summary)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.run(args[0])
			if err != nil {
				return err
			}
			path := outputPath(args[0], out, ".xlsx")
			if err := writeFile(path, func(w io.Writer) error {
				return export.WriteExcel(w, p.doc, p.result)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default input name with .xlsx)")

	return cmd
}

func newExportHTMLCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "html <file>",
		Short: "Write the print-ready grouped report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.run(args[0])
			if err != nil {
				return err
			}
			path := outputPath(args[0], out, "_grupos.html")
			params := htmlParams(p, time.Now())
			if err := writeFile(path, func(w io.Writer) error {
				return export.GroupedHTML(w, params)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default input name with _grupos.html)")

	return cmd
}

func newExportDatasCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "datas <file>",
		Short: "Write the cancellation (anulación de derechos) report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.run(args[0])
			if err != nil {
				return err
			}
			path := outputPath(args[0], out, "_datas.html")
			params := htmlParams(p, time.Now())
			if err := writeFile(path, func(w io.Writer) error {
				return export.DatasHTML(w, params)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default input name with _datas.html)")

	return cmd
}

func newExportReportCommand(opts *options) *cobra.Command {
	var out string
	var format string

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write the validation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.run(args[0])
			if err != nil {
				return err
			}

			discs := reconcile.Check(p.doc, p.result)
			md := export.ValidationReport(p.doc, p.result, discs, time.Now())

			var path string
			switch format {
			case "md":
				path = outputPath(args[0], out, "_informe.md")
				if err := writeFile(path, func(w io.Writer) error {
					_, err := io.WriteString(w, md)
					return err
				}); err != nil {
					return err
				}
			case "html":
				page, err := export.ReportHTML(md)
				if err != nil {
					return err
				}
				path = outputPath(args[0], out, "_informe.html")
				if err := writeFile(path, func(w io.Writer) error {
					_, err := w.Write(page)
					return err
				}); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want md or html)", format)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default input name with _informe.md/.html)")
	cmd.Flags().StringVar(&format, "format", "md", "report format: md or html")

	return cmd
}

func newExportCSVCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Rewrite any supported input as the canonical CSV layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.run(args[0])
			if err != nil {
				return err
			}
			path := outputPath(args[0], out, "_canonico.csv")
			if err := writeFile(path, func(w io.Writer) error {
				return ingest.WriteRecords(w, p.doc.EntidadCodigo, p.doc.Records)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default input name with _canonico.csv)")

	return cmd
}

func newExportAllCommand(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "all <file>",
		Short: "Write every artifact for a settlement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportAll(cmd, opts, args[0], dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory (default next to the input)")

	return cmd
}

func runExportAll(cmd *cobra.Command, opts *options, path, dir string) error {
	p, err := opts.run(path)
	if err != nil {
		return err
	}

	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	at := time.Now()
	params := htmlParams(p, at)
	discs := reconcile.Check(p.doc, p.result)
	md := export.ValidationReport(p.doc, p.result, discs, at)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artifacts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{base + ".xlsx", func(w io.Writer) error { return export.WriteExcel(w, p.doc, p.result) }},
		{base + "_grupos.html", func(w io.Writer) error { return export.GroupedHTML(w, params) }},
		{base + "_datas.html", func(w io.Writer) error { return export.DatasHTML(w, params) }},
		{base + "_informe.md", func(w io.Writer) error { _, err := io.WriteString(w, md); return err }},
		{base + "_canonico.csv", func(w io.Writer) error { return ingest.WriteRecords(w, p.doc.EntidadCodigo, p.doc.Records) }},
	}

	// Each artifact goes to its own file; the first failure cancels the
	// batch result.
	var g errgroup.Group
	for _, a := range artifacts {
		g.Go(func() error {
			return writeFile(filepath.Join(dir, a.name), a.write)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, a := range artifacts {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(dir, a.name))
	}
	return nil
}

func htmlParams(p *pipeline, at time.Time) export.Params {
	return export.Params{
		Doc:         p.doc,
		Groups:      aggregate.RecognitionGroups(p.doc.Records, p.mapper),
		Meta:        p.meta(),
		GeneratedAt: at,
	}
}

// outputPath resolves an artifact path: the -o flag when set, else the
// input path with its extension replaced by suffix.
func outputPath(input, flag, suffix string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
