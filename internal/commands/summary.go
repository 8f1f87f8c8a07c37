package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/recauda-dev/recauda/internal/model"
)

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the per-year totals of a settlement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts, args[0])
		},
	}
}

func runSummary(cmd *cobra.Command, opts *options, path string) error {
	p, err := opts.run(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "EJERCICIO\tREGISTROS\tCARGO\tDATAS\tVOLUNTARIA\tEJECUTIVA\tLIQUIDO\tPENDIENTE\t")

	registros := 0
	for _, y := range p.result.Years {
		registros += y.Registros
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			y.Ejercicio, y.Registros,
			model.FormatAmount(y.Cargo), model.FormatAmount(y.Datas),
			model.FormatAmount(y.Voluntaria), model.FormatAmount(y.Ejecutiva),
			model.FormatAmount(y.Liquido()), model.FormatAmount(y.Pendiente))
	}

	t := p.result.Totals()
	fmt.Fprintf(w, "TOTAL\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		registros,
		model.FormatAmount(t.Cargo), model.FormatAmount(t.Datas),
		model.FormatAmount(t.Voluntaria), model.FormatAmount(t.Ejecutiva),
		model.FormatAmount(t.Liquido()), model.FormatAmount(t.Pendiente))

	return w.Flush()
}
