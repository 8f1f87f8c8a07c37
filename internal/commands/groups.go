package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/model"
	"github.com/recauda-dev/recauda/internal/sical"
)

func newGroupsCommand(opts *options) *cobra.Command {
	var datas bool

	cmd := &cobra.Command{
		Use:   "groups <file>",
		Short: "Print the grouped view with its SICAL lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroups(cmd, opts, args[0], datas)
		},
	}

	cmd.Flags().BoolVar(&datas, "datas", false, "render the cancellation (anulación de derechos) variant")

	return cmd
}

func runGroups(cmd *cobra.Command, opts *options, path string, datas bool) error {
	p, err := opts.run(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	meta := p.meta()

	groups := aggregate.RecognitionGroups(p.doc.Records, p.mapper)
	for _, g := range groups {
		line := sical.Render(meta, g)
		if datas {
			line = sical.RenderDatas(meta, g)
		}
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "  ejercicio %d: %d registros, cargo %s, datas %s, liquido %s, pendiente %s\n",
			g.Ejercicio, g.Registros,
			model.FormatAmount(g.Cargo), model.FormatAmount(g.Datas),
			model.FormatAmount(g.Liquido()), model.FormatAmount(g.Pendiente))
		for _, c := range g.Concepts {
			fmt.Fprintf(out, "  - %s %s: %d registros, cargo %s\n",
				c.Code, c.Name, c.Registros, model.FormatAmount(c.Cargo))
		}
		fmt.Fprintln(out)
	}
	return nil
}
