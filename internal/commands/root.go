// Package commands wires the CLI: extraction, aggregation, validation
// and the export adapters behind cobra verbs.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/recauda-dev/recauda/internal/aggregate"
	"github.com/recauda-dev/recauda/internal/buildinfo"
	"github.com/recauda-dev/recauda/internal/grouping"
	"github.com/recauda-dev/recauda/internal/ingest"
	"github.com/recauda-dev/recauda/internal/model"
	"github.com/recauda-dev/recauda/internal/sical"
)

// configEnv names the grouping config fallback variable, settable from
// a .env file.
const configEnv = "RECAUDA_CONFIG"

// options carries the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	entidad     string
	liquidacion string
	mandamiento string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "recauda",
		Short:   "Cuenta de recaudación processing for municipal accounting",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env may define RECAUDA_CONFIG; a missing file is fine.
			_ = godotenv.Load()
			if opts.configPath == "" {
				opts.configPath = os.Getenv(configEnv)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "grouping config path (default $"+configEnv+" or built-in)")
	flags.StringVar(&opts.entidad, "entidad", "", "entity display name for reports")
	flags.StringVar(&opts.liquidacion, "liquidacion", "", "settlement number for SICAL lines")
	flags.StringVar(&opts.mandamiento, "mandamiento", "", "payment order number for SICAL lines")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newSummaryCommand(opts))
	rootCmd.AddCommand(newGroupsCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}

// loadConfig resolves the grouping configuration: the --config flag,
// then $RECAUDA_CONFIG, then the built-in defaults.
func (o *options) loadConfig() (*grouping.Config, error) {
	if o.configPath == "" {
		return grouping.DefaultConfig(), nil
	}
	cfg, err := grouping.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// pipeline is one processed settlement file: the document with CLI
// metadata applied, its extraction, and the aggregated views.
type pipeline struct {
	doc    *model.Document
	x      *ingest.Extraction
	mapper *grouping.Mapper
	result *aggregate.Result
}

func (o *options) run(path string) (*pipeline, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	m := grouping.NewMapper(cfg)

	x, err := ingest.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	doc := x.Document()
	doc.EntidadNombre = o.entidad
	doc.NumeroLiquidacion = o.liquidacion
	doc.MandamientoPago = o.mandamiento

	return &pipeline{
		doc:    doc,
		x:      x,
		mapper: m,
		result: aggregate.Aggregate(doc.Records, m),
	}, nil
}

func (p *pipeline) meta() sical.Meta {
	return sical.Meta{
		Ejercicio:         p.doc.Ejercicio,
		NumeroLiquidacion: p.doc.NumeroLiquidacion,
		MandamientoPago:   p.doc.MandamientoPago,
		Delimiter:         p.mapper.Layout().Delimiter,
	}
}
