package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/batch"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/report"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/spreadsheet"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type globals struct {
	configFile string
	verbose    bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:          "ductflow",
		Short:        "Compressible gas pipeline calculations",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := "warn"
			if g.verbose {
				level = "debug"
			}
			config.SetupLogging(level, "text")
			log.SetOutput(os.Stderr)
			cfg, err := config.LoadFile(g.configFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", g.configFile, err)
			}
			g.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&g.configFile, "config", config.DefaultFile, "INI file with [engine] tunables")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(dropCmd(g), fannoCmd(g), rayleighCmd(g), batchCmd(g))
	return cmd
}

// readCase decodes a YAML case file; "-" reads stdin.
func readCase(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dropCmd(g *globals) *cobra.Command {
	var reportPath string
	c := &cobra.Command{
		Use:   "drop <case.yaml>",
		Short: "Steady-state pressure drop of a gas pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in gas.DropInput
			if err := readCase(cmd, args[0], &in); err != nil {
				return err
			}
			res, err := gas.CalculateDrop(in, g.cfg.Engine)
			if err != nil {
				return err
			}
			if reportPath != "" {
				err := writeFile(reportPath, func(w io.Writer) error {
					return report.RenderDrop(w, report.Meta{Title: "Gas Pressure Drop Report", Project: args[0]}, in, res)
				})
				if err != nil {
					return err
				}
			}
			return printJSON(cmd, res)
		},
	}
	c.Flags().StringVar(&reportPath, "report", "", "also write a PDF report")
	return c
}

type marchOutputs struct {
	report, xlsx string
}

func (o *marchOutputs) bind(c *cobra.Command) {
	c.Flags().StringVar(&o.report, "report", "", "also write a PDF report")
	c.Flags().StringVar(&o.xlsx, "xlsx", "", "also write the states as an XLSX workbook")
}

func (o *marchOutputs) write(name string, res gas.DuctFlowResult) error {
	if o.report != "" {
		err := writeFile(o.report, func(w io.Writer) error {
			return report.RenderMarch(w, report.Meta{Project: name}, res)
		})
		if err != nil {
			return err
		}
	}
	if o.xlsx != "" {
		return writeFile(o.xlsx, func(w io.Writer) error { return spreadsheet.WriteMarch(w, res) })
	}
	return nil
}

func fannoCmd(g *globals) *cobra.Command {
	var out marchOutputs
	c := &cobra.Command{
		Use:   "fanno <case.yaml>",
		Short: "March adiabatic frictional flow along a duct",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in gas.FannoInput
			if err := readCase(cmd, args[0], &in); err != nil {
				return err
			}
			res, err := gas.MarchFanno(in, g.cfg.Engine)
			if err != nil {
				return err
			}
			if err := out.write(args[0], res); err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	out.bind(c)
	return c
}

func rayleighCmd(g *globals) *cobra.Command {
	var out marchOutputs
	c := &cobra.Command{
		Use:   "rayleigh <case.yaml>",
		Short: "March frictionless flow with heat transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in gas.RayleighInput
			if err := readCase(cmd, args[0], &in); err != nil {
				return err
			}
			res, err := gas.MarchRayleigh(in, g.cfg.Engine)
			if err != nil {
				return err
			}
			if err := out.write(args[0], res); err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	out.bind(c)
	return c
}

type batchFile struct {
	Items []gas.DropInput `yaml:"items"`
}

func batchCmd(g *globals) *cobra.Command {
	var workers int
	c := &cobra.Command{
		Use:   "batch <cases.yaml>",
		Short: "Solve many pressure-drop cases in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file batchFile
			if err := readCase(cmd, args[0], &file); err != nil {
				return err
			}
			if workers <= 0 {
				workers = g.cfg.BatchWorkers
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rn := &batch.Runner{Workers: workers, Options: g.cfg.Engine}
			res, err := rn.Run(ctx, batch.DropBatchInput{Items: file.Items})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	c.Flags().IntVarP(&workers, "workers", "w", 0, "worker count (default from config)")
	return c
}
