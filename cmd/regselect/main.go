package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/regselect/config"
	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/pipeline"
	"github.com/YuminosukeSato/regselect/pkg/log"
	"github.com/YuminosukeSato/regselect/report"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

type flags struct {
	config string
	data   string
	target string
	json   bool
	plot   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:          "regselect",
		Short:        "compare linear and gradient-boosted regressors on a CSV dataset",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "YAML configuration file")

	root.AddCommand(runCmd(&f), cvCmd(&f), configCmd(&f))
	return root
}

func dataFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.data, "data", "", "CSV file with a header row")
	cmd.Flags().StringVar(&f.target, "target", "", "name of the target column")
	cmd.Flags().StringVar(&f.plot, "plot", "", "write the CV learning curve to this image file")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("target")
}

// setup loads the configuration, installs the logger and reads the dataset.
func setup(f *flags) (config.Config, pipeline.Options, *dataset.Dataset, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return config.Config{}, pipeline.Options{}, nil, err
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return config.Config{}, pipeline.Options{}, nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return config.Config{}, pipeline.Options{}, nil, err
	}
	ds, err := dataset.LoadCSV(f.data, f.target)
	if err != nil {
		return config.Config{}, pipeline.Options{}, nil, err
	}
	return cfg, opts, ds, nil
}

func runCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "split, fit both model families and report held-out error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, ds, err := setup(f)
			if err != nil {
				return err
			}
			rep, runErr := pipeline.Run(cmd.Context(), ds, opts)
			if rep == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if f.json {
				err = report.WriteJSON(out, rep)
			} else {
				err = report.WriteTable(out, rep)
			}
			if err != nil {
				return err
			}
			if f.plot != "" && rep.Boosted != nil {
				if err := report.SaveCVPlot(rep.Boosted.CV, f.plot); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	dataFlags(cmd, f)
	cmd.Flags().BoolVar(&f.json, "json", false, "write the report as JSON")
	return cmd
}

func cvCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "cross-validate the boosted model on the training split and print the learning curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, ds, err := setup(f)
			if err != nil {
				return err
			}
			_, train, _, err := pipeline.Prepare(ds, opts)
			if err != nil {
				return err
			}
			cv, err := gbm.Tune(cmd.Context(), train, gbm.TuneParams{
				NFolds:    opts.CVFolds,
				MaxRounds: opts.MaxRounds,
				Patience:  opts.Patience,
				Training:  opts.Training,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.WriteCV(out, cv)
			fmt.Fprintf(out, "selected round %d of %d (test RMSE %.6g, %d folds, seed %d)\n",
				cv.BestRound, len(cv.Rounds), cv.BestScore, cv.NFolds, cfg.Seed)
			if f.plot != "" {
				return report.SaveCVPlot(cv, f.plot)
			}
			return nil
		},
	}
	dataFlags(cmd, f)
	return cmd
}

func configCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration after file and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.config)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}
