package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/internal/config"
	"github.com/yumyai/mutlookup/logger"
	"github.com/yumyai/mutlookup/pkg/model"
)

const VERSION = "0.1.0"

// app carries what every subcommand needs once flags and env are merged.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func (a *app) remap() model.RemapRule {
	return model.RemapRule{Protein: model.ProteinRBD, Threshold: a.cfg.Remap.RBDOffset}
}

func NewRootCmd() *cobra.Command {
	v, hasDotenv := config.New()
	a := &app{v: v}

	root := &cobra.Command{
		Use:   "mutlookup",
		Short: "SARS-CoV-2 mutation prevalence lookup",
		Long: `mutlookup - prevalence of SARS-CoV-2 protein mutations over time.

Strain tables from GISAID and GenBank are turned into date matrices once
(build), then queried per mutation set (query, or the web page from serve).

Examples:
  mutlookup build                          # Build every source/protein matrix
  mutlookup query --protein mpro P132H     # Weekly prevalence of P132H
  mutlookup query --protein rbd N501Y,E484K --binning monthly
  mutlookup serve --addr :8080             # Start the dashboard`,
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			if err := logger.InitLogger(logger.ParseLevel(cfg.Log.Level)); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			if !hasDotenv {
				logger.Debug("No .env found, using local environment")
			}
			logger.Debug("Configuration loaded",
				zap.String("data", cfg.Data),
				zap.String("log_level", cfg.Log.Level),
				zap.Int("rbd_offset", cfg.Remap.RBDOffset),
			)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("data", "", "Data folder holding <source>/<protein>/ tables (env MUTLOOKUP_DATA)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env MUTLOOKUP_LOG_LEVEL)")
	_ = v.BindPFlag("data", flags.Lookup("data"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

func Execute() error {
	defer logger.Sync()
	return NewRootCmd().Execute()
}
