package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"partnersearch/internal/dnb"
	hierarchyservice "partnersearch/internal/hierarchy/service"
	"partnersearch/internal/platform/config"
	"partnersearch/internal/platform/logger"
)

// app carries what every subcommand needs.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *hierarchyservice.Service
	out     io.Writer
}

type serviceFactory func(cfg config.Config, logger *slog.Logger) *hierarchyservice.Service

func defaultServiceFactory(cfg config.Config, logger *slog.Logger) *hierarchyservice.Service {
	client := dnb.New(cfg.DNB, logger, nil)
	return hierarchyservice.New(client,
		hierarchyservice.WithLogger(logger),
		hierarchyservice.WithHierarchyCache(nil, 0),
	)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultServiceFactory)
}

func newRootCmdWith(factory serviceFactory) *cobra.Command {
	a := &app{}
	var verbose bool

	cmd := &cobra.Command{
		Use:          "hierarchyctl",
		Short:        "Flatten, browse and export D&B corporate hierarchies",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			a.cfg = cfg
			a.logger = logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")
			a.service = factory(cfg, a.logger)
			a.out = cmd.OutOrStdout()
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level to stderr")

	cmd.AddCommand(newExportCmd(a), newFlattenCmd(a), newTreeCmd(a))
	return cmd
}

func openOutput(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
