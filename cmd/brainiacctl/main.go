// Package main provides brainiacctl, the operator CLI for a Brainiac data directory.
package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/brainiac5/brainiac-server/internal/config"
	"github.com/brainiac5/brainiac-server/internal/di"
	"github.com/brainiac5/brainiac-server/internal/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type globalOptions struct {
	envFile      string
	metadataPath string
	databasePath string
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "brainiacctl",
		Short:         "Administer a Brainiac server data directory",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	flags.StringVar(&opts.metadataPath, "metadata-path", "", "Base path for data storage")
	flags.StringVar(&opts.databasePath, "database-path", "", "Path to the SQLite database")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(enrollCmd(opts))
	rootCmd.AddCommand(checkOrphansCmd(opts))
	rootCmd.AddCommand(reindexCmd(opts))

	return rootCmd
}

// configArgs translates CLI flags into the server's flag syntax so the CLI
// resolves paths exactly like the server does.
func (o *globalOptions) configArgs() []string {
	args := []string{"-env-file", o.envFile}
	if o.metadataPath != "" {
		args = append(args, "-metadata-path", o.metadataPath)
	}
	if o.databasePath != "" {
		args = append(args, "-database-path", o.databasePath)
	}
	return args
}

// container builds the server container with the CLI's config and a stderr
// logger. Nothing is started until a command invokes it.
func (o *globalOptions) container() (*do.RootScope, error) {
	cfg, err := config.Load(o.configArgs())
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel("warn")
	if o.verbose {
		level = logger.ParseLevel("debug")
	}

	injector := di.NewContainer()
	do.OverrideValue(injector, cfg)
	do.OverrideValue(injector, logger.New(logger.Config{
		Level:       level,
		Environment: cfg.App.Environment,
		Writer:      os.Stderr,
	}))
	return injector, nil
}

// withContainer runs fn against a fresh container and shuts it down after.
func (o *globalOptions) withContainer(fn func(do.Injector) error) error {
	injector, err := o.container()
	if err != nil {
		return err
	}
	runErr := fn(injector)
	if report := injector.Shutdown(); report != nil && !report.Succeed && runErr == nil {
		return report
	}
	return runErr
}
