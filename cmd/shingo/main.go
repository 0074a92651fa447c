package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyiyui.ca/hato/shingo/config"
	"nyiyui.ca/hato/shingo/tal/interlock"
	"nyiyui.ca/hato/shingo/tal/layout"
	"nyiyui.ca/hato/shingo/tal/signal"
)

var (
	configPath string
	level      = zap.LevelFlag("log-level", zap.InfoLevel, "set log level")

	rootCmd = &cobra.Command{
		Use:           "shingo",
		Short:         "Railway signalling and track occupancy engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(*level)
			dev, err := cfg.Build()
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(dev)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "shingo.yaml", "path of the configuration file")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(checkCmd, serveCmd, snapshotCmd, routeCmd)
}

func main() {
	defer zap.S().Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shingo: %s\n", err)
		os.Exit(1)
	}
}

// load reads the configuration and builds the interlocking it names.
func load() (*config.Config, *interlock.Interlocking, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	y, err := layout.Load(c.Topology)
	if err != nil {
		return nil, nil, fmt.Errorf("topology: %w", err)
	}
	types, err := signal.LoadTypes(c.SignalTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("signal types: %w", err)
	}
	il, err := interlock.Build(y, types)
	if err != nil {
		return nil, nil, err
	}
	return c, il, nil
}

// parseSection accepts a section comment or index.
func parseSection(y *layout.Topology, arg string) (int, error) {
	for i, s := range y.Sections {
		if s.Comment == arg {
			return i, nil
		}
	}
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(y.Sections) {
		return 0, fmt.Errorf("unknown section %q", arg)
	}
	return i, nil
}

func sectionName(y *layout.Topology, i int) string {
	if i >= 0 && i < len(y.Sections) && y.Sections[i].Comment != "" {
		return y.Sections[i].Comment
	}
	return strconv.Itoa(i)
}
