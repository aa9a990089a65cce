package cmd

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/recast/recast"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile   string
	propsFile string
	timeout   time.Duration
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "recast [paths...]",
	Short:            "recast - rewrites decompiled syntax trees into idiomatic code",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: recast [path1 path2 ...] => behaves like the rewrite subcommand
		rewriteCmd.SetContext(cmd.Context())
		return rewriteCmd.RunE(rewriteCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (default "+recast.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&propsFile, "properties", "", "Eliminated-property table, overrides the configuration")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Abort the run after this duration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every warning and debug message")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(statsCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.DisableStacktrace = true
	return config.Build()
}

// loadConfig resolves the configuration the way every subcommand does: an
// explicit --config must exist, the default file is optional.
func loadConfig() (recast.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(recast.DefaultConfigFile); err == nil {
			path = recast.DefaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return recast.Config{}, err
		}
	}
	config, err := recast.LoadConfig(path)
	if err != nil {
		return config, err
	}
	if propsFile != "" {
		config.Properties = propsFile
	}
	return config, nil
}

func newProcessor() (*recast.Processor, recast.Config, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, config, err
	}
	logger.Debug("configuration loaded", zap.String("name", config.Name), zap.String("properties", config.Properties))
	p, err := recast.New(logger, config)
	return p, config, err
}
