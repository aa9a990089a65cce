package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/recast/recast"
)

var force bool

// initCmd: recast init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = recast.DefaultConfigFile
		}
		if err := initConfigurationFile(path, force); err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return recast.WriteConfig(configurationPath, recast.DefaultConfig())
}
