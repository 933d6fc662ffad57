package main

import (
	"fmt"
	"os"

	"rnstd/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var asTOML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, environment and flags merged)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal(asTOML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&asTOML, "toml", false, "print TOML instead of YAML")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.configFile())
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.configFile()
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", target)
			}
			cfg := config.DefaultConfig()
			if a.resourcesDir != "" {
				cfg.ResourcesDir = a.resourcesDir
			}
			if err := cfg.SaveTo(target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote "+target)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	cmd.AddCommand(show, path, initCmd)
	return cmd
}

func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}
