package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"jobhunt-harvester/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, check and print the config file",
}

var configValidateCmd = &cobra.Command{
	Use:         "validate",
	Short:       "Check the config and list every problem",
	Annotations: map[string]string{skipConfigLoad: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Read(cfgPath)
		if err != nil {
			return err
		}
		_, v := config.NormalizeAndValidate(c)
		for _, w := range v.Warnings {
			fmt.Fprintln(os.Stdout, "warning:", w)
		}
		for _, e := range v.Errors {
			fmt.Fprintln(os.Stdout, "error:  ", e)
		}
		if !v.OK() {
			return eris.Errorf("%s: %d error(s)", cfgPath, len(v.Errors))
		}
		fmt.Fprintf(os.Stdout, "%s: ok\n", cfgPath)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default config if none exists",
	Annotations: map[string]string{skipConfigLoad: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		created, err := config.EnsureUserConfig(cfgPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(os.Stdout, "wrote %s\n", cfgPath)
		} else {
			fmt.Fprintf(os.Stdout, "%s already exists\n", cfgPath)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(os.Stdout, cfg.String())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd, configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
