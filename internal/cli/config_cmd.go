package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dyike/StockPulse/config"
)

var secretKeys = map[string]bool{
	"llm_api_key":           true,
	"longport_app_key":      true,
	"longport_app_secret":   true,
	"longport_access_token": true,
	"finnhub_api_key":       true,
}

// newConfigCmd creates the config command
func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show or change the StockPulse configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), a.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.manager.Path())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one key in the configuration file",
		Long: `Change one key in the configuration file. A running "stockpulse serve" picks it up.
Example: stockpulse config set translate_provider none`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.manager.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	})

	return configCmd
}

func showConfig(out io.Writer, cfg config.Config) error {
	fields, err := cfg.Fields()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out, titleStyle.Render("StockPulse configuration"))
	for _, k := range keys {
		value := string(fields[k])
		if secretKeys[k] && value != `""` {
			value = "****"
		}
		fmt.Fprintf(out, "%-24s %s\n", k, value)
	}
	return nil
}
