package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"captionflow/cmd/v2s/cmd/shared"
	"captionflow/internal/app/api/provider"
)

var (
	checkHealth bool
	configPath  string
	force       bool
)

func init() {
	Cmd.Flags().BoolVar(&checkHealth, "health", false, "probe every provider that supports health checks")
	initCmd.Flags().StringVarP(&configPath, "path", "o", "", "where to write the file, defaults to PROVIDERS_CONFIG")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	Cmd.AddCommand(initCmd)
}

// Cmd represents the providers command
var Cmd = &cobra.Command{
	Use:   "providers",
	Short: "List the configured ASR providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := shared.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		var health map[string]error
		if checkHealth {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			health = a.Registry.HealthCheckAll(ctx)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tMODE\tINPUT\tKEY\tHEALTH")
		for _, info := range a.Registry.List() {
			name := info.Name
			if name == a.Registry.DefaultName() {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				name, info.Type, info.Mode, inputs(info),
				keyStatus(info, a.Registry.Credential(info.Name)),
				healthStatus(health, info.Name))
		}
		return w.Flush()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a providers.yaml template",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := lo.CoalesceOrEmpty(configPath, os.Getenv("PROVIDERS_CONFIG"), provider.GetDefaultConfigPath())
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := provider.NewConfigManager(path).SaveConfig(provider.DefaultTemplate()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "provider configuration written to %s\n", path)
		return nil
	},
}

func inputs(info provider.ProviderInfo) string {
	kinds := lo.Compact([]string{
		lo.Ternary(info.AcceptsUpload, "file", ""),
		lo.Ternary(info.AcceptsURL, "url", ""),
	})
	if len(kinds) == 0 {
		return "-"
	}
	return strings.Join(kinds, ",")
}

func keyStatus(info provider.ProviderInfo, credential string) string {
	switch {
	case !info.RequiresAPIKey:
		return "n/a"
	case credential != "":
		return "configured"
	default:
		return "per request"
	}
}

func healthStatus(health map[string]error, name string) string {
	if health == nil {
		return "-"
	}
	if err := health[name]; err != nil {
		return "unhealthy: " + err.Error()
	}
	return "ok"
}
