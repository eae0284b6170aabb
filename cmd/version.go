package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version number")
	versionCmd.Flags().BoolP("json", "j", false, "Print build and provider details as JSON")
}

type buildInfo struct {
	Version  string   `json:"version"`
	Revision string   `json:"revision,omitempty"`
	BuiltAt  string   `json:"built_at,omitempty"`
	BuiltBy  string   `json:"built_by,omitempty"`
	Platform string   `json:"platform"`
	Builtins []string `json:"builtin_providers"`
	Customs  []string `json:"custom_providers"`
}

func currentBuild() buildInfo {
	names := func(ps []*provider.Provider) []string {
		return lo.Map(ps, func(p *provider.Provider, _ int) string { return p.Name })
	}

	return buildInfo{
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Builtins: names(provider.Builtins()),
		Customs:  names(provider.Customs()),
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the vidlink version, build details and available providers",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentBuild()
		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		defer version.Notify()

		row := func(label, value string) {
			if value == "" {
				value = style.Faint("unknown")
			}
			cmd.Printf("  %s %s\n", style.New().Faint(true).Width(10).Render(label), value)
		}

		cmd.Println(style.Fg(color.Accent)("▇▇▇") + " " + style.Bold(constant.App) + " " + info.Version)
		cmd.Println()
		row("revision", info.Revision)
		row("built", info.BuiltAt)
		row("by", info.BuiltBy)
		row("platform", info.Platform)
		row("builtin", strings.Join(lo.Map(info.Builtins, func(s string, _ int) string { return style.Provider(s) }), ", "))
		row("custom", fmt.Sprintf("%d in %s", len(info.Customs), style.Faint("vidlink where --sources")))
	},
}
