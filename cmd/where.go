package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/vidlink-cli/vidlink/config"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/where"
)

type whereTarget struct {
	name   string
	flag   string
	short  mo.Option[string]
	path   func() string
	detail func() string
	hidden bool
}

func sourcesDetail() string {
	scripts, err := provider.CustomProviders()
	if err != nil {
		return ""
	}
	return util.Quantify(len(scripts), "Lua source", "Lua sources")
}

var whereTargets = []whereTarget{
	{name: "Config file", flag: "config", short: mo.Some("c"), path: config.Path},
	{name: "Sources", flag: "sources", short: mo.Some("s"), path: where.Sources, detail: sourcesDetail},
	{name: "Logs", flag: "logs", short: mo.Some("l"), path: where.Logs},
	{name: "Cache", flag: "cache", short: mo.None[string](), path: where.Cache},
	{name: "Query history", flag: "queries", short: mo.None[string](), path: where.Queries, hidden: true},
	{name: "Temp", flag: "temp", short: mo.None[string](), path: where.Temp, hidden: true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range whereTargets {
		help := "Print only the " + t.name + " path"
		if short, ok := t.short.Get(); ok {
			whereCmd.Flags().BoolP(t.flag, short, false, help)
		} else {
			whereCmd.Flags().Bool(t.flag, false, help)
		}

		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(whereTargets, func(t whereTarget, _ int) string { return t.flag })...)
	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where the config file, Lua sources and logs live",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range whereTargets {
			if lo.Must(cmd.Flags().GetBool(t.flag)) {
				cmd.Println(t.path())
				return
			}
		}

		visible := lo.Reject(whereTargets, func(t whereTarget, _ int) bool { return t.hidden })
		for i, t := range visible {
			header := style.Header(t.name) + " " + style.Faint("--"+t.flag)
			if t.detail != nil {
				if d := t.detail(); d != "" {
					header += " " + style.Faint("("+d+")")
				}
			}

			cmd.Println(header)
			cmd.Println(t.path())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
