package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/where"
)

// clearTarget is something vidlink rebuilds on its own once removed.
// Lua sources and the config file are never cleared here.
type clearTarget struct {
	name  string
	flag  string
	short mo.Option[string]
	path  func() string
}

var clearTargets = []clearTarget{
	{"release check and search caches", "cache", mo.Some("c"), where.Cache},
	{"query history", "queries", mo.Some("q"), where.Queries},
	{"log files", "logs", mo.Some("l"), where.Logs},
	{"temporary files", "temp", mo.None[string](), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, t := range clearTargets {
		help := "Remove the " + t.name
		if short, ok := t.short.Get(); ok {
			clearCmd.Flags().BoolP(t.flag, short, false, help)
		} else {
			clearCmd.Flags().Bool(t.flag, false, help)
		}
	}

	clearCmd.Flags().BoolP("all", "a", false, "Remove everything listed above")
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove caches, query history and logs",
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return all || lo.Must(cmd.Flags().GetBool(t.flag))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, t := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Removing %s...", icon.Get(icon.Progress), t.name))
			err := util.Delete(t.path())
			erase()

			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				handleErr(fmt.Errorf("remove %s: %w", t.name, err))
			}
			fmt.Printf("%s %s removed\n", style.Fg(color.Success)(icon.Get(icon.Success)), util.Capitalize(t.name))
		}
	},
}
