package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/config"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/where"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")

	envCmd.SetOut(os.Stdout)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables vidlink reads",
	Long: `List the environment variables vidlink reads, grouped like "config info".
Each one overrides the config file for the matching key.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
		)

		type group struct {
			title string
			envs  []string
		}

		groups := []group{{title: "Paths", envs: []string{where.EnvConfigPath}}}
		for _, s := range config.Sections() {
			groups = append(groups, group{
				title: config.SectionTitle(s),
				envs:  lo.Map(config.InSection(s), func(f *config.Field, _ int) string { return f.Env() }),
			})
		}

		printed := false
		for _, g := range groups {
			envs := lo.Filter(g.envs, func(env string, _ int) bool {
				_, present := os.LookupEnv(env)
				return !(setOnly && !present) && !(unsetOnly && present)
			})
			if len(envs) == 0 {
				continue
			}

			if printed {
				cmd.Println()
			}
			printed = true

			cmd.Println(style.Header(g.title))
			for _, env := range envs {
				cmd.Print(style.Bold(env), "=")
				if value, present := os.LookupEnv(env); present {
					cmd.Println(style.Fg(color.Success)(value))
				} else {
					cmd.Println(style.Fg(color.Failure)("unset"))
				}
			}
		}
	},
}
