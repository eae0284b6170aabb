// Package cmd is the vidlink command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/version"
	"github.com/vidlink-cli/vidlink/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the vidlink version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant: "+strings.Join(icon.Variants(), ", "))
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return icon.Variants(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("source", "S", nil, "Providers to fall back through, in order. Overrides "+key.DefaultSources)
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", completeProviders))
	lo.Must0(viper.BindPFlag(key.DefaultSources, rootCmd.PersistentFlags().Lookup("source")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Scratch files from an earlier run are never reused.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.App + " [url or query]",
	Short: "Resolve a video URL or search query into a direct download link",
	Long: style.Bold(constant.App) + " resolves a video URL or search query into a direct download link.\n\n" +
		"Providers from " + key.DefaultSources + " are tried in order until one returns a link.\n" +
		style.Faint("Run \"vidlink sources list\" to see them and \"vidlink config info -s pipeline\" for the defaults."),
	Example: `  vidlink https://youtu.be/dQw4w9WgXcQ
  vidlink never gonna give you up
  vidlink -S native,y2mate https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		resolveCmd.Run(resolveCmd, args)
	},
}

// completeProviders offers the providers not yet named in the comma separated list being typed.
func completeProviders(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	chosen := strings.Split(toComplete, ",")
	prefix := strings.Join(chosen[:len(chosen)-1], ",")
	if prefix != "" {
		prefix += ","
	}

	all := append(provider.Builtins(), provider.Customs()...)
	return lo.FilterMap(all, func(p *provider.Provider, _ int) (string, bool) {
		kind := lo.Ternary(p.IsCustom, "custom", "builtin")
		return prefix + p.Name + "\t" + kind, !lo.Contains(chosen, p.Name)
	}), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
