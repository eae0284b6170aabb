package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/provider/custom"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/where"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List, scaffold and update the providers the pipeline falls back through",
}

func completeCustomSources(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(provider.Customs(), func(p *provider.Provider, _ int) string {
		return p.Name
	}), cobra.ShellCompDirectiveNoFileComp
}

// describeProvider notes what a provider adds on top of analyze and convert.
// Custom scripts are loaded so broken ones show up here rather than mid-pipeline.
func describeProvider(p *provider.Provider) string {
	src, err := p.CreateSource()
	if err != nil {
		return style.Failure("does not load: " + err.Error())
	}
	defer provider.Release([]source.Source{src})

	notes := []string{lo.Ternary(p.IsCustom, "lua", "builtin")}
	if d, ok := src.(source.Discoverer); ok && d.Discovery() != nil {
		notes = append(notes, "own search")
	}
	return style.Faint(strings.Join(notes, ", "))
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Print names only")
	sourcesListCmd.Flags().BoolP("custom", "c", false, "Only list Lua sources")
	sourcesListCmd.Flags().BoolP("builtin", "b", false, "Only list builtin sources")
	sourcesListCmd.Flags().BoolP("enabled", "e", false, "Only list sources.default, in fallback order")

	sourcesListCmd.MarkFlagsMutuallyExclusive("custom", "builtin", "enabled")
	sourcesListCmd.SetOut(os.Stdout)
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and their position in the fallback order",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			raw     = lo.Must(cmd.Flags().GetBool("raw"))
			enabled = viper.GetStringSlice(key.DefaultSources)
		)

		section := func(title string, providers []*provider.Provider) {
			if raw {
				for _, p := range providers {
					cmd.Println(p.Name)
				}
				return
			}

			cmd.Println(style.Header(title))
			if len(providers) == 0 {
				cmd.Println(style.Faint("  none, see \"vidlink sources gen\""))
			}
			for _, p := range providers {
				position := "  "
				if i := lo.IndexOf(enabled, p.Name); i >= 0 {
					position = fmt.Sprintf("%d.", i+1)
				}
				cmd.Printf("%s %s %s\n", style.Faint(position), style.Provider(p.Name), describeProvider(p))
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("enabled")):
			ordered, err := provider.Ordered(enabled)
			handleErr(err)
			section("Fallback order", ordered)
		case lo.Must(cmd.Flags().GetBool("builtin")):
			section("Builtin", provider.Builtins())
		case lo.Must(cmd.Flags().GetBool("custom")):
			section("Custom", provider.Customs())
		default:
			section("Builtin", provider.Builtins())
			if !raw {
				cmd.Println()
			}
			section("Custom", provider.Customs())
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)
}

var sourcesRemoveCmd = &cobra.Command{
	Use:               "remove <name>...",
	Short:             "Delete custom Lua sources",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeCustomSources,
	Run: func(cmd *cobra.Command, args []string) {
		enabled := viper.GetStringSlice(key.DefaultSources)

		for _, name := range args {
			p, ok := provider.Get(name)
			switch {
			case !ok:
				handleErr(fmt.Errorf("no source named %s", name))
			case !p.IsCustom:
				handleErr(fmt.Errorf("%s is builtin, drop it from %s instead", name, key.DefaultSources))
			}

			handleErr(filesystem.API().Remove(filepath.Join(where.Sources(), name+provider.CustomProviderExtension)))
			fmt.Printf("%s removed %s\n", style.Fg(color.Success)(icon.Get(icon.Success)), style.Provider(name))

			if lo.Contains(enabled, name) {
				fmt.Printf("  %s\n", style.Faint(fmt.Sprintf("%s still lists it, the pipeline will fail until it is removed there", key.DefaultSources)))
			}
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesUpdateCmd)

	sourcesUpdateCmd.Flags().String("url", "", "Base URL the scripts are fetched from")
	lo.Must0(viper.BindPFlag(key.SourcesUpdateURL, sourcesUpdateCmd.Flags().Lookup("url")))
}

var sourcesUpdateCmd = &cobra.Command{
	Use:   "update [name...]",
	Short: "Fetch custom Lua providers from the configured update URL",
	Long: `Download each named script (every installed custom provider by default) from <update url>/<name>.lua.
A script is replaced only when it compiles and its content changed.`,
	ValidArgsFunction: completeCustomSources,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := interruptible()
		defer cancel()

		erase := util.PrintErasable(fmt.Sprintf("%s Updating sources...", icon.Get(icon.Progress)))
		updated, err := provider.Update(ctx, viper.GetString(key.SourcesUpdateURL), args)
		erase()

		for _, name := range updated {
			fmt.Printf("%s updated %s\n", icon.Get(icon.Success), style.Provider(name))
		}
		if err == nil {
			fmt.Printf("%s %s changed\n", icon.Get(icon.Success), util.Quantify(len(updated), "source", "sources"))
		}
		handleErr(err)
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)

	sourcesGenCmd.Flags().StringP("url", "u", "", "Base URL of the conversion service")
	sourcesGenCmd.Flags().BoolP("force", "f", false, "Overwrite an existing script")
	lo.Must0(sourcesGenCmd.MarkFlagRequired("url"))
	sourcesGenCmd.SetOut(os.Stdout)
}

var sourcesGenCmd = &cobra.Command{
	Use:   "gen <name>",
	Short: "Scaffold a Lua provider with Analyze, Convert and Defaults stubs",
	Long:  `Write a Lua provider script to the sources directory. The script defines Analyze, Convert and Defaults, with a commented Search stub.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		author := "anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		name := util.SanitizeFilename(args[0])
		if name == "" {
			handleErr(errors.New("name has no usable characters"))
		}
		if p, ok := provider.Get(name); ok && !p.IsCustom {
			handleErr(fmt.Errorf("%s is a builtin provider name", name))
		}

		target := filepath.Join(where.Sources(), name+provider.CustomProviderExtension)
		if lo.Must(filesystem.API().Exists(target)) && !lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(fmt.Errorf("%s exists, use --force to overwrite it", target))
		}

		code, err := custom.Scaffold(name, lo.Must(cmd.Flags().GetString("url")), author)
		handleErr(err)
		handleErr(filesystem.API().WriteFile(target, code, 0o644))

		cmd.Println(target)
	},
}
