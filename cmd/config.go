package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/config"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/style"
)

func completionConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return lo.Map(config.Fields(), func(f *config.Field, _ int) string {
		return f.Key + "\t" + config.SectionTitle(f.Section())
	}), cobra.ShellCompDirectiveNoFileComp
}

func completionConfigSections(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(config.Sections(), func(s string, _ int) string {
		return s + "\t" + config.SectionTitle(s)
	}), cobra.ShellCompDirectiveNoFileComp
}

func mustField(k string) *config.Field {
	f, ok := config.Get(k)
	if !ok {
		handleErr(&config.UnknownKeyError{Key: k})
	}
	return f
}

// renderValue colors a setting by type. Empty strings are shown explicitly.
func renderValue(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Success)(strconv.FormatBool(value))
		}
		return style.Fg(color.Failure)(strconv.FormatBool(value))
	case string:
		if value == "" {
			return style.Faint("(empty)")
		}
		return style.Fg(color.Quality)(value)
	case []string:
		return strings.Join(lo.Map(value, func(s string, _ int) string { return style.Provider(s) }), style.Faint(" → "))
	default:
		return fmt.Sprint(value)
	}
}

func printField(w io.Writer, f *config.Field) {
	label := style.Faint
	fmt.Fprintln(w, style.Bold(f.Key))
	for _, line := range strings.Split(f.Description, "\n") {
		fmt.Fprintln(w, "  "+style.Faint(line))
	}
	fmt.Fprintf(w, "  %s    %s\n", label("env"), f.Env())
	fmt.Fprintf(w, "  %s  %s\n", label("value"), renderValue(viper.Get(f.Key)))
	fmt.Fprintf(w, "  %s %s\n", label("default"), renderValue(f.Value))
	fmt.Fprintf(w, "  %s   %s\n", label("type"), f.Type())
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change pipeline, provider and CLI settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", nil, "Only describe these keys")
	configInfoCmd.Flags().StringSliceP("section", "s", nil, "Only describe these sections, e.g. sources or pipeline")
	configInfoCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	configInfoCmd.MarkFlagsMutuallyExclusive("key", "section")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configInfoCmd.RegisterFlagCompletionFunc("section", completionConfigSections)

	configInfoCmd.SetOut(os.Stdout)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe settings grouped by section",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys     = lo.Must(cmd.Flags().GetStringSlice("key"))
			sections = lo.Must(cmd.Flags().GetStringSlice("section"))
			asJson   = lo.Must(cmd.Flags().GetBool("json"))
			groups   = config.Sections()
		)

		if len(sections) > 0 {
			for _, s := range sections {
				if !lo.Contains(groups, s) {
					handleErr(fmt.Errorf("unknown section %s, available: %s", s, strings.Join(groups, ", ")))
				}
			}
			groups = lo.Filter(groups, func(s string, _ int) bool { return lo.Contains(sections, s) })
		}

		selected := make([]*config.Field, 0)
		if len(keys) > 0 {
			selected = lo.Map(keys, func(k string, _ int) *config.Field { return mustField(k) })
		} else {
			for _, s := range groups {
				selected = append(selected, config.InSection(s)...)
			}
		}

		if asJson {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(selected))
			return
		}

		out := cmd.OutOrStdout()
		if len(keys) > 0 {
			for i, f := range selected {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printField(out, f)
			}
			return
		}

		for i, s := range groups {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, style.Header(config.SectionTitle(s)))
			fmt.Fprintln(out)
			for j, f := range config.InSection(s) {
				if j > 0 {
					fmt.Fprintln(out)
				}
				printField(out, f)
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>...",
	Short: "Change a setting and save it to the config file",
	Long: `Change a setting and save it to the config file.
Lists take several values or a comma separated one:

  vidlink config set sources.default native y2mate
  vidlink config set sources.default native,y2mate`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k := args[0]
		value, err := config.Set(k, args[1:])
		handleErr(err)

		if k == key.DefaultSources {
			_, err := provider.Ordered(value.([]string))
			handleErr(err)
		}

		handleErr(config.Save())
		fmt.Printf("%s %s = %s\n", style.Fg(color.Success)(icon.Get(icon.Success)), style.Bold(k), renderValue(value))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the effective value of a setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		f := mustField(args[0])
		if list, ok := viper.Get(f.Key).([]string); ok {
			fmt.Println(strings.Join(list, ","))
			return
		}
		fmt.Println(viper.Get(f.Key))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective settings to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		exists := lo.Must(filesystem.API().Exists(config.Path()))
		if exists && !lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(fmt.Errorf("%s already exists, use --force to overwrite it", config.Path()))
		}

		handleErr(config.Save())
		fmt.Printf("%s wrote %s\n", style.Fg(color.Success)(icon.Get(icon.Success)), config.Path())
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file, falling back to defaults and environment",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(config.Path()))
		fmt.Printf("%s deleted %s\n", style.Fg(color.Success)(icon.Get(icon.Success)), config.Path())
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every setting")
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key]...",
	Short:             "Restore settings to their defaults and save",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if all == (len(args) > 0) {
			handleErr(fmt.Errorf("name keys to reset or pass --all"))
		}

		handleErr(config.Restore(args...))
		handleErr(config.Save())

		if all {
			fmt.Printf("%s reset every setting\n", style.Fg(color.Success)(icon.Get(icon.Success)))
			return
		}

		for _, k := range args {
			fmt.Printf(
				"%s %s = %s\n",
				style.Fg(color.Success)(icon.Get(icon.Success)),
				style.Bold(k),
				renderValue(mustField(k).Value),
			)
		}
	},
}
