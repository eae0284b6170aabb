package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"
	"github.com/vidlink-cli/vidlink/color"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/query"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/video"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("pick", "p", "", "Print a single result: "+strings.Join(discovery.Pickers, ", ")+" or index:N")
	lo.Must0(searchCmd.RegisterFlagCompletionFunc("pick", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return discovery.Pickers, cobra.ShellCompDirectiveNoFileComp
	}))

	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of results")
	lo.Must0(viper.BindPFlag(key.SearchLimit, searchCmd.Flags().Lookup("limit")))

	searchCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")

	searchCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	searchCmd.SetOut(os.Stdout)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search videos and list the ranked results",
	Example: "  vidlink search lofi --limit 5\n" +
		"  vidlink search \"cat compilation\" --pick most",
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		q := strings.TrimSpace(strings.Join(args, " "))
		if q == "" {
			q = ask()
		}

		var picker discovery.Picker
		if kind := lo.Must(cmd.Flags().GetString("pick")); kind != "" {
			p, err := discovery.ParsePicker(kind)
			handleErr(err)
			picker = p
		}

		ctx, cancel := interruptible()
		defer cancel()

		if timeout := viper.GetInt(key.PipelineTimeout); timeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancelTimeout()
		}

		hits, err := discovery.NewYouTube().Search(ctx, q, viper.GetInt(key.SearchLimit))
		handleErr(err)

		if err := query.Remember(q, query.WeightSearch); err != nil {
			log.Warnf("remember query %q: %s", q, err)
		}

		if picker != nil {
			hit, err := picker(q, hits)
			handleErr(err)
			hits = []*video.Hit{hit}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(hits))
			return
		}

		if picker != nil {
			cmd.Println(hits[0].URL)
			return
		}

		if len(hits) == 0 {
			handleErr(discovery.ErrNoHits)
		}

		for i, hit := range hits {
			printHit(cmd, i+1, hit)
		}
	},
}

// ask prompts for a query, suggesting previous ones.
func ask() string {
	if !util.IsTerminal(os.Stdin) {
		handleErr(fmt.Errorf("query required"))
	}

	input := &survey.Input{Message: "Search"}
	if viper.GetBool(key.SearchShowQuerySuggestions) {
		input.Suggest = query.SuggestMany
		if s, ok := query.Suggest("").Get(); ok {
			input.Default = s
		}
	}

	var q string
	handleErr(survey.AskOne(input, &q, survey.WithValidator(survey.Required)))
	return strings.TrimSpace(q)
}

func printHit(cmd *cobra.Command, n int, hit *video.Hit) {
	meta := lo.Compact([]string{
		hit.Author,
		lo.Ternary(hit.Duration > 0, hit.Duration.String(), ""),
		lo.Ternary(hit.Views > 0, humanize.Comma(hit.Views)+" views", ""),
	})

	cmd.Printf("%s %s\n", style.Fg(color.Purple)(fmt.Sprintf("%2d.", n)), style.Bold(hit.Title))
	if len(meta) > 0 {
		cmd.Printf("    %s\n", style.Faint(strings.Join(meta, " · ")))
	}
	cmd.Printf("    %s %s\n", icon.Get(icon.Link), hit.URL)
}
