package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/inline"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/video"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addRequestFlags(analyzeCmd)

	analyzeCmd.Flags().BoolP("related", "r", false, "Also list related videos reported by the provider")
	analyzeCmd.SetOut(os.Stdout)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url or query]",
	Short: "Show the formats and qualities offered for a video",
	Long:  `Report the catalog of the first provider whose analysis succeeds, without converting anything.`,
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestOf(cmd, args)
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		out, closeOut := outputOf(cmd)
		defer closeOut()

		if lo.Must(cmd.Flags().GetBool("json")) || cmd.Flags().Changed("output") {
			_, err := withProgress(ctx, "Analyzing", func(ctx context.Context, p *pipeline.Pipeline) (struct{}, error) {
				return struct{}{}, inline.Run(ctx, &inline.Options{
					Out:      out,
					Pipeline: p,
					Request:  req,
					Json:     lo.Must(cmd.Flags().GetBool("json")),
					Analyze:  true,
				})
			})
			handleErr(err)
			remember(req)
			return
		}

		report, err := withProgress(ctx, "Analyzing", func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Analyze(ctx, req)
		})
		handleErr(err)
		remember(req)

		printReport(cmd, report, lo.Must(cmd.Flags().GetBool("related")))
	},
}

func printReport(cmd *cobra.Command, report *pipeline.Report, related bool) {
	width := 80
	if w, _, err := util.TerminalSize(); err == nil && w > 0 {
		width = w
	}

	cmd.Println(style.Bold(report.Identity.String()))
	if report.Identity.Author != "" {
		cmd.Println(style.Faint(report.Identity.Author))
	}
	cmd.Println(style.Faint(report.Identity.URL))
	cmd.Println()
	cmd.Printf("%s %s\n\n", style.Header("Provider"), style.Provider(report.Provider))

	for _, format := range report.Catalog.Formats() {
		glyph := icon.Get(icon.Video)
		if strings.HasPrefix(format, "mp3") || strings.HasPrefix(format, "m4a") {
			glyph = icon.Get(icon.Audio)
		}

		entries, _ := report.Catalog.Entries(format)
		tiers := lo.Map(entries, func(e video.Entry, _ int) string {
			return tier(e, report.Defaults[format])
		})

		line := fmt.Sprintf("%s %s  %s", glyph, style.Header(format), strings.Join(tiers, "  "))
		cmd.Println(wordwrap.String(line, width))
	}

	if related && len(report.Related) > 0 {
		cmd.Println()
		cmd.Println(style.Header("Related"))
		for _, hit := range report.Related {
			cmd.Println(wordwrap.String(fmt.Sprintf("%s %s %s", icon.Get(icon.Link), hit.Title, style.Faint(hit.URL)), width))
		}
	}
}

// tier renders a quality with its size.
func tier(e video.Entry, auto string) string {
	s := style.Tier(e.Quality, e.Quality == auto)
	if e.Size != "" {
		s += style.Faint(" (" + e.Size + ")")
	}
	return s
}
