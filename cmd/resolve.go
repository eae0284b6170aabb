package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/vidlink-cli/vidlink/icon"
	"github.com/vidlink-cli/vidlink/inline"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/open"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/style"
	"github.com/vidlink-cli/vidlink/video"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	addRequestFlags(resolveCmd)

	resolveCmd.Flags().StringP("format", "f", "", "Format to resolve, e.g. mp4 or mp3")
	lo.Must0(viper.BindPFlag(key.PipelineFormat, resolveCmd.Flags().Lookup("format")))

	resolveCmd.Flags().StringP("quality", "Q", "", "Quality to resolve, e.g. 720p or 128kbps. auto picks the provider default")
	lo.Must0(viper.BindPFlag(key.PipelineQuality, resolveCmd.Flags().Lookup("quality")))

	resolveCmd.Flags().IntP("timeout", "t", 0, "Seconds allowed for each provider call")
	lo.Must0(viper.BindPFlag(key.PipelineTimeout, resolveCmd.Flags().Lookup("timeout")))

	resolveCmd.Flags().BoolP("interactive", "i", false, "Choose the format and quality from the offered catalog")
	resolveCmd.MarkFlagsMutuallyExclusive("interactive", "json")

	resolveCmd.Flags().Bool("open", false, "Open the link with the default handler")

	resolveCmd.SetOut(os.Stdout)
}

var resolveCmd = &cobra.Command{
	Use:     "resolve [url or query]",
	Short:   "Resolve a video into a direct download link",
	Long:    `Try each configured provider in order until one returns a link for the requested format and quality.`,
	Example: "  vidlink resolve https://youtu.be/dQw4w9WgXcQ -f mp3\n  vidlink resolve -q \"never gonna give you up\" -Q 720p",
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestOf(cmd, args)
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		if lo.Must(cmd.Flags().GetBool("interactive")) {
			handleErr(choose(ctx, &req))
		}

		out, closeOut := outputOf(cmd)
		defer closeOut()

		if lo.Must(cmd.Flags().GetBool("json")) {
			_, err := withProgress(ctx, "Resolving", func(ctx context.Context, p *pipeline.Pipeline) (struct{}, error) {
				return struct{}{}, inline.Run(ctx, &inline.Options{Out: out, Pipeline: p, Request: req, Json: true})
			})
			handleErr(err)
			remember(req)
			return
		}

		outcome, err := withProgress(ctx, "Resolving", func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Outcome, error) {
			return p.Resolve(ctx, req)
		})
		handleErr(err)
		remember(req)

		if cmd.Flags().Changed("output") {
			_, err = fmt.Fprintln(out, outcome.Result.Link)
			handleErr(err)
			return
		}

		printOutcome(cmd, outcome)

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(outcome.Result.Link))
		}
	},
}

func printOutcome(cmd *cobra.Command, outcome *pipeline.Outcome) {
	r := outcome.Result
	cmd.Printf("%s %s\n", icon.Get(icon.Success), style.Bold(outcome.Identity.String()))
	if outcome.Identity.Author != "" {
		cmd.Println(style.Faint(outcome.Identity.Author))
	}

	details := lo.Compact([]string{r.Format, r.Quality, r.Size})
	cmd.Printf("%s %s %s\n",
		style.Provider(outcome.Provider),
		style.Faint("·"),
		style.Tier(strings.Join(details, " "), false),
	)
	cmd.Println(style.Link(r.Link))
}

// choose analyzes req and asks for a format and quality among the offered ones.
func choose(ctx context.Context, req *pipeline.Request) error {
	report, err := withProgress(ctx, "Analyzing", func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Report, error) {
		return p.Analyze(ctx, *req)
	})
	if err != nil {
		return err
	}

	formats := report.Catalog.Formats()
	if len(formats) == 0 {
		return errors.New("no formats offered")
	}

	var format string
	if err := survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("Format for %s", report.Identity.String()),
		Options: formats,
	}, &format); err != nil {
		return err
	}

	qualities := append([]string{video.Auto}, report.Catalog.Qualities(format)...)
	var quality string
	if err := survey.AskOne(&survey.Select{
		Message: "Quality",
		Options: qualities,
		Default: video.Auto,
	}, &quality); err != nil {
		return err
	}

	// resolve the chosen identity directly instead of searching again
	if report.Identity.URL != "" {
		req.URL, req.Query = report.Identity.URL, ""
	}
	req.Format, req.Quality = format, quality
	return nil
}
