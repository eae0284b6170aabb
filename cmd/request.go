package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/vidlink-cli/vidlink/query"
	"github.com/vidlink-cli/vidlink/tui"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/video"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addRequestFlags registers the url and query flags shared by resolve and analyze.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("url", "u", "", "Video URL to resolve")
	cmd.Flags().StringP("query", "q", "", "Search query; the first result is used")
	cmd.MarkFlagsMutuallyExclusive("url", "query")

	cmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	cmd.Flags().StringP("output", "o", "", "Write the command output to a file")

	lo.Must0(cmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
}

// requestOf builds a request from flags, or from free text given as arguments.
func requestOf(cmd *cobra.Command, args []string) (pipeline.Request, error) {
	req := pipeline.Request{
		URL:   lo.Must(cmd.Flags().GetString("url")),
		Query: lo.Must(cmd.Flags().GetString("query")),
	}

	if req.URL == "" && req.Query == "" && len(args) > 0 {
		ref, err := video.ParseText(strings.Join(args, " "))
		if err != nil {
			return req, err
		}

		if ref.Kind == video.KindURL {
			req.URL = ref.Raw
		} else {
			req.Query = ref.Raw
		}
	}

	return req, nil
}

// remember keeps a successfully resolved query for completion and suggestions.
// Only the CLI records history; the pipeline itself keeps nothing between requests.
func remember(req pipeline.Request) {
	if req.URL != "" || strings.TrimSpace(req.Query) == "" {
		return
	}

	if err := query.Remember(req.Query, query.WeightResolve); err != nil {
		log.Warnf("remember query %q: %s", req.Query, err)
	}
}

// outputOf returns the writer selected by the output flag and a function closing it.
func outputOf(cmd *cobra.Command) (io.Writer, func()) {
	path := lo.Must(cmd.Flags().GetString("output"))
	if path == "" {
		return os.Stdout, func() {}
	}

	f, err := filesystem.API().Create(path)
	handleErr(err)
	return f, func() { util.Ignore(f.Close) }
}

// interruptible returns a context cancelled on SIGINT.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// withProgress runs fn against a fresh pipeline, rendering attempts when stderr is a terminal.
func withProgress[T any](ctx context.Context, title string, fn func(context.Context, *pipeline.Pipeline) (T, error)) (T, error) {
	run := func(ctx context.Context, observer pipeline.Observer) (T, error) {
		var opts []pipeline.Option
		if observer != nil {
			opts = append(opts, pipeline.WithObserver(observer))
		}

		p, release, err := provider.NewPipeline(viper.GetStringSlice(key.DefaultSources), opts...)
		if err != nil {
			var zero T
			return zero, err
		}
		defer release()

		return fn(ctx, p)
	}

	if !util.IsTerminal(os.Stderr) {
		return run(ctx, nil)
	}

	return tui.Run(ctx, title, run)
}
