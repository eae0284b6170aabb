package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/provider/custom"
	"github.com/vidlink-cli/vidlink/source"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("url", "u", "", "Video URL to analyze")
	runCmd.Flags().StringP("query", "q", "", "Search query; the first result is analyzed")
	runCmd.SetOut(os.Stdout)
}

// runCmd loads a local Lua provider and optionally analyzes a video with it.
var runCmd = &cobra.Command{
	Use:   "run [file] [url or query]",
	Short: "Execute a local Lua provider script",
	Long: `Load a Lua provider script to check that it compiles and defines the required functions.
Given a video, the script's analysis is printed. Useful for provider development and debugging.`,
	Args:    cobra.MinimumNArgs(1),
	Example: "  vidlink run ./mine.lua https://youtu.be/dQw4w9WgXcQ",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := custom.LoadSource(args[0])
		handleErr(err)
		defer src.Close()

		req, err := requestOf(cmd, args[1:])
		handleErr(err)

		if req.URL == "" && req.Query == "" {
			return
		}

		ctx, cancel := interruptible()
		defer cancel()

		p := pipeline.New([]source.Source{src},
			pipeline.WithDiscovery(discovery.NewYouTube()),
			pipeline.WithTimeout(time.Duration(viper.GetInt(key.PipelineTimeout))*time.Second),
		)

		report, err := p.Analyze(ctx, req)
		handleErr(err)

		printReport(cmd, report, true)
	},
}
