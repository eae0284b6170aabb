package cmd

import (
	"encoding/json"
	"os"

	"github.com/vidlink-cli/vidlink/inline"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/provider"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(inlineCmd)
	addRequestFlags(inlineCmd)

	inlineCmd.Flags().StringP("format", "f", "", "Format to resolve, e.g. mp4 or mp3")
	inlineCmd.Flags().StringP("quality", "Q", "", "Quality to resolve, e.g. 720p or 128kbps")
	inlineCmd.Flags().BoolP("analyze", "a", false, "Report the catalog instead of resolving a link")
}

// inlineCmd executes a resolution in non-interactive, scriptable mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Resolve without any interactive output, for scripts",
	Long: `Resolve a video and print only the link, or a JSON document with --json.
With --analyze, print one line per format with its qualities instead.

In JSON mode failures are printed as a document too, including the reason of every provider attempt.`,
	Example: "  vidlink inline -u https://youtu.be/dQw4w9WgXcQ -f mp3 -j",
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestOf(cmd, args)
		handleErr(err)
		req.Format = lo.Must(cmd.Flags().GetString("format"))
		req.Quality = lo.Must(cmd.Flags().GetString("quality"))

		out, closeOut := outputOf(cmd)
		defer closeOut()

		ctx, cancel := interruptible()
		defer cancel()

		p, release, err := provider.NewPipeline(viper.GetStringSlice(key.DefaultSources))
		handleErr(err)
		defer release()

		handleErr(inline.Run(ctx, &inline.Options{
			Out:      out,
			Pipeline: p,
			Request:  req,
			Json:     lo.Must(cmd.Flags().GetBool("json")),
			Analyze:  lo.Must(cmd.Flags().GetBool("analyze")),
		}))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)

	inlineSchemaCmd.Flags().BoolP("analysis", "a", false, "Generate the JSON Schema of analysis output")
}

// inlineSchemaCmd generates JSON schemas for structured inline mode outputs.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for structured inline mode outputs",
	Run: func(cmd *cobra.Command, args []string) {
		schema := inline.Schema(lo.Must(cmd.Flags().GetBool("analysis")))
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
