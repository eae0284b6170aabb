// Package inline provides the application's non-interactive, scriptable output mode.
package inline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vidlink-cli/vidlink/pipeline"
)

// Options of one inline run.
type Options struct {
	Out      io.Writer
	Pipeline *pipeline.Pipeline
	Request  pipeline.Request
	// Json switches from the plain link line to a JSON document.
	Json bool
	// Analyze reports the catalog instead of resolving a link.
	Analyze bool
}

// Run executes the request and writes the result to options.Out.
// In JSON mode failures are written too, and the error is still returned.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	if options.Analyze {
		report, err := options.Pipeline.Analyze(ctx, options.Request)
		if options.Json {
			if werr := writeJson(options.Out, analysisOutput(options.Request, report, err)); werr != nil {
				return errors.Join(err, werr)
			}
			return err
		}
		if err != nil {
			return err
		}
		return writeCatalog(options.Out, report)
	}

	outcome, err := options.Pipeline.Resolve(ctx, options.Request)
	if options.Json {
		if werr := writeJson(options.Out, output(options.Request, outcome, err)); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(options.Out, outcome.Result.Link)
	return err
}

// writeCatalog prints one line per format: the format followed by its qualities.
func writeCatalog(out io.Writer, report *pipeline.Report) error {
	for _, format := range report.Catalog.Formats() {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", format, strings.Join(report.Catalog.Qualities(format), " ")); err != nil {
			return err
		}
	}
	return nil
}
