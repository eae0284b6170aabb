package inline

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/video"
)

// Output is the JSON document of a resolution.
type Output struct {
	Query    string          `json:"query,omitempty"`
	URL      string          `json:"url,omitempty"`
	Provider string          `json:"provider,omitempty"`
	Identity *video.Identity `json:"identity,omitempty"`
	Result   *video.Result   `json:"result,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
}

// AnalysisOutput is the JSON document of an analysis.
type AnalysisOutput struct {
	Query    string          `json:"query,omitempty"`
	URL      string          `json:"url,omitempty"`
	Provider string          `json:"provider,omitempty"`
	Identity *video.Identity `json:"identity,omitempty"`
	Catalog  *video.Catalog  `json:"catalog,omitempty" jsonschema:"type=object"`
	Defaults video.Defaults  `json:"defaults,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
}

// Failure describes why no provider succeeded.
type Failure struct {
	Reason   video.Reason `json:"reason"`
	Message  string       `json:"message"`
	Attempts []Attempt    `json:"attempts,omitempty"`
}

type Attempt struct {
	Provider string       `json:"provider"`
	Reason   video.Reason `json:"reason"`
	Message  string       `json:"message"`
}

func output(req pipeline.Request, outcome *pipeline.Outcome, err error) *Output {
	out := &Output{Query: req.Query, URL: req.URL}
	if err != nil {
		out.Failure = failureOf(err)
		return out
	}

	out.Provider = outcome.Provider
	out.Identity = &outcome.Identity
	out.Result = &outcome.Result
	return out
}

func analysisOutput(req pipeline.Request, report *pipeline.Report, err error) *AnalysisOutput {
	out := &AnalysisOutput{Query: req.Query, URL: req.URL}
	if err != nil {
		out.Failure = failureOf(err)
		return out
	}

	out.Provider = report.Provider
	out.Identity = &report.Identity
	out.Catalog = report.Catalog
	out.Defaults = report.Defaults
	return out
}

func failureOf(err error) *Failure {
	f := &Failure{Reason: video.ReasonOf(err), Message: err.Error()}

	var exhausted *pipeline.ExhaustedError
	if errors.As(err, &exhausted) {
		for _, a := range exhausted.Attempts {
			f.Attempts = append(f.Attempts, Attempt{Provider: a.Provider, Reason: a.Reason(), Message: a.Err.Error()})
		}
	}

	return f
}

func writeJson(out io.Writer, v any) error {
	return json.NewEncoder(out).Encode(v)
}

// Schema returns the JSON schema of Output, or of AnalysisOutput when analysis is set.
func Schema(analysis bool) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch strings.ToLower(name) {
		case "identity", "result", "output", "attempt":
			return reflectPkg(t) + "." + name
		}
		return name
	}

	if analysis {
		return reflector.Reflect(&AnalysisOutput{})
	}
	return reflector.Reflect(&Output{})
}

func reflectPkg(t reflect.Type) string {
	path := t.PkgPath()
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
