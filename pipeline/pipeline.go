// Package pipeline resolves a reference into a conversion result by trying provider strategies in order.
package pipeline

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
)

// Request is the user input of one resolution.
type Request struct {
	URL     string `json:"url,omitempty"`
	Query   string `json:"query,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// Outcome is the first successful attempt.
type Outcome struct {
	Provider string         `json:"provider"`
	Identity video.Identity `json:"identity"`
	Result   video.Result   `json:"result"`
}

// Report is the analysis of the first provider whose analyze step succeeded.
type Report struct {
	Provider string         `json:"provider"`
	Identity video.Identity `json:"identity"`
	Catalog  *video.Catalog `json:"catalog"`
	Related  []*video.Hit   `json:"related,omitempty"`
	Defaults video.Defaults `json:"defaults,omitempty"`
}

// Pipeline is stateless between requests and safe for concurrent use.
type Pipeline struct {
	sources   []source.Source
	discovery discovery.Discovery
	timeout   time.Duration
	observer  Observer
	format    string
	quality   string
}

// New creates a pipeline trying sources in the given order.
func New(sources []source.Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		sources: sources,
		format:  video.DefaultFormat,
		quality: video.Auto,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Sources returns the names of the configured sources in attempt order.
func (p *Pipeline) Sources() []string {
	names := make([]string, len(p.sources))
	for i, s := range p.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve runs the full analyze, select, convert cycle against each source until one succeeds.
// Invalid input is returned as is; any other failure of every source yields *ExhaustedError.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (*Outcome, error) {
	ref, err := video.Parse(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	format, quality := p.selection(req)
	run := newRun(p, ref)

	var attempts []Attempt
	for _, src := range p.sources {
		outcome, err := run.resolve(ctx, src, format, quality)
		if err == nil {
			return outcome, nil
		}

		attempts = append(attempts, Attempt{Provider: src.Name(), Err: err})
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warnf("resolution of %s abandoned: %s", ref, ctxErr)
			break
		}
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

// Analyze returns the catalog offered by the first source whose discovery and analyze succeed.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Report, error) {
	ref, err := video.Parse(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	run := newRun(p, ref)

	var attempts []Attempt
	for _, src := range p.sources {
		report, err := run.analyze(ctx, src)
		if err == nil {
			return report, nil
		}

		attempts = append(attempts, Attempt{Provider: src.Name(), Err: err})
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

func (p *Pipeline) selection(req Request) (format, quality string) {
	format, quality = req.Format, req.Quality
	if format == "" {
		format = p.format
	}
	if quality == "" {
		quality = p.quality
	}
	return format, quality
}

func (p *Pipeline) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// resolved is the memoized discovery outcome of one discovery path.
type resolved struct {
	path     discovery.Discovery
	identity *video.Identity
	err      error
}

// run holds the per-request state shared read-only across attempts.
type run struct {
	p   *Pipeline
	ref *video.Reference
	// paths memoizes discovery per path so each path runs at most once per request.
	paths []*resolved
}

func newRun(p *Pipeline, ref *video.Reference) *run {
	return &run{p: p, ref: ref}
}

// identify returns a private copy of the identity produced by the discovery path of src.
func (r *run) identify(ctx context.Context, src source.Source) (video.Identity, error) {
	path := r.p.discovery
	if d, ok := src.(source.Discoverer); ok && d.Discovery() != nil {
		path = d.Discovery()
	}

	if path == nil {
		return video.Identity{}, video.Errorf(video.ResolutionFailed, "no discovery available for %s", src.Name())
	}

	for _, res := range r.paths {
		if samePath(res.path, path) {
			if res.err != nil {
				return video.Identity{}, res.err
			}
			return *res.identity, nil
		}
	}

	ctx, cancel := r.p.bounded(ctx)
	defer cancel()

	identity, err := discovery.Resolve(ctx, r.ref, path)
	r.paths = append(r.paths, &resolved{path: path, identity: identity, err: err})
	if err != nil {
		return video.Identity{}, err
	}
	return *identity, nil
}

func samePath(a, b discovery.Discovery) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// analyzed holds the private state of one attempt after its analyze step.
type analyzed struct {
	identity video.Identity
	analysis *source.Analysis
}

func (r *run) analyzeStep(ctx context.Context, src source.Source, emit func(State, error)) (*analyzed, error) {
	identity, err := r.identify(ctx, src)
	if err != nil {
		return nil, err
	}

	actx, cancel := r.p.bounded(ctx)
	analysis, err := src.Analyze(actx, identity)
	cancel()
	if err != nil {
		return nil, classify(video.AnalyzeFailed, err)
	}
	if analysis == nil || analysis.Catalog == nil {
		return nil, video.Errorf(video.AnalyzeFailed, "empty analysis")
	}

	identity = identity.Merge(analysis.Identity)
	emit(StateAnalyzed, nil)

	return &analyzed{identity: identity, analysis: analysis}, nil
}

func (r *run) resolve(ctx context.Context, src source.Source, format, quality string) (*Outcome, error) {
	emit := r.emitter(src)
	emit(StateStart, nil)

	outcome, err := func() (*Outcome, error) {
		a, err := r.analyzeStep(ctx, src, emit)
		if err != nil {
			return nil, err
		}

		entry, err := a.analysis.Catalog.Select(format, quality, src.Defaults())
		if err != nil {
			return nil, err
		}
		emit(StateQualitySelected, nil)

		log.WithFields(log.Fields{
			"provider": src.Name(),
			"video":    a.identity.ID,
			"format":   format,
			"quality":  entry.Quality,
			"token":    entry.Token.String(),
		}).Debug("converting")

		cctx, cancel := r.p.bounded(ctx)
		conversion, err := src.Convert(cctx, a.identity.ID, entry.Token)
		cancel()
		if err != nil {
			return nil, classify(video.ConvertFailed, err)
		}
		if conversion == nil || conversion.Link == "" {
			return nil, video.Errorf(video.ConvertFailed, "no download link")
		}
		emit(StateConverted, nil)

		return &Outcome{
			Provider: src.Name(),
			Identity: a.identity,
			Result:   conversion.Result(format, entry),
		}, nil
	}()

	if err != nil {
		emit(StateFailed, err)
		return nil, err
	}

	emit(StateDone, nil)
	return outcome, nil
}

func (r *run) analyze(ctx context.Context, src source.Source) (*Report, error) {
	emit := r.emitter(src)
	emit(StateStart, nil)

	a, err := r.analyzeStep(ctx, src, emit)
	if err != nil {
		emit(StateFailed, err)
		return nil, err
	}

	emit(StateDone, nil)
	return &Report{
		Provider: src.Name(),
		Identity: a.identity,
		Catalog:  a.analysis.Catalog,
		Related:  a.analysis.Related,
		Defaults: src.Defaults(),
	}, nil
}

func (r *run) emitter(src source.Source) func(State, error) {
	return func(s State, err error) {
		fields := log.Fields{"provider": src.Name(), "state": s.String(), "ref": r.ref.String()}
		if err != nil {
			log.WithFields(fields).Warn(err)
		} else {
			log.WithFields(fields).Debug("attempt transition")
		}

		if r.p.observer != nil {
			r.p.observer(Event{Provider: src.Name(), State: s, Err: err})
		}
	}
}

// classify tags an unclassified error with fallback. Deadline and cancellation errors are classified too.
func classify(fallback video.Reason, err error) error {
	if video.ReasonOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return video.Wrap(fallback, err, "timed out")
	}
	return video.Wrap(fallback, err, "")
}
