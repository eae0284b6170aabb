package custom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
	lua "github.com/yuin/gopher-lua"
)

// defaultsTimeout bounds the optional Defaults call, which has no request context.
var defaultsTimeout = 5 * time.Second

// Source adapts a Lua script to source.Source. Calls are serialized on the script's state.
type Source struct {
	name  string
	mu    sync.Mutex
	state *lua.LState

	defaults  video.Defaults
	discovery *scriptDiscovery
}

func newSource(name string, state *lua.LState) *Source {
	s := &Source{name: name, state: state}

	if s.defined(constant.SearchFn) {
		s.discovery = &scriptDiscovery{source: s}
	}

	return s
}

// Name returns the provider name.
func (s *Source) Name() string {
	return s.name
}

// ID returns the provider ID.
func (s *Source) ID() string {
	return IDfromName(s.name)
}

// Close releases the Lua state.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

// Defaults returns the table from the optional Defaults function, or none.
func (s *Source) Defaults() video.Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaults != nil {
		return s.defaults
	}

	s.defaults = video.Defaults{}
	if !s.defined(constant.DefaultsFn) {
		return s.defaults
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultsTimeout)
	defer cancel()

	ret, err := s.call(ctx, constant.DefaultsFn, lua.LTTable)
	if err != nil {
		return s.defaults
	}

	ret.(*lua.LTable).ForEach(func(k, v lua.LValue) {
		if k.Type() == lua.LTString && v.Type() == lua.LTString {
			s.defaults[k.String()] = v.String()
		}
	})
	return s.defaults
}

// Discovery returns the script's own discovery path when it defines Search.
func (s *Source) Discovery() discovery.Discovery {
	if s.discovery == nil {
		return nil
	}
	return s.discovery
}

func (s *Source) Analyze(ctx context.Context, identity video.Identity) (*source.Analysis, error) {
	canonical := identity.URL
	if canonical == "" {
		canonical = video.WatchURL(identity.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ret, err := s.call(ctx, constant.AnalyzeFn, lua.LTTable, lua.LString(canonical))
	if err != nil {
		return nil, video.Wrap(video.AnalyzeFailed, err, s.name)
	}

	analysis, err := analysisFromTable(ret.(*lua.LTable))
	if err != nil {
		return nil, video.Wrap(video.AnalyzeFailed, err, s.name)
	}
	analysis.Timestamp = time.Now()

	return analysis, nil
}

func (s *Source) Convert(ctx context.Context, videoID string, token video.Token) (*source.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, err := s.call(ctx, constant.ConvertFn, lua.LTTable, lua.LString(videoID), lua.LString(token.Value()))
	if err != nil {
		return nil, video.Wrap(video.ConvertFailed, err, s.name)
	}

	conversion, err := conversionFromTable(ret.(*lua.LTable))
	if err != nil {
		return nil, video.Wrap(video.ConvertFailed, err, s.name)
	}

	return conversion, nil
}

func (s *Source) defined(fn string) bool {
	return s.state.GetGlobal(fn).Type() == lua.LTFunction
}

// call executes a global Lua function bound to ctx. The caller holds s.mu.
func (s *Source) call(ctx context.Context, fn string, retType lua.LValueType, args ...lua.LValue) (lua.LValue, error) {
	luaFn := s.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is not defined", fn)
	}

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	retval := s.state.Get(-1)
	s.state.Pop(1)

	if retval.Type() != retType {
		return nil, fmt.Errorf("%s returned %s, expected %s", fn, retval.Type(), retType)
	}

	return retval, nil
}

// scriptDiscovery exposes the script's Search and optional Lookup functions.
type scriptDiscovery struct {
	source *Source
}

func (d *scriptDiscovery) Search(ctx context.Context, query string, limit int) ([]*video.Hit, error) {
	s := d.source
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, err := s.call(ctx, constant.SearchFn, lua.LTTable, lua.LString(query))
	if err != nil {
		return nil, err
	}

	hits := hitsFromTable(ret.(*lua.LTable))
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Lookup calls the script's Lookup when defined. Otherwise only the id is known
// and the analyze step fills in the rest.
func (d *scriptDiscovery) Lookup(ctx context.Context, id string) (*video.Identity, error) {
	s := d.source
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.defined(constant.LookupFn) {
		return &video.Identity{ID: id, URL: video.WatchURL(id), Thumbnail: video.ThumbnailURL(id)}, nil
	}

	ret, err := s.call(ctx, constant.LookupFn, lua.LTTable, lua.LString(id))
	if err != nil {
		return nil, err
	}

	hit, err := hitFromTable(ret.(*lua.LTable))
	if err != nil {
		return nil, err
	}
	return &hit.Identity, nil
}
