package pipeline

import (
	"time"

	"github.com/vidlink-cli/vidlink/discovery"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDiscovery sets the discovery path used by sources without their own.
func WithDiscovery(d discovery.Discovery) Option {
	return func(p *Pipeline) {
		p.discovery = d
	}
}

// WithTimeout bounds each discovery, analyze and convert call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithObserver registers a callback for attempt transitions.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithSelection sets the format and quality used when a request leaves them empty.
func WithSelection(format, quality string) Option {
	return func(p *Pipeline) {
		p.format = format
		p.quality = quality
	}
}
