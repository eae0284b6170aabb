package provider

import (
	"time"

	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/pipeline"
)

// NewPipeline builds a pipeline over fresh sources of the named providers.
// With no names the configured order is used. Selection, timeout and discovery come
// from the config and may be overridden by opts. Call release once the pipeline is done.
func NewPipeline(names []string, opts ...pipeline.Option) (p *pipeline.Pipeline, release func(), err error) {
	if len(names) == 0 {
		names = viper.GetStringSlice(key.DefaultSources)
	}

	providers, err := Ordered(names)
	if err != nil {
		return nil, nil, err
	}

	sources, err := Sources(providers)
	if err != nil {
		return nil, nil, err
	}

	defaults := []pipeline.Option{
		pipeline.WithDiscovery(discovery.NewYouTube()),
		pipeline.WithTimeout(time.Duration(viper.GetInt(key.PipelineTimeout)) * time.Second),
		pipeline.WithSelection(viper.GetString(key.PipelineFormat), viper.GetString(key.PipelineQuality)),
	}

	p = pipeline.New(sources, append(defaults, opts...)...)
	return p, func() { Release(sources) }, nil
}
