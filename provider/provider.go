// Package provider manages built-in and custom provider strategies.
package provider

import (
	"fmt"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/provider/custom"
	"github.com/vidlink-cli/vidlink/provider/native"
	"github.com/vidlink-cli/vidlink/provider/y2mate"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/where"
)

const (
	Y2mate       = "y2mate"
	Y2mateMirror = "y2mate-mirror"

	CustomProviderExtension = ".lua"
)

// Provider represents a source provider.
// CreateSource builds a fresh source; sources are never shared between resolutions.
type Provider struct {
	ID           string
	Name         string
	IsCustom     bool
	CreateSource func() (source.Source, error)
}

func (p *Provider) String() string {
	return p.Name
}

// Builtins returns built-in providers.
func Builtins() []*Provider {
	return []*Provider{
		{
			ID:   "builtin-" + Y2mate,
			Name: Y2mate,
			CreateSource: func() (source.Source, error) {
				return y2mate.New(Y2mate, y2mate.Endpoints{
					Analyze: viper.GetString(key.Y2mateAnalyze),
					Convert: viper.GetString(key.Y2mateConvert),
				}, nil), nil
			},
		},
		{
			ID:   "builtin-" + Y2mateMirror,
			Name: Y2mateMirror,
			CreateSource: func() (source.Source, error) {
				return y2mate.New(Y2mateMirror, y2mate.Endpoints{
					Analyze: viper.GetString(key.Y2mateMirrorAnalyze),
					Convert: viper.GetString(key.Y2mateMirrorConvert),
				}, nil), nil
			},
		},
		{
			ID:   "builtin-" + native.Name,
			Name: native.Name,
			CreateSource: func() (source.Source, error) {
				return native.New(network.Client, discovery.NewYouTube()), nil
			},
		},
	}
}

// Customs returns all available Lua providers.
func Customs() []*Provider {
	providers, _ := CustomProviders()
	return providers
}

// Get finds a provider by name. Builtins shadow custom scripts of the same name.
func Get(name string) (*Provider, bool) {
	for _, p := range Builtins() {
		if p.Name == name {
			return p, true
		}
	}

	for _, p := range Customs() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Ordered returns the providers named by names, in that order.
func Ordered(names []string) ([]*Provider, error) {
	names = lo.Uniq(names)
	providers := make([]*Provider, 0, len(names))

	for _, name := range names {
		p, ok := Get(name)
		if !ok {
			return nil, fmt.Errorf("provider not found: %s", name)
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// Sources creates a fresh source for each provider. Sources created before a failure are released.
func Sources(providers []*Provider) ([]source.Source, error) {
	sources := make([]source.Source, 0, len(providers))

	for _, p := range providers {
		src, err := p.CreateSource()
		if err != nil {
			Release(sources)
			return nil, fmt.Errorf("create %s: %w", p.Name, err)
		}
		sources = append(sources, src)
	}

	return sources, nil
}

// Release closes sources that hold resources.
func Release(sources []source.Source) {
	for _, src := range sources {
		if c, ok := src.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// CustomProviders lists the Lua scripts in the sources directory.
func CustomProviders() ([]*Provider, error) {
	files, err := filesystem.API().ReadDir(where.Sources())
	if err != nil {
		return nil, err
	}

	var providers []*Provider
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != CustomProviderExtension {
			continue
		}

		path := filepath.Join(where.Sources(), f.Name())
		name := util.FileStem(f.Name())

		providers = append(providers, &Provider{
			ID:       custom.IDfromName(name),
			Name:     name,
			IsCustom: true,
			CreateSource: func() (source.Source, error) {
				return custom.LoadSource(path)
			},
		})
	}

	return providers, nil
}
