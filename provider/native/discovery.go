package native

import (
	"context"
	"errors"

	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/video"
)

// playerDiscovery looks ids up through the player and delegates search.
type playerDiscovery struct {
	player player
	search discovery.Searcher
}

func (d *playerDiscovery) Search(ctx context.Context, query string, limit int) ([]*video.Hit, error) {
	if d.search == nil {
		return nil, errors.New("native: search unavailable")
	}
	return d.search.Search(ctx, query, limit)
}

func (d *playerDiscovery) Lookup(ctx context.Context, id string) (*video.Identity, error) {
	v, err := d.player.GetVideoContext(ctx, id)
	if err != nil {
		return nil, err
	}
	identity := identityOf(v)
	return &identity, nil
}
