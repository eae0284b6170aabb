// Package native resolves direct stream URLs from the platform player metadata.
package native

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kkdai/youtube/v2"
	"github.com/vidlink-cli/vidlink/discovery"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/video"
	"golang.org/x/exp/slices"
)

// Name of the built-in provider.
const Name = "native"

// Format tags offered in the catalog.
const (
	FormatVideo = "mp4"
	FormatAudio = "m4a"
)

// player is the subset of *youtube.Client used here.
type player interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, v *youtube.Video, f *youtube.Format) (string, error)
}

// Source reads formats straight from the player response.
// The conversion token is the itag of the chosen format.
type Source struct {
	player    player
	discovery *playerDiscovery
}

// New creates a native source. A nil client uses network.Client.
func New(client *http.Client, search discovery.Searcher) *Source {
	if client == nil {
		client = network.Client
	}
	p := &youtube.Client{HTTPClient: client}
	return newWithPlayer(p, search)
}

func newWithPlayer(p player, search discovery.Searcher) *Source {
	return &Source{
		player:    p,
		discovery: &playerDiscovery{player: p, search: search},
	}
}

func (s *Source) Name() string { return Name }
func (s *Source) ID() string   { return "builtin-" + Name }

// Defaults pins auto to 360p video and 128kbps audio.
func (s *Source) Defaults() video.Defaults {
	return video.Defaults{
		FormatVideo: "360p",
		FormatAudio: "128kbps",
	}
}

// Discovery looks identities up through the player and delegates search.
func (s *Source) Discovery() discovery.Discovery {
	return s.discovery
}

func (s *Source) Analyze(ctx context.Context, identity video.Identity) (*source.Analysis, error) {
	ref := identity.URL
	if ref == "" {
		ref = identity.ID
	}

	v, err := s.player.GetVideoContext(ctx, ref)
	if err != nil {
		return nil, video.Wrap(video.AnalyzeFailed, err, Name)
	}

	catalog := Catalog(v)
	if catalog.Len() == 0 {
		return nil, video.Errorf(video.AnalyzeFailed, "%s: no playable formats", Name)
	}

	return &source.Analysis{
		Identity:  identityOf(v),
		Catalog:   catalog,
		Timestamp: time.Now(),
	}, nil
}

func (s *Source) Convert(ctx context.Context, videoID string, token video.Token) (*source.Conversion, error) {
	itag, err := strconv.Atoi(token.Value())
	if err != nil {
		return nil, video.Errorf(video.ConvertFailed, "%s: malformed token %s", Name, token)
	}

	v, err := s.player.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, video.Wrap(video.ConvertFailed, err, Name)
	}

	formats := v.Formats.Itag(itag)
	if len(formats) == 0 {
		return nil, video.Errorf(video.ConvertFailed, "%s: format %d no longer offered", Name, itag)
	}
	f := &formats[0]

	link, err := s.player.GetStreamURLContext(ctx, v, f)
	if err != nil {
		return nil, video.Wrap(video.ConvertFailed, err, Name)
	}
	if link == "" {
		return nil, video.Wrap(video.ConvertFailed, errors.New("empty stream url"), Name)
	}

	format, quality := classify(f)
	return &source.Conversion{
		Link:    link,
		Format:  format,
		Quality: quality,
		Size:    sizeOf(f),
	}, nil
}

// Catalog lists progressive mp4 streams by quality label, tallest first, then m4a audio by nominal bitrate.
func Catalog(v *youtube.Video) *video.Catalog {
	var progressive, audio []*youtube.Format
	for i := range v.Formats {
		f := &v.Formats[i]
		switch {
		case strings.HasPrefix(f.MimeType, "video/mp4") && f.AudioChannels > 0 && f.Height > 0:
			progressive = append(progressive, f)
		case strings.HasPrefix(f.MimeType, "audio/mp4") && f.AudioChannels > 0:
			audio = append(audio, f)
		}
	}

	slices.SortStableFunc(progressive, func(a, b *youtube.Format) int { return b.Height - a.Height })
	slices.SortStableFunc(audio, func(a, b *youtube.Format) int { return bitrate(b) - bitrate(a) })

	catalog := video.NewCatalog()
	seen := make(map[string]bool)
	for _, f := range append(progressive, audio...) {
		format, quality := classify(f)
		if seen[format+quality] {
			continue
		}
		seen[format+quality] = true

		catalog.Add(format, video.Entry{
			Quality: quality,
			Label:   label(format, quality),
			Size:    sizeOf(f),
			Token:   video.NewToken(strconv.Itoa(f.ItagNo)),
		})
	}

	return catalog
}

func classify(f *youtube.Format) (format, quality string) {
	if strings.HasPrefix(f.MimeType, "audio/") {
		return FormatAudio, fmt.Sprintf("%dkbps", nominalKbps(bitrate(f)))
	}

	quality = f.QualityLabel
	if quality == "" {
		quality = fmt.Sprintf("%dp", f.Height)
	}
	// "720p60" and "1080p HDR" collapse to their height tier.
	if i := strings.IndexByte(quality, 'p'); i > 0 {
		quality = quality[:i+1]
	}
	return FormatVideo, quality
}

func label(format, quality string) string {
	if format == FormatAudio {
		return fmt.Sprintf(".%s (%s)", format, quality)
	}
	return fmt.Sprintf("%s (.%s)", quality, format)
}

func bitrate(f *youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

var tiers = []int{32, 48, 64, 96, 128, 160, 192, 256, 320}

// nominalKbps snaps a measured bitrate to the closest advertised tier.
func nominalKbps(bps int) int {
	kbps := float64(bps) / 1000
	best := tiers[0]
	for _, t := range tiers {
		if math.Abs(float64(t)-kbps) < math.Abs(float64(best)-kbps) {
			best = t
		}
	}
	return best
}

func sizeOf(f *youtube.Format) string {
	if f.ContentLength <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(f.ContentLength))
}

func identityOf(v *youtube.Video) video.Identity {
	identity := video.Identity{
		ID:     v.ID,
		Title:  v.Title,
		Author: v.Author,
	}
	if v.ID != "" {
		identity.URL = video.WatchURL(v.ID)
		identity.Thumbnail = video.ThumbnailURL(v.ID)
	}
	if n := len(v.Thumbnails); n > 0 && v.Thumbnails[n-1].URL != "" {
		identity.Thumbnail = v.Thumbnails[n-1].URL
	}
	return identity
}
