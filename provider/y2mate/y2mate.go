// Package y2mate speaks the analyze/convert form protocol of y2mate style conversion services.
package y2mate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/source"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/video"
)

const maxBody = 2 << 20

// Endpoints is the analyze/convert pair of one service.
type Endpoints struct {
	Analyze string
	Convert string
}

// Source talks to one endpoint pair.
type Source struct {
	name      string
	endpoints Endpoints
	client    network.Doer
	userAgent string
}

// New creates a source named name. A nil client uses network.ForProviders.
func New(name string, endpoints Endpoints, client network.Doer) *Source {
	if client == nil {
		client = network.ForProviders()
	}
	return &Source{
		name:      name,
		endpoints: endpoints,
		client:    client,
		userAgent: network.UserAgent(),
	}
}

func (s *Source) Name() string { return s.name }
func (s *Source) ID() string   { return "builtin-" + s.name }

// Defaults pins auto to 360p video and 128kbps audio.
func (s *Source) Defaults() video.Defaults {
	return video.Defaults{
		"mp4": "360p",
		"mp3": "128kbps",
	}
}

// Analyze submits the canonical URL of identity.
func (s *Source) Analyze(ctx context.Context, identity video.Identity) (*source.Analysis, error) {
	canonical := identity.URL
	if canonical == "" {
		canonical = video.WatchURL(identity.ID)
	}

	form := url.Values{}
	form.Set("k_query", canonical)
	form.Set("k_page", "home")
	form.Set("hl", "en")
	form.Set("q_auto", "0")

	var r analyzeReply
	if err := s.post(ctx, s.endpoints.Analyze, form, &r); err != nil {
		return nil, video.Wrap(video.AnalyzeFailed, err, s.name)
	}

	return r.analysis(), nil
}

// Convert exchanges token for a download link.
func (s *Source) Convert(ctx context.Context, videoID string, token video.Token) (*source.Conversion, error) {
	if videoID == "" || token.IsZero() {
		return nil, video.Errorf(video.ConvertFailed, "%s: video id and token are required", s.name)
	}

	form := url.Values{}
	form.Set("vid", videoID)
	form.Set("k", token.Value())

	var r convertReply
	if err := s.post(ctx, s.endpoints.Convert, form, &r); err != nil {
		return nil, video.Wrap(video.ConvertFailed, err, s.name)
	}

	return &source.Conversion{
		Link:    r.Dlink,
		Format:  r.Ftype,
		Quality: r.Fquality,
	}, nil
}

// post sends form once. Analyze and convert calls are never retried.
func (s *Source) post(ctx context.Context, endpoint string, form url.Values, out reply) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", s.userAgent)
	if u, err := url.Parse(endpoint); err == nil {
		req.Header.Set("Origin", u.Scheme+"://"+u.Host)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer util.Ignore(resp.Body.Close)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &network.StatusError{Code: resp.StatusCode}
	}

	log.Tracef("%s %s: %d bytes", s.name, endpoint, len(body))
	return decode(body, out)
}

func (r *analyzeReply) analysis() *source.Analysis {
	catalog := video.NewCatalog()
	for format := r.Links.Oldest(); format != nil; format = format.Next() {
		if format.Value == nil {
			continue
		}
		for e := format.Value.Oldest(); e != nil; e = e.Next() {
			l := e.Value
			if l.K == "" || l.Q == "" {
				continue
			}
			catalog.Add(format.Key, video.Entry{
				Quality: l.Q,
				Label:   plain(l.QText),
				Size:    l.Size,
				Token:   video.NewToken(l.K),
			})
		}
	}

	identity := video.Identity{
		ID:     r.Vid,
		Title:  r.Title,
		Author: r.A,
	}
	if r.Vid != "" {
		identity.Thumbnail = video.ThumbnailURL(r.Vid)
		identity.URL = video.WatchURL(r.Vid)
	}

	var related []*video.Hit
	for _, group := range r.Related {
		for _, c := range group.Contents {
			if c.V == "" {
				continue
			}
			related = append(related, &video.Hit{Identity: video.Identity{
				ID:        c.V,
				Title:     c.T,
				Thumbnail: video.ThumbnailURL(c.V),
				URL:       video.WatchURL(c.V),
			}})
		}
	}

	return &source.Analysis{
		Identity:  identity,
		Catalog:   catalog,
		Related:   related,
		Timestamp: time.Now(),
	}
}
