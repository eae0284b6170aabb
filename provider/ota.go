package provider

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/provider/custom"
	"github.com/vidlink-cli/vidlink/where"
)

// Update fetches the named scripts from baseURL into the sources directory.
// A script is rewritten only when its SHA-256 differs from the local copy.
// With no names every installed custom provider is refreshed.
// It returns the names that changed.
func Update(ctx context.Context, baseURL string, names []string) ([]string, error) {
	if baseURL == "" {
		return nil, errors.New("no update url configured")
	}

	if len(names) == 0 {
		names = lo.Map(Customs(), func(p *Provider, _ int) string { return p.Name })
	}

	var (
		updated []string
		errs    []error
	)

	for _, name := range names {
		changed, err := updateOne(ctx, baseURL, strings.TrimSuffix(name, CustomProviderExtension))
		if err != nil {
			log.Warnf("update %s: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if changed {
			log.Infof("updated provider script %s", name)
			updated = append(updated, name)
		}
	}

	return updated, errors.Join(errs...)
}

func updateOne(ctx context.Context, baseURL, name string) (bool, error) {
	filename := name + CustomProviderExtension

	remote, err := url.JoinPath(baseURL, filename)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return false, err
	}

	resp, err := network.Get(ctx, network.Client, network.DefaultBackoff, req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &network.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if err := custom.Validate(name, body); err != nil {
		return false, err
	}

	path := filepath.Join(where.Sources(), filename)
	if local, err := filesystem.API().ReadFile(path); err == nil && sha256.Sum256(local) == sha256.Sum256(body) {
		return false, nil
	}

	return true, filesystem.WriteAtomic(path, body)
}
