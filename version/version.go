// Package version looks up published vidlink releases and announces upgrades.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/network"
	"github.com/vidlink-cli/vidlink/util"
	"github.com/vidlink-cli/vidlink/where"
)

// ReleasesURL is the endpoint describing the latest published release.
var ReleasesURL = "https://api.github.com/repos/vidlink-cli/vidlink/releases/latest"

var versionCacher = filesystem.Cache[string](where.CacheFile("version.json"), 48*time.Hour)

// Latest returns the most recent release version without the leading "v".
// Results are cached for two days.
func Latest(ctx context.Context) (string, error) {
	ver, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}

	if !expired && ver != "" {
		return ver, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := network.Get(ctx, network.Client, network.DefaultBackoff, req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases: %w", &network.StatusError{Code: resp.StatusCode})
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode release: %w", err)
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	ver = strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(ver)
	return ver, nil
}
