// Package where resolves the directories vidlink keeps its config, Lua sources, logs and caches in.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/filesystem"
)

// EnvConfigPath overrides the config directory. Sources and logs live under it.
const EnvConfigPath = "VIDLINK_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the directory holding vidlink.toml, the sources directory and the logs.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	return ensureDir(filepath.Join(lo.Must(os.UserConfigDir()), constant.App))
}

// Cache is the directory for data that can be rebuilt, such as release checks and query history.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// CacheFile names a file inside Cache.
func CacheFile(name string) string {
	return filepath.Join(Cache(), name)
}

// Logs holds one log file per day when logs.write is on.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sources holds the custom Lua provider scripts.
func Sources() string {
	return ensureDir(filepath.Join(Config(), "sources"))
}

// Queries is the query history file behind search suggestions.
func Queries() string {
	return CacheFile("queries.json")
}

// Temp is scratch space that is never reused between runs.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
