// Package config registers every vidlink setting and binds it to viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/where"
)

// EnvKeyReplacer maps a dotted key to its environment variable suffix.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

const fileType = "toml"

// Setup loads defaults, then the environment, then the config file if one exists.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType(fileType)
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, field := range Fields() {
		viper.MustBindEnv(field.Key)
	}

	viper.SetTypeByDefaultValue(true)
	for _, field := range Fields() {
		viper.SetDefault(field.Key, field.Value)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// Path is the config file vidlink reads and writes.
func Path() string {
	return filepath.Join(where.Config(), constant.App+"."+fileType)
}

// Save writes the current settings to Path, creating the file when needed.
func Save() error {
	err := viper.WriteConfigAs(Path())
	if err != nil {
		return fmt.Errorf("write %s: %w", Path(), err)
	}
	return nil
}

// Set validates raw against the field registered under key, then stores it.
// The parsed value is returned for display.
func Set(key string, raw []string) (any, error) {
	field, ok := Get(key)
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}

	value, err := field.Parse(raw)
	if err != nil {
		return nil, err
	}

	viper.Set(key, value)
	return value, nil
}

// Restore restores the given keys to their registered defaults. No keys means all of them.
func Restore(keys ...string) error {
	if len(keys) == 0 {
		for _, field := range Fields() {
			viper.Set(field.Key, field.Value)
		}
		return nil
	}

	for _, key := range keys {
		field, ok := Get(key)
		if !ok {
			return &UnknownKeyError{Key: key}
		}
		viper.Set(key, field.Value)
	}
	return nil
}
