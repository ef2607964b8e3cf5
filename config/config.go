// Package config loads archive connection settings from a TOML file
// and turns them into the functional options sqpack and excel already
// expose. It is a convenience layer, not a replacement for those
// options: any caller that prefers Go literals can skip this package
// entirely.
package config

import (
	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/go-sqpack/sqpack/excel"
	"github.com/go-sqpack/sqpack/sqpack"
	"github.com/go-sqpack/sqpack/xerrors"
)

// Config is the on-disk shape of an archive connection's settings.
type Config struct {
	// Root is the filesystem directory containing the repository
	// subdirectories (e.g. "ffxiv") (§6 "Archive directory layout").
	Root string `toml:"root"`

	// Platform is the platform string embedded in .index/.dat file
	// names ("win32", "ps4", "ps5" ...).
	Platform string `toml:"platform"`

	// DefaultLanguage is the requested language code Excel lookups
	// resolve (to a stored code) when no per-call override is given
	// (§4.F).
	DefaultLanguage uint8 `toml:"default_language"`

	// HandleCacheSize bounds how many .datN descriptors stay open at
	// once (§5 "File handles").
	HandleCacheSize int `toml:"handle_cache_size"`
}

// Load parses a TOML file at path into a Config.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, xerrors.Resource("decode config", err)
	}
	if cfg.Root == "" {
		return nil, xerrors.Invalid("config", "root must not be empty")
	}
	return &cfg, nil
}

// ArchiveOptions turns this Config into the sqpack.Option slice New
// should be called with.
func (c *Config) ArchiveOptions(log *zap.Logger) []sqpack.Option {
	opts := []sqpack.Option{sqpack.WithLogger(log)}
	if c.Platform != "" {
		opts = append(opts, sqpack.WithPlatform(c.Platform))
	}
	if c.HandleCacheSize > 0 {
		opts = append(opts, sqpack.WithHandleCacheSize(c.HandleCacheSize))
	}
	return opts
}

// SheetOptions turns this Config into the excel.Option slice NewSheet
// should be called with.
func (c *Config) SheetOptions(log *zap.Logger) []excel.Option {
	opts := []excel.Option{excel.WithLogger(log)}
	if c.DefaultLanguage != 0 {
		opts = append(opts, excel.WithDefaultLanguage(c.DefaultLanguage))
	}
	return opts
}
