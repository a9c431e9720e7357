// Package config loads storecore settings from an INI or TOML file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/ini.v1"

	"storecore/pkg/dberror"
	"storecore/pkg/logging"
)

const (
	DefaultPageSize        = 4096
	DefaultBufferPoolPages = 50
	DefaultCatalogFile     = "catalog.txt"
)

// Config holds every tunable the engine reads at startup.
type Config struct {
	DataDir         string
	CatalogFile     string
	PageSize        int
	BufferPoolPages int

	LogLevel  logging.LogLevel
	LogFormat string
	LogPath   string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:         ".",
		CatalogFile:     DefaultCatalogFile,
		PageSize:        DefaultPageSize,
		BufferPoolPages: DefaultBufferPoolPages,
		LogLevel:        logging.LevelInfo,
		LogFormat:       "text",
	}
}

// Load reads path on top of Default. Files ending in .toml are parsed as
// TOML, everything else as INI with [storage] and [log] sections.
func Load(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = cfg.loadTOML(path)
	} else {
		err = cfg.loadINI(path)
	}
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(filepath.Dir(path), cfg.DataDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) loadINI(path string) error {
	raw, err := ini.Load(path)
	if err != nil {
		return dberror.Configuration("CONFIG_PARSE", "cannot parse %s: %v", path, err)
	}

	cfg.parseStorageSection(raw.Section("storage"))
	cfg.parseLogSection(raw.Section("log"))
	return nil
}

func (cfg *Config) parseStorageSection(section *ini.Section) {
	cfg.DataDir = section.Key("data_dir").MustString(cfg.DataDir)
	cfg.CatalogFile = section.Key("catalog").MustString(cfg.CatalogFile)
	cfg.PageSize = section.Key("page_size").MustInt(cfg.PageSize)
	cfg.BufferPoolPages = section.Key("buffer_pool_pages").MustInt(cfg.BufferPoolPages)
}

func (cfg *Config) parseLogSection(section *ini.Section) {
	if section.HasKey("level") {
		cfg.LogLevel = logging.ParseLevel(section.Key("level").String())
	}
	cfg.LogFormat = section.Key("format").MustString(cfg.LogFormat)
	cfg.LogPath = section.Key("path").MustString(cfg.LogPath)
}

type tomlFile struct {
	Storage struct {
		DataDir         string `toml:"data_dir"`
		Catalog         string `toml:"catalog"`
		PageSize        int    `toml:"page_size"`
		BufferPoolPages int    `toml:"buffer_pool_pages"`
	} `toml:"storage"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		Path   string `toml:"path"`
	} `toml:"log"`
}

func (cfg *Config) loadTOML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return dberror.Configuration("CONFIG_READ", "cannot read %s: %v", path, err)
	}

	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return dberror.Configuration("CONFIG_PARSE", "cannot parse %s: %v", path, err)
	}

	if f.Storage.DataDir != "" {
		cfg.DataDir = f.Storage.DataDir
	}
	if f.Storage.Catalog != "" {
		cfg.CatalogFile = f.Storage.Catalog
	}
	if f.Storage.PageSize != 0 {
		cfg.PageSize = f.Storage.PageSize
	}
	if f.Storage.BufferPoolPages != 0 {
		cfg.BufferPoolPages = f.Storage.BufferPoolPages
	}
	if f.Log.Level != "" {
		cfg.LogLevel = logging.ParseLevel(f.Log.Level)
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	if f.Log.Path != "" {
		cfg.LogPath = f.Log.Path
	}
	return nil
}

// Validate rejects settings the storage layer cannot run with.
func (cfg *Config) Validate() error {
	if cfg.PageSize <= 0 {
		return dberror.Configuration("INVALID_PAGE_SIZE", "page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.BufferPoolPages <= 0 {
		return dberror.Configuration("INVALID_POOL_SIZE", "buffer pool must hold at least one page, got %d", cfg.BufferPoolPages)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return dberror.Configuration("INVALID_LOG_FORMAT", "unknown log format %q", cfg.LogFormat)
	}
	return nil
}

// CatalogPath is the catalog file resolved against DataDir.
func (cfg *Config) CatalogPath() string {
	if filepath.IsAbs(cfg.CatalogFile) {
		return cfg.CatalogFile
	}
	return filepath.Join(cfg.DataDir, cfg.CatalogFile)
}

// LoggingConfig converts the log settings for logging.Init.
func (cfg *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		Format:     cfg.LogFormat,
	}
}
