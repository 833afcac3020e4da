package mosaic

import (
	"fmt"
	"os"
	"runtime"

	"go.yaml.in/yaml/v3"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/factory"
	"github.com/viant/sqlite-mosaic/index/kd"
	"github.com/viant/sqlite-mosaic/rgb"
)

// DefaultTileSize is the edge length in pixels of one mosaic tile.
const DefaultTileSize = 30

// Config holds catalog and tiling parameters.
type Config struct {
	TileSize int    `yaml:"tileSize"` // output pixels per target pixel edge, default 30
	Workers  int    `yaml:"workers"`  // parallel decoders and tile rows, default GOMAXPROCS
	Index    string `yaml:"index"`    // auto, kd or brute, default auto
	Search   string `yaml:"search"`   // recursive or stack, default recursive
	Palette  string `yaml:"palette"`  // palette table, default "palette"
	Database string `yaml:"database"` // SQLite DSN holding the palette
	ThumbDir string `yaml:"thumbDir"` // thumbnail directory scanned by Catalog

	Logger *Logger `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TileSize: DefaultTileSize,
		Workers:  runtime.GOMAXPROCS(0),
		Index:    string(index.KindAuto),
		Search:   kd.SearchRecursive.String(),
		Palette:  rgb.DefaultTable,
		Logger:   NoopLogger(),
	}
}

// OrDefault returns DefaultConfig if c is nil, otherwise normalizes c.
func (c *Config) OrDefault() *Config {
	if c == nil {
		return DefaultConfig()
	}
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Index == "" {
		c.Index = string(index.KindAuto)
	}
	if c.Search == "" {
		c.Search = kd.SearchRecursive.String()
	}
	if c.Palette == "" {
		c.Palette = rgb.DefaultTable
	}
	if c.Logger == nil {
		c.Logger = NoopLogger()
	}
	return c
}

// IndexOptions parses the index kind and search mode.
func (c *Config) IndexOptions() (factory.Options, error) {
	c = c.OrDefault()
	kind, err := index.ParseKind(c.Index)
	if err != nil {
		return factory.Options{}, err
	}
	mode, err := kd.ParseSearchMode(c.Search)
	if err != nil {
		return factory.Options{}, err
	}
	return factory.Options{Kind: kind, Search: mode}, nil
}

// LoadConfig reads a YAML configuration file; unset fields take defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mosaic: read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("mosaic: parse config %s: %w", path, err)
	}
	if _, err := cfg.OrDefault().IndexOptions(); err != nil {
		return nil, fmt.Errorf("mosaic: config %s: %w", path, err)
	}
	return cfg, nil
}
