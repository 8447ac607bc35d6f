package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archmap/pkg/cache"
	"github.com/matzehuels/archmap/pkg/server/prefs"
	"github.com/matzehuels/archmap/pkg/source"
	"github.com/matzehuels/archmap/pkg/treemap"
)

// Config is the optional archmap.toml configuration file. Flags override
// file values; the file overrides built-in defaults.
//
// Example:
//
//	[project]
//	folder_path = "/src/myproject"
//	code_file_endings = ["go"]
//	language_id = "go"
//
//	[layout]
//	padding = 4.0
//	font_size = 12.0
//	min_width = 40.0
//	min_height = 30.0
//
//	[frame]
//	width = 1280.0
//	height = 800.0
//
//	[lsp]
//	addr = "127.0.0.1:9000"
type Config struct {
	Project source.ProjectLocation `toml:"project"`
	Layout  treemap.Constants      `toml:"layout"`
	Frame   FrameConfig            `toml:"frame"`
	LSP     LSPConfig              `toml:"lsp"`
	Server  ServerConfig           `toml:"server"`
	Redis   cache.RedisConfig      `toml:"redis"`
	Mongo   prefs.MongoConfig      `toml:"mongo"`
}

// FrameConfig sets the root rectangle for the layout.
type FrameConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LSPConfig configures the optional language server connection.
type LSPConfig struct {
	// Addr is the TCP address of a running language server. Empty falls
	// back to local tree-sitter extraction for Go projects.
	Addr string `toml:"addr"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads a TOML config file. A missing path returns an empty
// config so flags alone suffice.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
