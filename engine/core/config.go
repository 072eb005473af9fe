package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

/** @brief The configuration for the content manager. */
type ContentConfig struct {
	/** @brief The directory compiled assets are loaded from. */
	RootDir string `toml:"root_dir"`
	/** @brief The file extension appended to asset names. */
	Extension string `toml:"extension"`
	/** @brief Number of workers serving asynchronous loads. */
	Workers int `toml:"workers"`
	/** @brief Size of the pending asynchronous load queue. */
	QueueSize int `toml:"queue_size"`
	/** @brief Evict cached assets when their files change on disk. */
	Watch bool `toml:"watch"`
}

type Config struct {
	LogLevel string        `toml:"log_level"`
	Content  ContentConfig `toml:"content"`
}

const DefaultExtension = ".anc"

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Content: ContentConfig{
			RootDir:   "assets",
			Extension: DefaultExtension,
			Workers:   2,
			QueueSize: 64,
		},
	}
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Content.Extension == "" {
		cfg.Content.Extension = DefaultExtension
	}
	return cfg, nil
}
