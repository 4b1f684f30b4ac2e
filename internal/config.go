package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// DavisBaseConfig is the YAML-backed configuration for a single
// davisbase directory: where its table files live, what page size new
// tables are created with, and where the REPL keeps its history.
type DavisBaseConfig struct {
	Storage struct {
		Workdir    string `mapstructure:"workdir"`
		PageLength int    `mapstructure:"page_length"`
	} `mapstructure:"storage"`

	REPL struct {
		HistoryPath string `mapstructure:"history_path"`
		HistoryMax  int    `mapstructure:"history_max"`
	} `mapstructure:"repl"`
}

// DefaultPageLength is used when a loaded config omits storage.page_length.
const DefaultPageLength = 512

func LoadConfig(path string) (*DavisBaseConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("storage.page_length", DefaultPageLength)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg DavisBaseConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Storage.PageLength == 0 {
		cfg.Storage.PageLength = DefaultPageLength
	}

	return &cfg, nil
}
