package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML run configuration. Values only fill
// in flags the user left at their defaults; explicit flags win.
type fileConfig struct {
	Dir      string `yaml:"dir"`
	FilesOut string `yaml:"files_out"`
	AggOut   string `yaml:"agg_out"`
}

func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var cfg fileConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &cfg, nil
}

func (fc *fileConfig) apply(flags *pflag.FlagSet, cfg mergeConfig) mergeConfig {
	if fc.Dir != "" && !flags.Changed("dir") {
		cfg.dir = fc.Dir
	}

	if fc.FilesOut != "" && !flags.Changed("files-out") {
		cfg.filesOut = fc.FilesOut
	}

	if fc.AggOut != "" && !flags.Changed("agg-out") {
		cfg.aggOut = fc.AggOut
	}

	return cfg
}
