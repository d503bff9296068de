package lv2

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/lv2-go/rdf"
)

// Config is the file and environment form of Options.
//
// Example file:
//
//	lv2_path: ~/.lv2:/usr/lib/lv2
//	lang: fr_CA.UTF-8
//	filter_lang: true
//	dyn_manifest: false
//	log_level: debug
//	decode:
//	  max_line_bytes: 1048576
type Config struct {
	LV2Path     string       `yaml:"lv2_path"`
	Lang        string       `yaml:"lang"`
	FilterLang  *bool        `yaml:"filter_lang"`
	DynManifest *bool        `yaml:"dyn_manifest"`
	LogLevel    string       `yaml:"log_level"`
	Decode      DecodeConfig `yaml:"decode"`
}

// DecodeConfig holds Turtle reader limits. Zero keeps the default.
type DecodeConfig struct {
	MaxLineBytes      int `yaml:"max_line_bytes"`
	MaxStatementBytes int `yaml:"max_statement_bytes"`
}

// LoadConfig reads a YAML configuration file. Variables from the
// environment fill fields the file leaves empty.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lv2: read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("lv2: parse config %s: %w", path, err)
	}
	cfg.fillFromEnv()
	return cfg, nil
}

// ConfigFromEnv builds a configuration from LV2_PATH, LANG and
// LV2_DYN_MANIFEST.
func ConfigFromEnv() *Config {
	cfg := &Config{}
	cfg.fillFromEnv()
	return cfg
}

func (c *Config) fillFromEnv() {
	if c.LV2Path == "" {
		c.LV2Path = os.Getenv("LV2_PATH")
	}
	if c.Lang == "" {
		c.Lang = os.Getenv("LANG")
	}
	if c.DynManifest == nil {
		if v, err := strconv.ParseBool(os.Getenv("LV2_DYN_MANIFEST")); err == nil {
			c.DynManifest = &v
		}
	}
}

// Options converts the configuration to World options. A logger is only
// installed when LogLevel is set.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.LV2Path != "" {
		opts = append(opts, OptLV2Path(c.LV2Path))
	}
	if c.Lang != "" {
		opts = append(opts, OptLang(c.Lang))
	}
	if c.FilterLang != nil {
		opts = append(opts, OptFilterLang(*c.FilterLang))
	}
	if c.DynManifest != nil {
		opts = append(opts, OptDynManifest(*c.DynManifest))
	}
	if c.LogLevel != "" {
		level, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("lv2: config log_level: %w", err)
		}
		logger := logrus.New()
		logger.SetLevel(level)
		opts = append(opts, OptLogger(logger))
	}
	if c.Decode != (DecodeConfig{}) {
		decode := rdf.DefaultDecodeOptions()
		if c.Decode.MaxLineBytes != 0 {
			decode.MaxLineBytes = c.Decode.MaxLineBytes
		}
		if c.Decode.MaxStatementBytes != 0 {
			decode.MaxStatementBytes = c.Decode.MaxStatementBytes
		}
		opts = append(opts, OptDecodeOptions(decode))
	}
	return opts, nil
}
