// Package cliutil holds the flags and World setup shared by the lv2 tools.
package cliutil

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/lv2-go/lv2"
)

// AddWorldFlags registers --config, --lv2-path, --lang and --verbose.
func AddWorldFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("lv2-path", "", "Bundle search path (overrides LV2_PATH)")
	flags.String("lang", "", "Language for translated strings (overrides LANG)")
	flags.BoolP("verbose", "v", false, "Log bundle loading details")
}

// OpenWorld builds a World from the configuration file, the environment
// and the command-line flags, in increasing priority, and loads every
// bundle on the search path.
func OpenWorld(cmd *cobra.Command) (*lv2.World, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	var cfg *lv2.Config
	if configPath != "" {
		var err error
		if cfg, err = lv2.LoadConfig(configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = lv2.ConfigFromEnv()
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if cfg.LogLevel != "" {
		level, _ := logrus.ParseLevel(cfg.LogLevel)
		logger.SetLevel(level)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	opts = append(opts, lv2.OptLogger(logger))

	if path, _ := flags.GetString("lv2-path"); path != "" {
		opts = append(opts, lv2.OptLV2Path(path))
	}
	if lang, _ := flags.GetString("lang"); lang != "" {
		opts = append(opts, lv2.OptLang(lang))
	}

	world := lv2.New(opts...)
	world.LoadAll()
	return world, nil
}

// PluginArg resolves a plugin URI argument.
func PluginArg(world *lv2.World, uri string) (*lv2.Plugin, error) {
	p := world.PluginByURI(uri)
	if p == nil {
		return nil, fmt.Errorf("plugin <%s> not found", uri)
	}
	return p, nil
}
