package lv2

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/geoknoesis/lv2-go/rdf"
)

// Options configures a World.
type Options struct {
	// LV2Path overrides the LV2_PATH environment variable.
	LV2Path string
	// Lang is the language used to pick translated strings. An empty
	// value takes the language from the environment.
	Lang string
	// FilterLang enables language filtering of string literals.
	FilterLang bool
	// DynManifest enables libraries that generate manifest data.
	DynManifest bool
	// Logger receives diagnostics. Nil uses the logrus standard logger.
	Logger *logrus.Logger
	// OpenLibrary opens plugin binaries. Nil uses Go plugins.
	OpenLibrary LibraryOpener
	// Decode tunes the Turtle reader.
	Decode rdf.DecodeOptions
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Lang:        os.Getenv("LANG"),
		FilterLang:  true,
		DynManifest: true,
		Decode:      rdf.DefaultDecodeOptions(),
	}
}

// OptLV2Path sets the bundle search path.
func OptLV2Path(path string) Option {
	return func(opts *Options) {
		opts.LV2Path = path
	}
}

// OptLang sets the language used for string selection.
func OptLang(lang string) Option {
	return func(opts *Options) {
		opts.Lang = lang
	}
}

// OptFilterLang enables or disables language filtering.
func OptFilterLang(enabled bool) Option {
	return func(opts *Options) {
		opts.FilterLang = enabled
	}
}

// OptDynManifest enables or disables dynamic manifests.
func OptDynManifest(enabled bool) Option {
	return func(opts *Options) {
		opts.DynManifest = enabled
	}
}

// OptLogger sets the logger.
func OptLogger(logger *logrus.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// OptLibraryOpener replaces the plugin binary loader.
func OptLibraryOpener(open LibraryOpener) Option {
	return func(opts *Options) {
		opts.OpenLibrary = open
	}
}

// OptDecodeOptions sets the Turtle reader limits.
func OptDecodeOptions(decode rdf.DecodeOptions) Option {
	return func(opts *Options) {
		opts.Decode = decode
	}
}
