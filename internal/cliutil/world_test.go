package cliutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `@prefix lv2: <http://lv2plug.in/ns/lv2core#> .
<http://example.org/amp> a lv2:Plugin ;
    lv2:binary <amp.so> .
`

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	AddWorldFlags(cmd)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestOpenWorldFromFlags(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "amp.lv2")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "manifest.ttl"), []byte(manifest), 0o644))

	cmd := newCommand(t, "--lv2-path", dir, "--lang", "fr_FR.UTF-8", "-v")
	world, err := OpenWorld(cmd)
	require.NoError(t, err)
	defer world.Close()

	assert.Equal(t, 1, world.Plugins().Len())
	assert.Equal(t, "fr-fr", world.Lang())
	assert.Equal(t, "debug", world.Logger().Logger.GetLevel().String())

	p, err := PluginArg(world, "http://example.org/amp")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/amp", p.URI().String())

	_, err = PluginArg(world, "http://example.org/missing")
	assert.Error(t, err)
}

func TestOpenWorldFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "lv2.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("lv2_path: "+dir+"\nlog_level: error\n"), 0o644))

	world, err := OpenWorld(newCommand(t, "--config", cfg))
	require.NoError(t, err)
	defer world.Close()
	assert.Equal(t, 0, world.Plugins().Len())
	assert.Equal(t, "error", world.Logger().Logger.GetLevel().String())

	_, err = OpenWorld(newCommand(t, "--config", filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}
