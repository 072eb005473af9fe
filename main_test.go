package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
[[occluders]]
name = "wall"
vertices = [[0.0, 0.0, 0.0], [1.0, 0.0, 0.0], [0.0, 1.0, 0.0]]
indices = [0, 1, 2]

[scene]
name = "yard"

  [[scene.children]]
  name = "shed"
  position = [1.0, 2.0, 3.0]
  occluder = "wall"

  [[scene.children]]
  name = "oak"
  kind = "lod"

    [[scene.children.levels]]
    max_distance = 30.0
    node = { name = "oak-near" }
`

func TestBuildThenDump(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "yard.toml")
	out := filepath.Join(dir, "out", "yard.anc")
	require.NoError(t, os.WriteFile(src, []byte(testScene), 0o644))

	require.NoError(t, runBuild([]string{src, out}))

	var buf bytes.Buffer
	require.NoError(t, runDump([]string{out}, &buf))
	dump := buf.String()
	assert.Contains(t, dump, ": scene-node")
	assert.Contains(t, dump, "yard pos=[0.00 0.00 0.00]")
	assert.Contains(t, dump, "  shed pos=[1.00 2.00 3.00] visible=true occluder=wall")
	assert.Contains(t, dump, "  oak pos=[0.00 0.00 0.00] visible=true levels=1")
	assert.Contains(t, dump, "    oak-near")
}

func TestBuildRejectsBadSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.toml")
	out := filepath.Join(dir, "bad.anc")
	require.NoError(t, os.WriteFile(src, []byte("[scene]\nkind = \"lod\""), 0o644))

	assert.Error(t, runBuild([]string{src, out}))
	assert.NoFileExists(t, out)
	assert.Error(t, runBuild([]string{src}))
}

func TestDumpMissingFile(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runDump([]string{filepath.Join(t.TempDir(), "nope.anc")}, &buf))
}

func TestParseWatchArgs(t *testing.T) {
	defaults := core.DefaultConfig().Content
	tests := []struct {
		name    string
		args    []string
		dir     string
		preload []string
		wantErr bool
	}{
		{"defaults", nil, defaults.RootDir, nil, false},
		{"dir only", []string{"assets"}, "assets", nil, false},
		{"load after dir", []string{"assets", "-load", "forest,brick"}, "assets", []string{"forest", "brick"}, false},
		{"load before dir", []string{"-load", "forest", "assets"}, "assets", []string{"forest"}, false},
		{"load without dir", []string{"-load", " forest , ,brick"}, defaults.RootDir, []string{"forest", "brick"}, false},
		{"extra positional", []string{"assets", "more"}, "", nil, true},
		{"extra after flags", []string{"assets", "-load", "a", "more"}, "", nil, true},
		{"unknown flag", []string{"-bogus"}, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, preload, err := parseWatchArgs(tt.args, defaults)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, cfg.RootDir)
			assert.True(t, cfg.Watch)
			assert.Equal(t, tt.preload, preload)
		})
	}
}

func TestRunSample(t *testing.T) {
	dir := t.TempDir()
	cfg := core.DefaultConfig()
	require.NoError(t, runSample([]string{dir}, cfg))
	assert.FileExists(t, filepath.Join(dir, "scenes", "testbed"+core.DefaultExtension))

	var buf bytes.Buffer
	require.NoError(t, runDump([]string{filepath.Join(dir, "materials", "paving"+core.DefaultExtension)}, &buf))
	assert.Contains(t, buf.String(), "pass forward effect=Shader.Builtin.Material")

	assert.Error(t, runSample([]string{dir, "extra"}, cfg))
}
