package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animac.toml")
	data := `
log_level = "debug"

[content]
root_dir = "build/content"
workers = 4
watch = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "build/content", cfg.Content.RootDir)
	assert.Equal(t, 4, cfg.Content.Workers)
	assert.True(t, cfg.Content.Watch)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultExtension, cfg.Content.Extension)
	assert.Equal(t, 64, cfg.Content.QueueSize)
}

func TestLoadConfigRejectsBrokenToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = "), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, SetLogLevel("warn"))
	assert.Error(t, SetLogLevel("chatty"))
	assert.NoError(t, SetLogLevel("info"))
}

func TestIdentifiersReuseReleasedSlots(t *testing.T) {
	ids := NewIdentifiers(2)

	a := ids.Acquire("a")
	b := ids.Acquire("b")
	c := ids.Acquire("c")
	assert.Equal(t, []uint32{0, 1, 2}, []uint32{a, b, c})

	require.NoError(t, ids.Release(b))
	assert.Nil(t, ids.Owner(b))
	assert.Equal(t, b, ids.Acquire("d"))
	assert.Equal(t, "d", ids.Owner(b))

	assert.Error(t, ids.Release(42))
}

func TestLoadMetricsRollingAverage(t *testing.T) {
	lm := NewLoadMetrics()
	lm.RecordLoad(10 * time.Millisecond)
	lm.RecordLoad(30 * time.Millisecond)
	lm.RecordFailure()
	lm.RecordEviction()

	s := lm.Snapshot()
	assert.Equal(t, uint64(2), s.Loads)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, uint64(1), s.Evicted)
	assert.Equal(t, 20*time.Millisecond, s.Average)
	assert.Equal(t, 30*time.Millisecond, s.Slowest)
}

func TestClockElapsed(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	assert.Greater(t, elapsed, time.Duration(0))

	// stopped clocks do not advance
	c.Update()
	assert.Equal(t, elapsed, c.Elapsed())
}
