package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	c := DefaultConfig()
	assert.Equal(DefaultPlot, c.Plot.File)
	assert.False(c.Preview.Enabled)
	assert.Empty(c.Export.CSV)
	assert.NoError(c.Validate())
}

func TestSaveLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "invpend.yaml")

	c := DefaultConfig()
	c.Export.CSV = "out.csv"
	c.Preview.Enabled = true
	require.NoError(t, Save(path, c))

	out, err := Load(path)
	assert.NoError(err)
	assert.Equal(c, out)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	// missing values are defaulted
	path := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot:\n  file: step.svg\n"), 0644))
	c, err := Load(path)
	assert.NoError(err)
	assert.Equal("step.svg", c.Plot.File)
	assert.Equal(DefaultPlotWidth, c.Plot.Width)

	path = filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot: [\n"), 0644))
	_, err = Load(path)
	assert.Error(err)

	path = filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot:\n  width: -1\n"), 0644))
	_, err = Load(path)
	assert.True(errors.Is(err, ErrInvalidConfig))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(err)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		mod   func(c *Config)
		valid bool
	}{
		{mod: func(c *Config) {}, valid: true},
		{mod: func(c *Config) { c.Plot.File = ""; c.Plot.Width = 0 }, valid: true},
		{mod: func(c *Config) { c.Plot.File = "plot.gif" }, valid: false},
		{mod: func(c *Config) { c.Plot.Height = 0 }, valid: false},
		{mod: func(c *Config) { c.Preview.Enabled = true; c.Preview.Width = 0 }, valid: false},
		{mod: func(c *Config) { c.Preview.Width = 0 }, valid: true},
	}

	for _, tc := range testCases {
		c := DefaultConfig()
		tc.mod(c)
		err := c.Validate()
		if tc.valid {
			assert.NoError(err)
			continue
		}
		assert.True(errors.Is(err, ErrInvalidConfig))
	}
}
