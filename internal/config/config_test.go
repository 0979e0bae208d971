package config

import (
	"testing"
	"time"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "/home/user/Oceania/autobright.toml"

func writeConfig(t *testing.T, contents string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(contents), 0o644))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	fs := writeConfig(t, `
sensor = "/sys/bus/iio/devices/iio:device0/in_illuminance_raw"

[[displays]]
cmd = "/usr/local/bin/set-brightness"
`)

	cfg, err := Load(fs, testPath)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DefaultOffset)
	assert.Equal(t, 5*time.Millisecond, cfg.Interval)
	assert.Equal(t, 1, cfg.Divide)
	assert.Equal(t, 0, cfg.Minimum)
	assert.Equal(t, 100, cfg.Maximum)
	assert.Equal(t, NotifierDBus, cfg.Notifier)
	assert.True(t, cfg.Tray)
	assert.False(t, cfg.NotifyOnDispatch)
	assert.Equal(t, 5, cfg.Step)
	require.Len(t, cfg.Displays, 1)
	assert.Equal(t, "/usr/local/bin/set-brightness", cfg.Displays[0].Cmd)
}

func TestLoad_AllFields(t *testing.T) {
	fs := writeConfig(t, `
default_offset = -15
interval = 250
divide = 4
sensor = "/tmp/lux"
minimum = 10
maximum = 90
notifier = "zenity"
notify_on_dispatch = true
tray = false
step = 2
log_level = "debug"

[[displays]]
cmd = "ddc-left"

[[displays]]
cmd = "ddc-right"
`)

	cfg, err := Load(fs, testPath)
	require.NoError(t, err)

	assert.Equal(t, -15, cfg.DefaultOffset)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, 4, cfg.Divide)
	assert.Equal(t, "/tmp/lux", cfg.Sensor)
	assert.Equal(t, 10, cfg.Minimum)
	assert.Equal(t, 90, cfg.Maximum)
	assert.Equal(t, NotifierZenity, cfg.Notifier)
	assert.True(t, cfg.NotifyOnDispatch)
	assert.False(t, cfg.Tray)
	assert.Equal(t, 2, cfg.Step)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []Display{{Cmd: "ddc-left"}, {Cmd: "ddc-right"}}, cfg.Displays)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name: "divide zero rejected at load time",
			contents: `
sensor = "/tmp/lux"
divide = 0
displays = []
`,
			wantErr: "divide must not be 0",
		},
		{
			name: "missing sensor",
			contents: `
[[displays]]
cmd = "x"
`,
			wantErr: "sensor path is required",
		},
		{
			name:     "missing displays",
			contents: `sensor = "/tmp/lux"`,
			wantErr:  "displays list is required",
		},
		{
			name: "minimum above maximum",
			contents: `
sensor = "/tmp/lux"
minimum = 80
maximum = 20
displays = []
`,
			wantErr: "must not exceed maximum",
		},
		{
			name: "negative minimum",
			contents: `
sensor = "/tmp/lux"
minimum = -1
displays = []
`,
			wantErr: "minimum must not be negative",
		},
		{
			name: "negative interval",
			contents: `
sensor = "/tmp/lux"
interval = -5
displays = []
`,
			wantErr: "interval must not be negative",
		},
		{
			name: "empty display command",
			contents: `
sensor = "/tmp/lux"

[[displays]]
cmd = ""
`,
			wantErr: "displays[0].cmd must not be empty",
		},
		{
			name: "unknown notifier",
			contents: `
sensor = "/tmp/lux"
notifier = "carrier-pigeon"
displays = []
`,
			wantErr: "unknown notifier",
		},
		{
			name:     "unparseable toml",
			contents: `sensor = = "/tmp/lux"`,
			wantErr:  "failed to read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := writeConfig(t, tt.contents)
			cfg, err := Load(fs, testPath)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errdefs.IsType(err, errdefs.ErrTypeConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), testPath)
	require.Error(t, err)
	assert.True(t, errdefs.IsType(err, errdefs.ErrTypeConfig))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AUTOBRIGHT_DEFAULT_OFFSET", "7")

	fs := writeConfig(t, `
sensor = "/tmp/lux"
displays = []
`)
	cfg, err := Load(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DefaultOffset)
	assert.Empty(t, cfg.Displays)
}

func TestLoad_SensorFromEnv(t *testing.T) {
	t.Setenv("AUTOBRIGHT_SENSOR", "/sys/bus/iio/devices/iio:device0/in_illuminance_raw")

	fs := writeConfig(t, `
displays = [{ cmd = "ddcutil-set" }]
`)
	cfg, err := Load(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, "/sys/bus/iio/devices/iio:device0/in_illuminance_raw", cfg.Sensor)
}

func TestDefaultPath(t *testing.T) {
	t.Run("xdg config home wins", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		t.Setenv("HOME", "/home/user")
		path, err := DefaultPath()
		require.NoError(t, err)
		assert.Equal(t, "/xdg/Oceania/autobright.toml", path)
	})

	t.Run("falls back to home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/user")
		path, err := DefaultPath()
		require.NoError(t, err)
		assert.Equal(t, "/home/user/Oceania/autobright.toml", path)
	})

	t.Run("neither set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "")
		_, err := DefaultPath()
		assert.ErrorIs(t, err, errdefs.ErrNoConfigHome)
	})
}
