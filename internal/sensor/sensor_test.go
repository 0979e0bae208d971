package sensor

import (
	"testing"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorPath = "/sys/bus/iio/devices/iio:device0/in_illuminance_raw"

func TestFile_Read(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     int
	}{
		{name: "plain", contents: "50", want: 50},
		{name: "trailing newline", contents: "1234\n", want: 1234},
		{name: "surrounding whitespace", contents: "  \t42 \n", want: 42},
		{name: "negative", contents: "-7\n", want: -7},
		{name: "zero", contents: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, sensorPath, []byte(tt.contents), 0o644))

			got, err := NewFile(fs, sensorPath).Read()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_ReadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFile(afero.NewMemMapFs(), sensorPath).Read()
		require.Error(t, err)
		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeSensor))
		assert.Contains(t, err.Error(), "failed to read sensor")
	})

	for _, contents := range []string{"", "abc", "12.5", "1 2"} {
		t.Run("unparseable "+contents, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, sensorPath, []byte(contents), 0o644))

			_, err := NewFile(fs, sensorPath).Read()
			require.Error(t, err)
			assert.True(t, errdefs.IsType(err, errdefs.ErrTypeSensor))
			assert.Contains(t, err.Error(), "failed to parse sensor")
		})
	}
}

func TestFile_ReadsFreshValueEachCall(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFile(fs, sensorPath)

	require.NoError(t, afero.WriteFile(fs, sensorPath, []byte("10"), 0o644))
	v, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	require.NoError(t, afero.WriteFile(fs, sensorPath, []byte("20"), 0o644))
	v, err = s.Read()
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}
