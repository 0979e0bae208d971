// Package sensor reads the raw ambient light value the control loop works from.
package sensor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/spf13/afero"
)

// Reader returns one raw sensor sample per call.
type Reader interface {
	Read() (int, error)
}

// File reads a text file holding a single signed integer, such as an IIO
// illuminance attribute under /sys/bus/iio.
type File struct {
	fs   afero.Fs
	path string
}

func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

func (f *File) Path() string {
	return f.path
}

// Read reads the whole file, trims surrounding whitespace and parses the rest
// as a base-10 integer. Both failures are reported as sensor errors.
func (f *File) Read() (int, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return 0, errdefs.Wrap(errdefs.ErrTypeSensor, fmt.Sprintf("failed to read sensor %s", f.path), err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errdefs.Wrap(errdefs.ErrTypeSensor, fmt.Sprintf("failed to parse sensor %s", f.path), err)
	}
	return value, nil
}
