package display

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	calls []string
	fail  map[string]bool
}

func (r *recordingDispatcher) Dispatch(target Target, value int) error {
	r.calls = append(r.calls, target.Cmd)
	if r.fail[target.Cmd] {
		return errors.New("spawn failed")
	}
	return nil
}

func TestDispatchAll_ContinuesPastFailures(t *testing.T) {
	d := &recordingDispatcher{fail: map[string]bool{"second": true}}
	targets := []Target{{Cmd: "first"}, {Cmd: "second"}, {Cmd: "third"}}

	errs := DispatchAll(d, targets, 42)

	assert.Equal(t, []string{"first", "second", "third"}, d.calls)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "spawn failed")
}

func TestDispatchAll_NoTargets(t *testing.T) {
	d := &recordingDispatcher{}
	assert.Empty(t, DispatchAll(d, nil, 10))
	assert.Empty(t, d.calls)
}

func TestExecDispatcher_PassesValueAsArgument(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	script := filepath.Join(dir, "set-brightness")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+out+"\n"), 0o755))

	d := NewExecDispatcher()
	require.NoError(t, d.Dispatch(Target{Cmd: script}, 73))
	d.Wait()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "73", strings.TrimSpace(string(data)))
}

func TestExecDispatcher_DoesNotWaitForExit(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "slow")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 1\n"), 0o755))

	d := NewExecDispatcher()
	start := time.Now()
	require.NoError(t, d.Dispatch(Target{Cmd: script}, 1))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	d.Wait()
}

func TestExecDispatcher_SpawnFailure(t *testing.T) {
	d := NewExecDispatcher()
	err := d.Dispatch(Target{Cmd: filepath.Join(t.TempDir(), "does-not-exist")}, 5)
	require.Error(t, err)
	assert.True(t, errdefs.IsType(err, errdefs.ErrTypeDispatch))
	assert.Contains(t, err.Error(), "failed to start")
}
