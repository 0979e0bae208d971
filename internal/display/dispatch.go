package display

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/oceania/autobright/internal/errdefs"
	"github.com/oceania/autobright/internal/log"
)

// Target is an external display-control command. It is invoked with the
// brightness as its only argument.
type Target struct {
	Cmd string
}

// Dispatcher hands a brightness value to one display target. Only a failure
// to start the target is reported; the target's own outcome is not awaited.
type Dispatcher interface {
	Dispatch(target Target, value int) error
}

// ExecDispatcher spawns one process per call and reaps it in the background.
type ExecDispatcher struct {
	wg sync.WaitGroup
}

func NewExecDispatcher() *ExecDispatcher {
	return &ExecDispatcher{}
}

func (d *ExecDispatcher) Dispatch(target Target, value int) error {
	cmd := exec.Command(target.Cmd, strconv.Itoa(value))
	if err := cmd.Start(); err != nil {
		return errdefs.Wrap(errdefs.ErrTypeDispatch, fmt.Sprintf("failed to start %s", target.Cmd), err)
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := cmd.Wait(); err != nil {
			log.Debugf("Display command %s %d exited: %v", target.Cmd, value, err)
		}
	}()
	return nil
}

// Wait blocks until every process started so far has exited.
func (d *ExecDispatcher) Wait() {
	d.wg.Wait()
}

// DispatchAll sends value to every target in order. A failing target does not
// prevent the remaining ones from being tried; all failures are returned.
func DispatchAll(d Dispatcher, targets []Target, value int) []error {
	var errs []error
	for _, t := range targets {
		if err := d.Dispatch(t, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
