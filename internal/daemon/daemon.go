// Package daemon wires the control loop, the D-Bus service and the tray menu
// around one shared offset and runs them until shutdown.
package daemon

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/oceania/autobright/internal/config"
	"github.com/oceania/autobright/internal/controller"
	"github.com/oceania/autobright/internal/display"
	"github.com/oceania/autobright/internal/log"
	"github.com/oceania/autobright/internal/notify"
	"github.com/oceania/autobright/internal/offset"
	"github.com/oceania/autobright/internal/sensor"
	"github.com/oceania/autobright/internal/server"
	"github.com/oceania/autobright/internal/tray"
	"github.com/spf13/afero"
)

type rpcService interface {
	Start(conn *dbus.Conn) error
	Stop()
}

type menu interface {
	OnQuit(fn func())
	Run()
	Quit()
}

// Deps are the outside collaborators. Zero fields get production defaults.
type Deps struct {
	Fs         afero.Fs
	Conn       *dbus.Conn
	Dispatcher display.Dispatcher
	Notifier   notify.Notifier
}

type Daemon struct {
	cfg   *config.Config
	conn  *dbus.Conn
	state *offset.State
	loop  *controller.Loop
	rpc   rpcService
	menu  menu
}

func New(cfg *config.Config, deps Deps) *Daemon {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = display.NewExecDispatcher()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.New(cfg.Notifier, deps.Conn)
	}

	state := offset.New(cfg.DefaultOffset)
	loop := controller.New(cfg, sensor.NewFile(deps.Fs, cfg.Sensor), state, deps.Dispatcher, deps.Notifier)

	d := &Daemon{
		cfg:   cfg,
		conn:  deps.Conn,
		state: state,
		loop:  loop,
		rpc:   server.New(state, deps.Notifier, loop),
	}
	if cfg.Tray {
		d.menu = tray.New(state, deps.Notifier, cfg.Step)
	}
	return d
}

// State exposes the shared offset, mainly for tests and diagnostics.
func (d *Daemon) State() *offset.State {
	return d.state
}

// Run registers the D-Bus service and then runs the control loop alongside
// the tray menu. When the tray is enabled Run must be called on the main
// goroutine. It returns when ctx is cancelled, the tray quits or the loop
// fails; only a loop failure is reported as an error.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.rpc.Start(d.conn); err != nil {
		return err
	}
	defer d.rpc.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		loopErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := d.loop.Run(ctx); err != nil {
			log.Errorf("Control loop failed: %v", err)
			loopErr = err
		}
	}()

	if d.menu != nil {
		d.menu.OnQuit(func() {
			log.Info("Quit requested from tray")
			cancel()
		})
		go func() {
			<-ctx.Done()
			d.menu.Quit()
		}()
		d.menu.Run()
		cancel()
	} else {
		<-ctx.Done()
	}

	wg.Wait()
	return loopErr
}
