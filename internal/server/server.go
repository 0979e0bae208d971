// Package server exports the offset adjustment interface on the D-Bus
// session bus.
package server

import (
	"fmt"
	"math"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/oceania/autobright/internal/errdefs"
	"github.com/oceania/autobright/internal/log"
	"github.com/oceania/autobright/internal/notify"
	"github.com/oceania/autobright/internal/offset"
)

const (
	ServiceName   = "org.oceania.Autobright"
	ObjectPath    = dbus.ObjectPath("/org/oceania/Autobright")
	InterfaceName = "org.oceania.AutobrightServer"

	SignalOffsetChanged = InterfaceName + ".OffsetChanged"

	replyOK       = "Ok"
	subscriberKey = "dbus-server"
)

const introspectXML = `
<node name="` + string(ObjectPath) + `">
  <interface name="` + InterfaceName + `">
    <method name="Increase">
      <arg name="value" type="i" direction="in"/>
      <arg name="status" type="s" direction="out"/>
    </method>
    <method name="Decrease">
      <arg name="value" type="i" direction="in"/>
      <arg name="status" type="s" direction="out"/>
    </method>
    <method name="Offset">
      <arg name="offset" type="i" direction="out"/>
    </method>
    <method name="Brightness">
      <arg name="brightness" type="i" direction="out"/>
    </method>
    <signal name="OffsetChanged">
      <arg name="offset" type="i"/>
    </signal>
  </interface>
  ` + introspect.IntrospectDataString + `
</node>
`

// BrightnessSource reports the last brightness sent to the displays.
type BrightnessSource interface {
	Last() int
}

// Server implements the org.oceania.AutobrightServer interface. Every
// exported method returning *dbus.Error is callable over the bus.
type Server struct {
	state      *offset.State
	notifier   notify.Notifier
	brightness BrightnessSource

	conn   *dbus.Conn
	connMu sync.RWMutex
	wg     sync.WaitGroup
}

func New(state *offset.State, notifier notify.Notifier, brightness BrightnessSource) *Server {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Server{
		state:      state,
		notifier:   notifier,
		brightness: brightness,
	}
}

// Start exports the service on conn and claims the well known name. Failing
// to get primary ownership means another instance is running.
func (s *Server) Start(conn *dbus.Conn) error {
	if conn == nil {
		return errdefs.ErrNoSessionBus
	}

	if err := conn.Export(s, ObjectPath, InterfaceName); err != nil {
		return errdefs.Wrap(errdefs.ErrTypeBus, "failed to export server", err)
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return errdefs.Wrap(errdefs.ErrTypeBus, "failed to export introspectable", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrTypeBus, "failed to request name", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errdefs.ErrNameTaken
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	changes := s.state.Subscribe(subscriberKey)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for value := range changes {
			s.emitOffsetChanged(value)
		}
	}()

	log.Infof("D-Bus service %s exported at %s", ServiceName, ObjectPath)
	return nil
}

// Stop releases the name and stops emitting signals. The connection itself
// belongs to the caller.
func (s *Server) Stop() {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	if conn == nil {
		return
	}

	s.state.Unsubscribe(subscriberKey)
	s.wg.Wait()

	if _, err := conn.ReleaseName(ServiceName); err != nil {
		log.Warnf("Failed to release %s: %v", ServiceName, err)
	}
	_ = conn.Export(nil, ObjectPath, InterfaceName)
	_ = conn.Export(nil, ObjectPath, "org.freedesktop.DBus.Introspectable")
}

// Increase adds value to the offset.
func (s *Server) Increase(value int32) (string, *dbus.Error) {
	return s.adjust(int(value)), nil
}

// Decrease subtracts value from the offset.
func (s *Server) Decrease(value int32) (string, *dbus.Error) {
	return s.adjust(-int(value)), nil
}

func (s *Server) Offset() (int32, *dbus.Error) {
	return toWire(s.state.Read()), nil
}

func (s *Server) Brightness() (int32, *dbus.Error) {
	if s.brightness == nil {
		return 0, dbus.MakeFailedError(fmt.Errorf("brightness not available"))
	}
	return toWire(s.brightness.Last()), nil
}

func (s *Server) adjust(delta int) string {
	current := s.state.Adjust(delta)
	log.Debugf("Offset adjusted over D-Bus by %d, now %d", delta, current)

	if err := s.notifier.Notify(current); err != nil {
		log.Warnf("Notification failed: %v", err)
	}
	return replyOK
}

func (s *Server) emitOffsetChanged(value int) {
	s.connMu.RLock()
	conn := s.conn
	s.connMu.RUnlock()

	if conn == nil {
		return
	}
	if err := conn.Emit(ObjectPath, SignalOffsetChanged, toWire(value)); err != nil {
		log.Errorf("Failed to emit OffsetChanged signal: %v", err)
	}
}

// toWire saturates v to the i32 range of the bus interface.
func toWire(v int) int32 {
	return int32(max(math.MinInt32, min(math.MaxInt32, v)))
}
