// Package client talks to a running autobrightd over the session bus.
package client

import (
	"context"
	"fmt"
	"math"

	"github.com/godbus/dbus/v5"
	"github.com/oceania/autobright/internal/errdefs"
	"github.com/oceania/autobright/internal/server"
)

type Client struct {
	conn  *dbus.Conn
	obj   dbus.BusObject
	owned bool
}

// Connect opens a private session bus connection.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrTypeBus, "failed to connect to session bus", err)
	}
	c := New(conn)
	c.owned = true
	return c, nil
}

// New wraps an existing connection. Close leaves it open.
func New(conn *dbus.Conn) *Client {
	return &Client{
		conn: conn,
		obj:  conn.Object(server.ServiceName, server.ObjectPath),
	}
}

func (c *Client) Close() error {
	if c.owned && c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) Increase(ctx context.Context, value int) (string, error) {
	return c.adjust(ctx, "Increase", value)
}

func (c *Client) Decrease(ctx context.Context, value int) (string, error) {
	return c.adjust(ctx, "Decrease", value)
}

func (c *Client) adjust(ctx context.Context, method string, value int) (string, error) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return "", errdefs.NewCustomError(errdefs.ErrTypeGeneric, fmt.Sprintf("amount %d does not fit in 32 bits", value))
	}

	var status string
	if err := c.call(ctx, method, &status, int32(value)); err != nil {
		return "", err
	}
	return status, nil
}

func (c *Client) Offset(ctx context.Context) (int, error) {
	var v int32
	if err := c.call(ctx, "Offset", &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

func (c *Client) Brightness(ctx context.Context) (int, error) {
	var v int32
	if err := c.call(ctx, "Brightness", &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

// WatchOffset forwards OffsetChanged signals to the returned channel until
// ctx is done.
func (c *Client) WatchOffset(ctx context.Context) (<-chan int, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(server.ObjectPath),
		dbus.WithMatchInterface(server.InterfaceName),
		dbus.WithMatchMember("OffsetChanged"),
	}
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return nil, errdefs.Wrap(errdefs.ErrTypeBus, "failed to watch offset", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	out := make(chan int, 16)
	go func() {
		defer close(out)
		defer func() {
			c.conn.RemoveSignal(signals)
			_ = c.conn.RemoveMatchSignal(opts...)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig == nil || sig.Name != server.SignalOffsetChanged || len(sig.Body) == 0 {
					continue
				}
				if v, ok := sig.Body[0].(int32); ok {
					select {
					case out <- int(v):
					default:
					}
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, dest interface{}, args ...interface{}) error {
	call := c.obj.CallWithContext(ctx, server.InterfaceName+"."+method, 0, args...)
	if call.Err != nil {
		return errdefs.Wrap(errdefs.ErrTypeBus, fmt.Sprintf("failed to call %s (is autobrightd running?)", method), call.Err)
	}
	return call.Store(dest)
}
