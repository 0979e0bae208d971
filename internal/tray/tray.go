// Package tray provides the system tray menu used to nudge the brightness
// offset up or down.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"
	"github.com/oceania/autobright/internal/log"
	"github.com/oceania/autobright/internal/notify"
	"github.com/oceania/autobright/internal/offset"
)

const subscriberKey = "tray"

// Tray represents the system tray application.
type Tray struct {
	state    *offset.State
	notifier notify.Notifier
	step     int

	mu      sync.RWMutex
	onQuit  func()
	running bool
	quit    bool

	// Menu items stored for later updates
	menuOffset *systray.MenuItem
}

// New creates a Tray adjusting state by step on each click.
func New(state *offset.State, notifier notify.Notifier, step int) *Tray {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Tray{
		state:    state,
		notifier: notifier,
		step:     step,
	}
}

// OnQuit sets the callback function to be called when the tray goes away,
// either through the quit menu item or because the host shut it down.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must be called
// from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu. Safe to call before Run has
// set the tray up; the tray then closes as soon as it is ready.
func (t *Tray) Quit() {
	t.mu.Lock()
	t.quit = true
	running := t.running
	t.mu.Unlock()

	if running {
		systray.Quit()
	}
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Autobright")
	systray.SetTooltip("Autobrightd is running!")

	// Subscribe before reading so no change falls between the two.
	changes := t.state.Subscribe(subscriberKey)
	t.menuOffset = systray.AddMenuItem(offsetTitle(t.state.Read()), "Current brightness offset")
	t.menuOffset.Disable()
	systray.AddSeparator()

	menuIncrease := systray.AddMenuItem("Increase", "Raise the brightness offset")
	menuDecrease := systray.AddMenuItem("Decrease", "Lower the brightness offset")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Autobrightd")

	t.mu.Lock()
	t.running = true
	quit := t.quit
	t.mu.Unlock()
	if quit {
		systray.Quit()
		return
	}

	// The label follows every writer, not just this menu.
	go watchOffset(changes, t.menuOffset.SetTitle)

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuIncrease.ClickedCh:
				t.handleIncrease()
			case <-menuDecrease.ClickedCh:
				t.handleDecrease()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.state.Unsubscribe(subscriberKey)

	t.mu.Lock()
	t.running = false
	callback := t.onQuit
	t.onQuit = nil
	t.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleIncrease() int {
	return t.adjust(t.step)
}

func (t *Tray) handleDecrease() int {
	return t.adjust(-t.step)
}

func (t *Tray) adjust(delta int) int {
	current := t.state.Adjust(delta)
	log.Debugf("Offset adjusted from tray by %d, now %d", delta, current)

	if err := t.notifier.Notify(current); err != nil {
		log.Warnf("Notification failed: %v", err)
	}
	return current
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.Lock()
	t.quit = true
	callback := t.onQuit
	t.onQuit = nil
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback()
	}

	systray.Quit()
}

// watchOffset renders each offset from changes through setTitle until the
// channel is closed.
func watchOffset(changes <-chan int, setTitle func(string)) {
	for v := range changes {
		setTitle(offsetTitle(v))
	}
}

func offsetTitle(v int) string {
	return "Offset: " + strconv.Itoa(v)
}
