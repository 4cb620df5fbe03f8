// Package tray provides the system tray menu of the camera whiteboard.
package tray

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Menu labels.
const (
	LabelTracking = "● Tracking"
	LabelPaused   = "○ Paused"
	LabelClear    = "Clear Canvas"
	LabelQuit     = "Quit"
)

// ToggleLabel returns the toggle item label for the given tracking state.
func ToggleLabel(enabled bool) string {
	if enabled {
		return LabelTracking
	}
	return LabelPaused
}

// Tray represents the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onClear  func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	menu       *fyne.Menu
	menuToggle *fyne.MenuItem
	desk       desktop.App
}

// New creates a new Tray instance with tracking enabled.
func New() *Tray {
	t := &Tray{enabled: true}

	t.menuToggle = fyne.NewMenuItem(ToggleLabel(true), t.handleToggle)
	clearItem := fyne.NewMenuItem(LabelClear, t.handleClear)
	quit := fyne.NewMenuItem(LabelQuit, t.handleQuit)
	quit.IsQuit = true

	t.menu = fyne.NewMenu("airboard", t.menuToggle, fyne.NewMenuItemSeparator(), clearItem, fyne.NewMenuItemSeparator(), quit)
	return t
}

// OnToggle sets the callback function to be called when tracking is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback function to be called when "Clear Canvas" is clicked.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnQuit sets the callback function to be called when "Quit" is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Install adds the menu to the system tray of a. It reports false when the
// driver has no system tray, e.g. on mobile or in tests.
func (t *Tray) Install(a fyne.App) bool {
	desk, ok := a.(desktop.App)
	if !ok {
		return false
	}

	t.mu.Lock()
	t.desk = desk
	t.mu.Unlock()

	desk.SetSystemTrayMenu(t.menu)
	return true
}

// Menu returns the tray menu.
func (t *Tray) Menu() *fyne.Menu {
	return t.menu
}

// IsEnabled returns whether tracking is shown as enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled updates the toggle label without invoking the toggle callback.
// The menu is only pushed again when the state changes. It must be called on
// the fyne goroutine.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	changed := t.enabled != enabled
	t.enabled = enabled
	t.mu.Unlock()

	if changed {
		t.refresh(enabled)
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	callback := t.onToggle
	t.mu.Unlock()

	t.refresh(enabled)

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleClear() {
	t.mu.RLock()
	callback := t.onClear
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// refresh relabels the toggle item and pushes the menu to the tray again.
func (t *Tray) refresh(enabled bool) {
	t.menuToggle.Label = ToggleLabel(enabled)

	t.mu.RLock()
	desk := t.desk
	t.mu.RUnlock()

	if desk != nil {
		desk.SetSystemTrayMenu(t.menu)
	}
}
