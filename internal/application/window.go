package application

import (
	"sync"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/ports"
)

type WindowState int

const (
	WindowVisible WindowState = iota
	WindowHidden
	WindowTerminating
)

func (s WindowState) String() string {
	switch s {
	case WindowHidden:
		return "hidden"
	case WindowTerminating:
		return "terminating"
	default:
		return "visible"
	}
}

// WindowCoordinator hides the launcher window on the first ready signal of a
// hidden session and restores it when a tracked instance exits. With the
// exit-after-launch preference the first ready signal terminates the whole
// launcher instead; that transition is irreversible.
type WindowCoordinator struct {
	mu     sync.Mutex
	window ports.WindowController
	logger *zap.Logger

	hideOnLaunch    bool
	exitAfterLaunch bool

	state     WindowState
	hasHidden bool
}

func NewWindowCoordinator(window ports.WindowController, hideOnLaunch, exitAfterLaunch bool, logger *zap.Logger) *WindowCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WindowCoordinator{
		window:          window,
		logger:          logger,
		hideOnLaunch:    hideOnLaunch,
		exitAfterLaunch: exitAfterLaunch,
		state:           WindowVisible,
	}
}

// SetPreferences updates the hide/exit preferences for subsequent signals.
// Live settings changes flow through here.
func (c *WindowCoordinator) SetPreferences(hideOnLaunch, exitAfterLaunch bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hideOnLaunch = hideOnLaunch
	c.exitAfterLaunch = exitAfterLaunch
}

func (c *WindowCoordinator) State() WindowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// OnReady handles the ready signal of one instance. Only the first ready
// across all live instances triggers a transition; the hasHidden latch keeps
// later instances launched while hidden from re-triggering.
func (c *WindowCoordinator) OnReady(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == WindowTerminating || !c.hideOnLaunch || c.hasHidden {
		return
	}

	c.hasHidden = true
	if c.exitAfterLaunch {
		c.state = WindowTerminating
		c.logger.Info("game ready, exiting launcher", zap.String("instanceId", instanceID))
		c.window.Quit()
		return
	}

	c.state = WindowHidden
	c.logger.Info("game ready, hiding launcher", zap.String("instanceId", instanceID))
	c.window.Hide()
}

// OnExit restores the window when hidden. The current behavior restores on
// any single tracked exit, not when the live count reaches zero.
func (c *WindowCoordinator) OnExit(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != WindowHidden || !c.hasHidden || c.exitAfterLaunch {
		return
	}

	c.state = WindowVisible
	c.hasHidden = false
	c.logger.Info("game closed, restoring launcher", zap.String("instanceId", instanceID))
	c.window.Show()
}
