// Package window provides window controller implementations. The headless
// controller serves terminal sessions where there is no launcher window to
// hide; hide and restore become log lines and quit signals the host.
package window

import (
	"sync"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/ports"
)

type Headless struct {
	logger *zap.Logger

	quitOnce sync.Once
	onQuit   func()
}

var _ ports.WindowController = (*Headless)(nil)

// NewHeadless returns a controller that logs visibility transitions. onQuit
// runs at most once, on the first Quit call.
func NewHeadless(logger *zap.Logger, onQuit func()) *Headless {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Headless{logger: logger, onQuit: onQuit}
}

func (h *Headless) Hide() {
	h.logger.Info("launcher hidden")
}

func (h *Headless) Show() {
	h.logger.Info("launcher restored")
}

func (h *Headless) Quit() {
	h.quitOnce.Do(func() {
		h.logger.Info("launcher terminating")
		if h.onQuit != nil {
			h.onQuit()
		}
	})
}
