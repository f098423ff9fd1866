package ports

import (
	"context"

	"github.com/turkuazz/launcher/internal/domain"
)

// ProcessWatcher exposes the four event channels of one spawned game
// process. Ready fires at most once and is closed afterwards. Stdout and
// Stderr close when the underlying streams end. Exit delivers exactly one
// terminal status and then closes; no further events follow it.
type ProcessWatcher struct {
	Ready  <-chan struct{}
	Stdout <-chan string
	Stderr <-chan string
	Exit   <-chan domain.ExitStatus
}

type GameProcess interface {
	Watch() ProcessWatcher
	PID() int
}

// GameLauncher is the process-launch library boundary. Launch errors are
// pre-classified: installation problems surface as *domain.InstallError,
// everything else as *domain.SpawnError.
type GameLauncher interface {
	Launch(ctx context.Context, spec domain.LaunchSpec) (GameProcess, error)
}
