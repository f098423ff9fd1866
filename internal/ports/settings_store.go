package ports

import "context"

// Settings are the global launcher defaults. Profile overrides and call-site
// overrides layer on top of these at resolution time.
type Settings struct {
	GamePath        string
	JavaPath        string
	RAMMB           int
	HideLauncher    bool
	ExitAfterLaunch bool
}

type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
	// Watch registers a callback invoked whenever the backing settings file
	// changes on disk. Implementations may deliver from a background
	// goroutine.
	Watch(onChange func(Settings))
}
