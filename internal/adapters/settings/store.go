package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turkuazz/launcher/internal/ports"
)

const (
	settingsFileName = "settings"
	settingsFileType = "toml"
	launcherDir      = ".turkuazz"

	keyGamePath        = "game_path"
	keyJavaPath        = "java_path"
	keyRAMMB           = "ram_mb"
	keyHideLauncher    = "hide_launcher"
	keyExitAfterLaunch = "exit_after_launch"
)

// Store keeps the global launcher settings in a viper-backed TOML file and
// notifies watchers when the file changes on disk.
type Store struct {
	v    *viper.Viper
	path string

	mu       sync.Mutex
	watchers []func(ports.Settings)
	watching bool
}

var _ ports.SettingsStore = (*Store)(nil)

func NewStore(v *viper.Viper) (*Store, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, launcherDir)
	return newStoreAt(v, configDir)
}

// NewStoreAt opens a settings store rooted at an explicit directory.
func NewStoreAt(dir string) (*Store, error) {
	return newStoreAt(viper.New(), dir)
}

func newStoreAt(v *viper.Viper, configDir string) (*Store, error) {
	v.SetConfigName(settingsFileName)
	v.SetConfigType(settingsFileType)
	v.AddConfigPath(configDir)

	v.SetDefault(keyGamePath, filepath.Join(configDir, "game"))
	v.SetDefault(keyJavaPath, "java")
	v.SetDefault(keyRAMMB, 2048)
	v.SetDefault(keyHideLauncher, false)
	v.SetDefault(keyExitAfterLaunch, false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
	}

	return &Store{
		v:    v,
		path: filepath.Join(configDir, settingsFileName+"."+settingsFileType),
	}, nil
}

func (s *Store) Load(ctx context.Context) (ports.Settings, error) {
	if err := ctx.Err(); err != nil {
		return ports.Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(), nil
}

func (s *Store) snapshotLocked() ports.Settings {
	return ports.Settings{
		GamePath:        s.v.GetString(keyGamePath),
		JavaPath:        s.v.GetString(keyJavaPath),
		RAMMB:           s.v.GetInt(keyRAMMB),
		HideLauncher:    s.v.GetBool(keyHideLauncher),
		ExitAfterLaunch: s.v.GetBool(keyExitAfterLaunch),
	}
}

func (s *Store) Save(ctx context.Context, settings ports.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(keyGamePath, settings.GamePath)
	s.v.Set(keyJavaPath, settings.JavaPath)
	s.v.Set(keyRAMMB, settings.RAMMB)
	s.v.Set(keyHideLauncher, settings.HideLauncher)
	s.v.Set(keyExitAfterLaunch, settings.ExitAfterLaunch)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// Watch registers onChange for settings-file edits. The first registration
// starts viper's fsnotify watcher.
func (s *Store) Watch(onChange func(ports.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers = append(s.watchers, onChange)
	if s.watching {
		return
	}
	s.watching = true

	s.v.OnConfigChange(func(_ fsnotify.Event) {
		s.mu.Lock()
		snapshot := s.snapshotLocked()
		watchers := append(([]func(ports.Settings))(nil), s.watchers...)
		s.mu.Unlock()

		for _, watcher := range watchers {
			watcher(snapshot)
		}
	})
	s.v.WatchConfig()
}
