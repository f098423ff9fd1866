package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	authadapter "github.com/turkuazz/launcher/internal/adapters/auth"
	"github.com/turkuazz/launcher/internal/adapters/mojang"
	"github.com/turkuazz/launcher/internal/adapters/process"
	tomlrepo "github.com/turkuazz/launcher/internal/adapters/repo/toml"
	chainstore "github.com/turkuazz/launcher/internal/adapters/secrets/chain"
	settingsadapter "github.com/turkuazz/launcher/internal/adapters/settings"
	"github.com/turkuazz/launcher/internal/adapters/sidecar"
	"github.com/turkuazz/launcher/internal/adapters/system"
	windowadapter "github.com/turkuazz/launcher/internal/adapters/window"
	"github.com/turkuazz/launcher/internal/application"
	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/logging"
	"github.com/turkuazz/launcher/internal/ports"
)

type app struct {
	orchestrator *application.Orchestrator
	repairer     *application.Repairer
	mux          *application.Multiplexer
	settings     ports.SettingsStore
	versions     ports.VersionSource
	logger       *zap.Logger

	// quit closes when the window coordinator decides the session is over
	// (exit-after-launch).
	quit    chan struct{}
	cleanup func()
}

func (a *app) close() {
	_ = a.logger.Sync()
	if a.cleanup != nil {
		a.cleanup()
	}
}

func wireApp() (*app, error) {
	ctx := context.Background()

	settingsStore, err := settingsadapter.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire settings store: %w", err)
	}
	settings, err := settingsStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger, closeLog, err := logging.NewSessionLogger(settings.GamePath, os.Getenv("TURKUAZZ_DEBUG") != "")
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".turkuazz", "secrets"))
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	identityRepo, err := tomlrepo.NewRepository(viper.New(), secretStore)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("wire identity repository: %w", err)
	}
	snapshot, err := identityRepo.Load(ctx)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("load stored identities: %w", err)
	}
	credentials := domain.NewCredentialStoreFromSnapshot(snapshot)

	provider := authadapter.NewProvider(authadapter.Config{
		Issuer:     envOrDefault("TURKUAZZ_AUTH_ISSUER", "https://auth.turkuazz.net"),
		ClientID:   envOrDefault("TURKUAZZ_AUTH_CLIENT_ID", "turkuazz-launcher"),
		ProfileURL: envOrDefault("TURKUAZZ_AUTH_PROFILE_URL", "https://api.turkuazz.net/session/profile"),
		ListenAddr: envOrDefault("TURKUAZZ_AUTH_LISTEN", "127.0.0.1:43110"),
		Timeout:    5 * time.Minute,
		OpenURL:    openBrowser,
		Notify: func(authURL string) {
			_, _ = fmt.Fprintf(os.Stdout, "Open this URL to sign in:\n%s\n", authURL)
		},
	}, nil)

	versions, err := mojang.NewClient(
		&http.Client{Timeout: 60 * time.Second},
		envOrDefault("TURKUAZZ_MANIFEST_URL", mojang.DefaultManifestURL),
		logger,
	)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("wire version source: %w", err)
	}

	clock := ports.SystemClock{}
	refresher := application.NewRefresher(provider, clock)
	resolver := application.NewResolver(system.JavaLocator{}, system.DiskProber{}, refresher, clock, logger)
	repairer := application.NewRepairer(versions, logger)
	mux := application.NewMultiplexer(logger)

	quit := make(chan struct{})
	controller := windowadapter.NewHeadless(logger, func() { close(quit) })
	window := application.NewWindowCoordinator(controller, settings.HideLauncher, settings.ExitAfterLaunch, logger)
	settingsStore.Watch(func(updated ports.Settings) {
		window.SetPreferences(updated.HideLauncher, updated.ExitAfterLaunch)
	})

	orchestrator := application.NewOrchestrator(application.OrchestratorConfig{
		Credentials: credentials,
		Identities:  identityRepo,
		Settings:    settingsStore,
		Sidecar:     sidecar.New(clock),
		Resolver:    resolver,
		Refresher:   refresher,
		Repairer:    repairer,
		Launcher:    process.NewLauncher(logger),
		Disk:        system.DiskProber{},
		Multiplexer: mux,
		Window:      window,
		Logger:      logger,
	})

	return &app{
		orchestrator: orchestrator,
		repairer:     repairer,
		mux:          mux,
		settings:     settingsStore,
		versions:     versions,
		logger:       logger,
		quit:         quit,
		cleanup:      closeLog,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		// The URL was already printed; a missing opener is not fatal.
		return nil
	}
	return nil
}
