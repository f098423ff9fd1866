package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// LaunchResult is the flat success/error shape returned to the presentation
// layer; ongoing state arrives through the instance event stream.
type LaunchResult struct {
	Success bool
	Error   string
}

// DiskSpaceReport is the result of an explicit disk space query.
type DiskSpaceReport struct {
	AvailableGB float64
	RequiredGB  float64
	HasSpace    bool
}

// Orchestrator composes the launch pipeline: token freshness, disk space,
// configuration resolution, spawn, instance registration, and window
// coordination. It owns the session's credential store; every mutation is
// persisted through the identity repository.
type Orchestrator struct {
	credentials *domain.CredentialStore
	identities  ports.IdentityRepository
	settings    ports.SettingsStore
	sidecar     ports.ProfileSidecar
	resolver    *Resolver
	refresher   *Refresher
	repairer    *Repairer
	launcher    ports.GameLauncher
	disk        ports.DiskProber
	mux         *Multiplexer
	window      *WindowCoordinator
	logger      *zap.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

type OrchestratorConfig struct {
	Credentials *domain.CredentialStore
	Identities  ports.IdentityRepository
	Settings    ports.SettingsStore
	Sidecar     ports.ProfileSidecar
	Resolver    *Resolver
	Refresher   *Refresher
	Repairer    *Repairer
	Launcher    ports.GameLauncher
	Disk        ports.DiskProber
	Multiplexer *Multiplexer
	Window      *WindowCoordinator
	Logger      *zap.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	credentials := cfg.Credentials
	if credentials == nil {
		credentials = domain.NewCredentialStore()
	}

	return &Orchestrator{
		credentials: credentials,
		identities:  cfg.Identities,
		settings:    cfg.Settings,
		sidecar:     cfg.Sidecar,
		resolver:    cfg.Resolver,
		refresher:   cfg.Refresher,
		repairer:    cfg.Repairer,
		launcher:    cfg.Launcher,
		disk:        cfg.Disk,
		mux:         cfg.Multiplexer,
		window:      cfg.Window,
		logger:      logger,
	}
}

// Launch resolves profile into a runnable configuration and spawns one game
// instance. Steps run strictly in sequence; any failure short-circuits the
// rest and leaves no partial state behind.
func (o *Orchestrator) Launch(ctx context.Context, profile domain.Profile, instanceID string, sink InstanceSink) LaunchResult {
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	settings, err := o.settings.Load(ctx)
	if err != nil {
		return failure(fmt.Errorf("load settings: %w", err))
	}

	identity, ok := o.ActiveIdentity()
	if !ok {
		return failure(domain.ErrNoActiveIdentity)
	}

	resolution, err := o.resolver.Resolve(ctx, profile, settings, identity, instanceID, LaunchOverrides{})
	if err != nil {
		o.logger.Error("launch blocked",
			zap.String("instanceId", instanceID), zap.String("profile", profile.Name), zap.Error(err))
		return failure(err)
	}

	if resolution.Refreshed {
		if err := o.persistIdentity(ctx, resolution.Identity); err != nil {
			return failure(err)
		}
		refreshed := resolution.Identity
		sink.Deliver(domain.InstanceEvent{
			InstanceID: instanceID,
			Kind:       domain.EventTokenRefreshed,
			Identity:   &refreshed,
		})
		o.logger.Info("token refreshed", zap.String("instanceId", instanceID))
	}

	o.logger.Info("launching instance",
		zap.String("instanceId", instanceID),
		zap.String("profile", profile.Name),
		zap.String("version", profile.VersionID),
		zap.Int("ramMB", resolution.Spec.MaxMemoryMB),
		zap.String("account", resolution.Identity.DisplayName))

	process, err := o.spawnWithRepair(ctx, resolution.Spec)
	if err != nil {
		o.logger.Error("spawn failed", zap.String("instanceId", instanceID), zap.Error(err))
		return failure(err)
	}

	o.mux.Register(instanceID, profile.Name, sink)
	o.wg.Add(1)
	go o.supervise(process, instanceID)

	return LaunchResult{Success: true}
}

// spawnWithRepair attempts the spawn and reactively repairs classified
// installation failures, retrying once per repair with a hard budget of two
// repair rounds. Unclassified errors surface immediately.
func (o *Orchestrator) spawnWithRepair(ctx context.Context, spec domain.LaunchSpec) (ports.GameProcess, error) {
	// The process layer validates the parent version when the descriptor
	// inherits from one, so repair must target that same id.
	repairVersion := spec.VersionNumber
	if repairVersion == "" {
		repairVersion = spec.VersionID
	}

	process, err := o.launcher.Launch(ctx, spec)

	for repairs := 0; err != nil && repairs < maxRepairRounds; repairs++ {
		var installErr *domain.InstallError
		if !errors.As(err, &installErr) || installErr.Kind == domain.InstallUnclassified {
			return nil, err
		}

		o.logger.Warn("spawn failed, repairing installation",
			zap.String("instanceId", spec.InstanceID),
			zap.String("classification", string(installErr.Kind)))

		if repairErr := o.repairer.Repair(ctx, spec.GameRoot, repairVersion, installErr); repairErr != nil {
			return nil, fmt.Errorf("repair installation: %w", repairErr)
		}

		process, err = o.launcher.Launch(ctx, spec)
	}

	if err != nil {
		return nil, err
	}

	return process, nil
}

// supervise consumes one process watcher, tags every event with the
// instance id, and routes it. Ready and output channels all drain before
// the terminal exit status is taken, so within-instance order is preserved
// and a ready signal with no surrounding output is never lost.
func (o *Orchestrator) supervise(process ports.GameProcess, instanceID string) {
	defer o.wg.Done()

	watcher := process.Watch()
	ready, stdout, stderr := watcher.Ready, watcher.Stdout, watcher.Stderr

	for ready != nil || stdout != nil || stderr != nil {
		select {
		case _, ok := <-ready:
			ready = nil
			if ok {
				o.mux.Route(domain.InstanceEvent{InstanceID: instanceID, Kind: domain.EventReady})
				o.window.OnReady(instanceID)
			}
		case line, ok := <-stdout:
			if !ok {
				stdout = nil
				continue
			}
			o.mux.Route(domain.InstanceEvent{InstanceID: instanceID, Kind: domain.EventStdoutLine, Line: line})
		case line, ok := <-stderr:
			if !ok {
				stderr = nil
				continue
			}
			o.mux.Route(domain.InstanceEvent{InstanceID: instanceID, Kind: domain.EventStderrLine, Line: line})
		}
	}

	status, ok := <-watcher.Exit
	if ok {
		o.logger.Info("instance exited",
			zap.String("instanceId", instanceID), zap.Int("exitCode", status.Code))
		o.mux.Route(domain.InstanceEvent{
			InstanceID:      instanceID,
			Kind:            domain.EventExit,
			ExitCode:        status.Code,
			Signal:          status.Signal,
			CrashReportPath: status.CrashReportPath,
		})
	}

	o.window.OnExit(instanceID)
	o.mux.Unregister(instanceID)
}

// Wait blocks until every live instance supervisor has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// LiveInstances lists the instances currently registered with the event
// multiplexer.
func (o *Orchestrator) LiveInstances() []domain.Instance {
	return o.mux.Instances()
}

func failure(err error) LaunchResult {
	return LaunchResult{Success: false, Error: err.Error()}
}

// CheckDiskSpace answers the explicit disk space query exposed to the UI.
func (o *Orchestrator) CheckDiskSpace(gameRoot string) (DiskSpaceReport, error) {
	space, err := o.disk.CheckSpace(gameRoot)
	if err != nil {
		return DiskSpaceReport{}, fmt.Errorf("check disk space: %w", err)
	}

	return DiskSpaceReport{
		AvailableGB: space.AvailableGB(),
		RequiredGB:  space.RequiredGB(),
		HasSpace:    space.HasSpace(),
	}, nil
}

// InteractiveLogin runs the provider browser flow and stores the resulting
// identity as active.
func (o *Orchestrator) InteractiveLogin(ctx context.Context) (domain.Identity, error) {
	identity, err := o.refresher.InteractiveLogin(ctx)
	if err != nil {
		return domain.Identity{}, err
	}

	o.mu.Lock()
	o.credentials.Upsert(identity)
	_ = o.credentials.SetActive(identity)
	o.mu.Unlock()

	if err := o.saveCredentials(ctx); err != nil {
		return domain.Identity{}, err
	}

	return identity, nil
}

func (o *Orchestrator) CancelInteractiveLogin() bool {
	return o.refresher.CancelInteractiveLogin()
}

// UpsertIdentity stores an identity without changing the active pointer and
// persists the credential store.
func (o *Orchestrator) UpsertIdentity(ctx context.Context, identity domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("validate identity: %w", err)
	}

	o.mu.Lock()
	o.credentials.Upsert(identity)
	o.mu.Unlock()

	return o.saveCredentials(ctx)
}

func (o *Orchestrator) RemoveIdentity(ctx context.Context, identity domain.Identity) error {
	o.mu.Lock()
	o.credentials.Remove(identity)
	o.mu.Unlock()

	return o.saveCredentials(ctx)
}

func (o *Orchestrator) SetActiveIdentity(ctx context.Context, identity domain.Identity) error {
	o.mu.Lock()
	err := o.credentials.SetActive(identity)
	o.mu.Unlock()
	if err != nil {
		return err
	}

	return o.saveCredentials(ctx)
}

func (o *Orchestrator) Identities() []domain.Identity {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.credentials.List()
}

func (o *Orchestrator) ActiveIdentity() (domain.Identity, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.credentials.Active()
}

func (o *Orchestrator) persistIdentity(ctx context.Context, identity domain.Identity) error {
	o.mu.Lock()
	o.credentials.Upsert(identity)
	o.mu.Unlock()

	return o.saveCredentials(ctx)
}

func (o *Orchestrator) saveCredentials(ctx context.Context) error {
	o.mu.Lock()
	snapshot := o.credentials.Snapshot()
	o.mu.Unlock()

	if err := o.identities.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist credential store: %w", err)
	}

	return nil
}

// Profiles reads the profile list from the sidecar under the configured
// game root.
func (o *Orchestrator) Profiles(ctx context.Context) ([]domain.Profile, error) {
	settings, err := o.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	profiles, err := o.sidecar.Load(ctx, settings.GamePath)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	return profiles, nil
}

// SaveProfiles writes the locally-managed profiles back to the sidecar.
func (o *Orchestrator) SaveProfiles(ctx context.Context, profiles []domain.Profile) error {
	for _, profile := range profiles {
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("validate profile %q: %w", profile.Name, err)
		}
	}

	settings, err := o.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := o.sidecar.Save(ctx, settings.GamePath, profiles); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}

	return nil
}
