package application

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

type fakeProvider struct {
	mu            sync.Mutex
	refreshBundle ports.TokenBundle
	refreshErr    error
	refreshCalls  int
	loginBundle   ports.TokenBundle
	loginErr      error
	cancelled     bool
}

func (p *fakeProvider) Login(context.Context) (ports.TokenBundle, error) {
	return p.loginBundle, p.loginErr
}

func (p *fakeProvider) Refresh(context.Context, string) (ports.TokenBundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshCalls++
	if p.refreshErr != nil {
		return ports.TokenBundle{}, p.refreshErr
	}
	return p.refreshBundle, nil
}

func (p *fakeProvider) CancelLogin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelled = true
	return true
}

type fakeJava struct {
	path  string
	err   error
	calls int
}

func (j *fakeJava) Locate(_ context.Context, _ string) (string, error) {
	j.calls++
	if j.err != nil {
		return "", j.err
	}
	return j.path, nil
}

// configuredJava echoes the configured path back, for override assertions.
type configuredJava struct {
	configured string
}

func (j *configuredJava) Locate(_ context.Context, configured string) (string, error) {
	j.configured = configured
	return "/usr/bin/java", nil
}

type fakeDisk struct {
	space ports.DiskSpace
	err   error
}

func (d *fakeDisk) CheckSpace(string) (ports.DiskSpace, error) {
	if d.err != nil {
		return ports.DiskSpace{}, d.err
	}
	return d.space, nil
}

func roomyDisk() *fakeDisk {
	return &fakeDisk{space: ports.DiskSpace{
		AvailableBytes: 10 * ports.RequiredSpaceBytes,
		RequiredBytes:  ports.RequiredSpaceBytes,
	}}
}

func fullDisk() *fakeDisk {
	return &fakeDisk{space: ports.DiskSpace{
		AvailableBytes: ports.RequiredSpaceBytes / 2,
		RequiredBytes:  ports.RequiredSpaceBytes,
	}}
}

// fakeVersionSource serves a one-version manifest and writes fixed bytes for
// every artifact download.
type fakeVersionSource struct {
	mu         sync.Mutex
	version    ports.ManifestVersion
	descriptor ports.VersionDescriptor
	lookupErr  error

	lookups   int
	lookupIDs []string
	fetches   int
	downloads int
}

func (s *fakeVersionSource) Manifest(context.Context) ([]ports.ManifestVersion, error) {
	return []ports.ManifestVersion{s.version}, nil
}

func (s *fakeVersionSource) LookupVersion(_ context.Context, versionID string) (ports.ManifestVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	s.lookupIDs = append(s.lookupIDs, versionID)
	if s.lookupErr != nil {
		return ports.ManifestVersion{}, s.lookupErr
	}
	return s.version, nil
}

func (s *fakeVersionSource) FetchDescriptor(_ context.Context, _ ports.ManifestVersion, destPath string) (ports.VersionDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return ports.VersionDescriptor{}, err
	}
	if err := os.WriteFile(destPath, []byte(`{"libraries":[]}`), 0o644); err != nil {
		return ports.VersionDescriptor{}, err
	}
	return s.descriptor, nil
}

func (s *fakeVersionSource) DownloadArtifact(_ context.Context, _ string, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.downloads++
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte("artifact-bytes"), 0o644)
}

type fakeSettings struct {
	mu       sync.Mutex
	settings ports.Settings
	watchers []func(ports.Settings)
}

func (s *fakeSettings) Load(context.Context) (ports.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings, nil
}

func (s *fakeSettings) Save(_ context.Context, settings ports.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	for _, watcher := range s.watchers {
		watcher(settings)
	}
	return nil
}

func (s *fakeSettings) Watch(onChange func(ports.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers = append(s.watchers, onChange)
}

type fakeIdentityRepo struct {
	mu       sync.Mutex
	snapshot domain.CredentialSnapshot
	saves    int
}

func (r *fakeIdentityRepo) Load(context.Context) (domain.CredentialSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot, nil
}

func (r *fakeIdentityRepo) Save(_ context.Context, snapshot domain.CredentialSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot = snapshot
	r.saves++
	return nil
}

func (r *fakeIdentityRepo) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

type fakeSidecar struct {
	mu       sync.Mutex
	profiles []domain.Profile
}

func (s *fakeSidecar) Load(context.Context, string) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Profile(nil), s.profiles...), nil
}

func (s *fakeSidecar) Save(_ context.Context, _ string, profiles []domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = append([]domain.Profile(nil), profiles...)
	return nil
}

// scriptedProcess pre-loads the four channels with a full session: an
// optional ready signal, output lines, then one exit status. Channel close
// order matches the real watcher.
type scriptedProcess struct {
	watcher ports.ProcessWatcher
}

func (p *scriptedProcess) Watch() ports.ProcessWatcher { return p.watcher }

func (p *scriptedProcess) PID() int { return 4242 }

func newScriptedProcess(ready bool, stdout, stderr []string, exit domain.ExitStatus) *scriptedProcess {
	readyCh := make(chan struct{}, 1)
	if ready {
		readyCh <- struct{}{}
	}
	close(readyCh)

	stdoutCh := make(chan string, len(stdout)+1)
	for _, line := range stdout {
		stdoutCh <- line
	}
	close(stdoutCh)

	stderrCh := make(chan string, len(stderr)+1)
	for _, line := range stderr {
		stderrCh <- line
	}
	close(stderrCh)

	exitCh := make(chan domain.ExitStatus, 1)
	exitCh <- exit
	close(exitCh)

	return &scriptedProcess{watcher: ports.ProcessWatcher{
		Ready:  readyCh,
		Stdout: stdoutCh,
		Stderr: stderrCh,
		Exit:   exitCh,
	}}
}

// fakeLauncher fails with scripted errors before yielding processes.
type fakeLauncher struct {
	mu        sync.Mutex
	errs      []error
	processes []*scriptedProcess
	attempts  int
	specs     []domain.LaunchSpec
}

func (l *fakeLauncher) Launch(_ context.Context, spec domain.LaunchSpec) (ports.GameProcess, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts++
	l.specs = append(l.specs, spec)

	if len(l.errs) > 0 {
		err := l.errs[0]
		l.errs = l.errs[1:]
		return nil, err
	}

	if len(l.processes) == 0 {
		panic("fakeLauncher: no scripted process left")
	}
	process := l.processes[0]
	l.processes = l.processes[1:]
	return process, nil
}

func (l *fakeLauncher) launchAttempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.attempts
}

type recordController struct {
	mu    sync.Mutex
	hides int
	shows int
	quits int
}

func (c *recordController) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hides++
}

func (c *recordController) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shows++
}

func (c *recordController) Quit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quits++
}

func (c *recordController) counts() (hides, shows, quits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hides, c.shows, c.quits
}

func collectEvents(events *[]domain.InstanceEvent, mu *sync.Mutex) InstanceSink {
	return InstanceSinkFunc(func(event domain.InstanceEvent) {
		mu.Lock()
		defer mu.Unlock()
		*events = append(*events, event)
	})
}

func onlineTestIdentity(expiresAt time.Time) domain.Identity {
	return domain.Identity{
		Kind:         domain.IdentityOnline,
		DisplayName:  "Hero",
		AccountID:    "4aa7f3b1-11aa-22bb-33cc-abcdefabcdef",
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
		ExpiresAtMs:  expiresAt.UnixMilli(),
	}
}
