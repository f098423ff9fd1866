package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

const testVersion = "1.20.4"

func writeValidInstallation(t *testing.T, gameRoot string, libraries ...string) {
	t.Helper()

	versionDir := filepath.Join(gameRoot, "versions", testVersion)
	require.NoError(t, os.MkdirAll(versionDir, 0o755))

	descriptor := `{"libraries":[`
	for i, library := range libraries {
		if i > 0 {
			descriptor += ","
		}
		descriptor += `{"downloads":{"artifact":{"path":"` + library + `","url":"https://libraries.example/` + library + `"}}}`
	}
	descriptor += `]}`
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, testVersion+".json"), []byte(descriptor), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, testVersion+".jar"), []byte("client-bytes"), 0o644))

	for _, library := range libraries {
		dest := filepath.Join(gameRoot, "libraries", filepath.FromSlash(library))
		require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
		require.NoError(t, os.WriteFile(dest, []byte("lib-bytes"), 0o644))
	}
}

func newTestRepairer(source ports.VersionSource) *Repairer {
	return NewRepairer(source, nil)
}

func defaultSource() *fakeVersionSource {
	return &fakeVersionSource{
		version: ports.ManifestVersion{ID: testVersion, Type: "release", URL: "https://meta.example/1.20.4.json"},
		descriptor: ports.VersionDescriptor{
			ID:        testVersion,
			ClientURL: "https://artifacts.example/client.jar",
		},
	}
}

func TestVerifyValidInstallationReturnsNil(t *testing.T) {
	t.Parallel()

	gameRoot := t.TempDir()
	writeValidInstallation(t, gameRoot, "org/lwjgl/lwjgl.jar")

	repairer := newTestRepairer(defaultSource())
	assert.Nil(t, repairer.Verify(gameRoot, testVersion))
}

func TestVerifyClassification(t *testing.T) {
	t.Parallel()

	t.Run("missing descriptor", func(t *testing.T) {
		t.Parallel()

		repairer := newTestRepairer(defaultSource())
		installErr := repairer.Verify(t.TempDir(), testVersion)
		require.NotNil(t, installErr)
		assert.Equal(t, domain.InstallMissingVersionJSON, installErr.Kind)
	})

	t.Run("malformed descriptor", func(t *testing.T) {
		t.Parallel()

		gameRoot := t.TempDir()
		versionDir := filepath.Join(gameRoot, "versions", testVersion)
		require.NoError(t, os.MkdirAll(versionDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(versionDir, testVersion+".json"), []byte("{not json"), 0o644))

		repairer := newTestRepairer(defaultSource())
		installErr := repairer.Verify(gameRoot, testVersion)
		require.NotNil(t, installErr)
		assert.Equal(t, domain.InstallMissingVersionJSON, installErr.Kind)
	})

	t.Run("empty client archive", func(t *testing.T) {
		t.Parallel()

		gameRoot := t.TempDir()
		writeValidInstallation(t, gameRoot)
		require.NoError(t, os.WriteFile(filepath.Join(gameRoot, "versions", testVersion, testVersion+".jar"), nil, 0o644))

		repairer := newTestRepairer(defaultSource())
		installErr := repairer.Verify(gameRoot, testVersion)
		require.NotNil(t, installErr)
		assert.Equal(t, domain.InstallCorruptedVersionJar, installErr.Kind)
	})

	t.Run("missing libraries are listed", func(t *testing.T) {
		t.Parallel()

		gameRoot := t.TempDir()
		writeValidInstallation(t, gameRoot, "org/lwjgl/lwjgl.jar", "com/mojang/brigadier.jar")
		require.NoError(t, os.Remove(filepath.Join(gameRoot, "libraries", "com", "mojang", "brigadier.jar")))

		repairer := newTestRepairer(defaultSource())
		installErr := repairer.Verify(gameRoot, testVersion)
		require.NotNil(t, installErr)
		assert.Equal(t, domain.InstallMissingLibraries, installErr.Kind)
		require.Len(t, installErr.Libraries, 1)
		assert.Equal(t, "com/mojang/brigadier.jar", installErr.Libraries[0].Path)
	})
}

func TestEnsureInstallableValidInstallationDoesNoNetworkIO(t *testing.T) {
	t.Parallel()

	gameRoot := t.TempDir()
	writeValidInstallation(t, gameRoot, "org/lwjgl/lwjgl.jar")

	source := defaultSource()
	repairer := newTestRepairer(source)

	require.NoError(t, repairer.EnsureInstallable(context.Background(), gameRoot, testVersion))
	assert.Zero(t, source.lookups)
	assert.Zero(t, source.fetches)
	assert.Zero(t, source.downloads)
}

func TestEnsureInstallableRepairsMissingVersionFiles(t *testing.T) {
	t.Parallel()

	gameRoot := t.TempDir()
	source := defaultSource()
	repairer := newTestRepairer(source)

	require.NoError(t, repairer.EnsureInstallable(context.Background(), gameRoot, testVersion))

	assert.Equal(t, 1, source.lookups)
	assert.Equal(t, 1, source.fetches)
	assert.Equal(t, 1, source.downloads)
	assert.Nil(t, repairer.Verify(gameRoot, testVersion))
}

func TestEnsureInstallableRepairsMissingLibraries(t *testing.T) {
	t.Parallel()

	gameRoot := t.TempDir()
	writeValidInstallation(t, gameRoot, "org/lwjgl/lwjgl.jar")
	require.NoError(t, os.Remove(filepath.Join(gameRoot, "libraries", "org", "lwjgl", "lwjgl.jar")))

	source := defaultSource()
	repairer := newTestRepairer(source)

	require.NoError(t, repairer.EnsureInstallable(context.Background(), gameRoot, testVersion))
	assert.Equal(t, 1, source.downloads)
	assert.Nil(t, repairer.Verify(gameRoot, testVersion))
}

func TestRepairUnclassifiedErrorIsNotRepaired(t *testing.T) {
	t.Parallel()

	source := defaultSource()
	repairer := newTestRepairer(source)

	installErr := &domain.InstallError{Kind: domain.InstallUnclassified, Cause: assert.AnError}
	err := repairer.Repair(context.Background(), t.TempDir(), testVersion, installErr)
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, source.downloads)
}

func TestEnsureInstallableSurfacesLookupFailure(t *testing.T) {
	t.Parallel()

	source := defaultSource()
	source.lookupErr = assert.AnError
	repairer := newTestRepairer(source)

	err := repairer.EnsureInstallable(context.Background(), t.TempDir(), testVersion)
	require.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "lookup version")
}
