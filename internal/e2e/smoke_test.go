package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeAccountsFixture(home))

	_, stderr, err := runLauncher(t, binaryPath, home, "account", "add", "Steve")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runLauncher(t, binaryPath, home, "account", "list")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Steve")
	assert.Contains(t, stdout, "Alex")

	stdout, stderr, err = runLauncher(t, binaryPath, home, "account", "use", "Steve")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Active account is now Steve")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "turkuazz-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/turkuazz")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build turkuazz binary: %s", string(output))
	return binaryPath
}

func runLauncher(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeAccountsFixture(home string) error {
	configDir := filepath.Join(home, ".turkuazz")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	accounts := `version = 1
active = "offline:Alex"

[[identities]]
kind = "offline"
display_name = "Alex"
pseudo_uuid = "00000000-0000-0000-0000-000000000000"
`

	return os.WriteFile(filepath.Join(configDir, "accounts.toml"), []byte(accounts), 0o600)
}
