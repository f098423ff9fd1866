package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes one command against a root wired from a throwaway home
// directory, so every test starts from an empty launcher config.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestVersionCommand(t *testing.T) {
	isolateHome(t)

	output, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", output)
}

func TestAccountAddListUse(t *testing.T) {
	isolateHome(t)

	output, err := runCLI(t, "account", "add", "Steve")
	require.NoError(t, err)
	assert.Contains(t, output, "Added offline account Steve")

	_, err = runCLI(t, "account", "add", "Alex", "--random-uuid")
	require.NoError(t, err)

	// Adding never touches the active pointer.
	output, err = runCLI(t, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "  Steve")
	assert.Contains(t, output, "  Alex")
	assert.NotContains(t, output, "*")

	output, err = runCLI(t, "account", "use", "Alex")
	require.NoError(t, err)
	assert.Contains(t, output, "Active account is now Alex")

	output, err = runCLI(t, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "* Alex")
}

func TestAccountRemovePromotesRemaining(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "account", "add", "Steve")
	require.NoError(t, err)
	_, err = runCLI(t, "account", "add", "Alex")
	require.NoError(t, err)
	_, err = runCLI(t, "account", "use", "Steve")
	require.NoError(t, err)

	// Removing the active account promotes the first remaining one.
	output, err := runCLI(t, "account", "remove", "Steve")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed account Steve")

	output, err = runCLI(t, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "* Alex")
	assert.NotContains(t, output, "Steve")
}

func TestAccountRemoveUnknownFails(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "account", "remove", "Ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity not found")
}

func TestStatusCommandReportsAccountsAndInstances(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "account", "add", "Steve")
	require.NoError(t, err)

	output, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Steve")
	assert.Contains(t, output, "accounts: 1  instances: 0")
}

func TestProfileAddListRemove(t *testing.T) {
	isolateHome(t)

	output, err := runCLI(t, "profile", "add", "main", "1.20.4")
	require.NoError(t, err)
	assert.Contains(t, output, "Saved profile main (1.20.4)")

	_, err = runCLI(t, "profile", "add", "modded", "1.20.4-fabric", "--custom", "--ram", "4096")
	require.NoError(t, err)

	output, err = runCLI(t, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "main\t1.20.4\trelease")
	assert.Contains(t, output, "modded\t1.20.4-fabric\tcustom")

	output, err = runCLI(t, "profile", "remove", "main")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed profile main")

	output, err = runCLI(t, "profile", "list")
	require.NoError(t, err)
	assert.NotContains(t, output, "main\t")
}

func TestProfileAddReplacesExistingName(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "profile", "add", "main", "1.20.4")
	require.NoError(t, err)
	_, err = runCLI(t, "profile", "add", "main", "1.21")
	require.NoError(t, err)

	output, err := runCLI(t, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "main\t1.21\trelease")
	assert.NotContains(t, output, "1.20.4")
}

func TestProfileRemoveUnknownFails(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "profile", "remove", "ghost")
	require.Error(t, err)
}

func TestLaunchUnknownProfileSuggestsClosestName(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "profile", "add", "mainline", "1.20.4")
	require.NoError(t, err)

	_, err = runCLI(t, "launch", "mainlin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "mainline"?`)
}
