// Package pass stores token payloads in the standard unix password
// manager, one entry per identity under the launcher's key prefix.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/turkuazz/launcher/internal/ports"
)

// ErrUnavailable reports that no pass binary is on PATH; the secret chain
// uses it to fall through to the file-backed store.
var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store shells out to pass. Values are inserted in multiline mode because
// token payloads are JSON documents, not single passwords.
type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.invoke(ctx, "put", key, value+"\n", "insert", "-m", "-f", key)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.invoke(ctx, "get", key, "", "show", key)
	if err != nil {
		return "", err
	}

	stdout = strings.TrimSuffix(stdout, "\n")
	stdout = strings.TrimSuffix(stdout, "\r")

	return stdout, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.invoke(ctx, "delete", key, "", "rm", "-f", key)
	return err
}

// invoke runs one pass subcommand and maps any failure to a single error
// shape naming the operation and the entry.
func (s *Store) invoke(ctx context.Context, op string, key string, input string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, input, args...)
	if err == nil {
		return stdout, nil
	}
	if stderr == "" {
		return "", fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return "", fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
