package process

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

const lineChannelDepth = 256

// readinessMarkers are the output fragments that indicate the game reached
// a usable state. The first match fires the ready signal, exactly once.
var readinessMarkers = []string{
	"Setting user:",
	"LWJGL",
	"OpenGL",
	"Created: ",
}

const crashReportMarker = "Crash report saved to:"

type gameProcess struct {
	cmd     *exec.Cmd
	watcher ports.ProcessWatcher
}

func (p *gameProcess) Watch() ports.ProcessWatcher { return p.watcher }

func (p *gameProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// start spawns the java process and wires the four event channels. Output
// channels close before the exit status is delivered, so consumers see
// every line before the terminal event.
func start(ctx context.Context, spec domain.LaunchSpec, args []string, logger *zap.Logger) (ports.GameProcess, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.SpawnError{Cause: err}
	}

	cmd := exec.Command(spec.JavaExecutable, args...)
	cmd.Dir = spec.GameRoot

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &domain.SpawnError{Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &domain.SpawnError{Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &domain.SpawnError{Cause: err}
	}

	ready := make(chan struct{}, 1)
	stdout := make(chan string, lineChannelDepth)
	stderr := make(chan string, lineChannelDepth)
	exit := make(chan domain.ExitStatus, 1)

	var readyOnce sync.Once
	var crashMu sync.Mutex
	crashReportPath := ""

	var pumps sync.WaitGroup
	pumps.Add(2)

	go func() {
		defer pumps.Done()
		scanner := bufio.NewScanner(stdoutPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := MaskSensitiveLine(scanner.Text())
			stdout <- line

			for _, marker := range readinessMarkers {
				if strings.Contains(line, marker) {
					readyOnce.Do(func() { ready <- struct{}{} })
					break
				}
			}
			if index := strings.Index(line, crashReportMarker); index >= 0 {
				crashMu.Lock()
				crashReportPath = strings.TrimSpace(line[index+len(crashReportMarker):])
				crashMu.Unlock()
			}
		}
	}()

	go func() {
		defer pumps.Done()
		scanner := bufio.NewScanner(stderrPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			stderr <- MaskSensitiveLine(scanner.Text())
		}
	}()

	go func() {
		pumps.Wait()
		close(stdout)
		close(stderr)

		waitErr := cmd.Wait()
		close(ready)

		status := domain.ExitStatus{}
		crashMu.Lock()
		status.CrashReportPath = crashReportPath
		crashMu.Unlock()

		var exitErr *exec.ExitError
		switch {
		case waitErr == nil:
		case errors.As(waitErr, &exitErr):
			status.Code = exitErr.ExitCode()
			if status.Code == -1 {
				status.Signal = exitErr.ProcessState.String()
			}
		default:
			status.Code = -1
			status.Signal = waitErr.Error()
		}

		logger.Debug("game process exited",
			zap.String("instanceId", spec.InstanceID), zap.Int("code", status.Code))

		exit <- status
		close(exit)
	}()

	return &gameProcess{
		cmd: cmd,
		watcher: ports.ProcessWatcher{
			Ready:  ready,
			Stdout: stdout,
			Stderr: stderr,
			Exit:   exit,
		},
	}, nil
}
