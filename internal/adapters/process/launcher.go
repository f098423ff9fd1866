// Package process spawns and watches game processes. It owns the readiness
// heuristic and the classification of launch failures; nothing outside this
// package inspects raw process errors.
package process

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

type Launcher struct {
	logger *zap.Logger
}

var _ ports.GameLauncher = (*Launcher)(nil)

func NewLauncher(logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Launcher{logger: logger}
}

// descriptor is the subset of the version JSON this layer needs to build a
// command line.
type descriptor struct {
	ID        string `json:"id"`
	MainClass string `json:"mainClass"`
	Libraries []struct {
		Downloads struct {
			Artifact struct {
				Path string `json:"path"`
				URL  string `json:"url"`
			} `json:"artifact"`
		} `json:"downloads"`
	} `json:"libraries"`
}

// Launch validates the local installation for spec's version and starts the
// game process. Installation problems come back as *domain.InstallError so
// the repair layer can act on them; anything else is a *domain.SpawnError.
func (l *Launcher) Launch(ctx context.Context, spec domain.LaunchSpec) (ports.GameProcess, error) {
	if err := spec.Validate(); err != nil {
		return nil, &domain.SpawnError{Cause: err}
	}

	versionID := spec.VersionNumber
	if versionID == "" {
		versionID = spec.VersionID
	}

	desc, classpath, err := l.preflight(spec.GameRoot, versionID)
	if err != nil {
		return nil, err
	}

	args := buildArgs(spec, desc, classpath)
	l.logger.Debug("spawning game process",
		zap.String("instanceId", spec.InstanceID),
		zap.String("java", spec.JavaExecutable),
		zap.Strings("args", maskSensitiveArgs(args)))

	return start(ctx, spec, args, l.logger)
}

// preflight verifies descriptor, client jar, and libraries, returning the
// parsed descriptor and the assembled classpath.
func (l *Launcher) preflight(gameRoot, versionID string) (descriptor, []string, error) {
	descriptorPath := filepath.Join(gameRoot, "versions", versionID, versionID+".json")
	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		return descriptor{}, nil, &domain.InstallError{Kind: domain.InstallMissingVersionJSON, Cause: err}
	}

	var desc descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return descriptor{}, nil, &domain.InstallError{Kind: domain.InstallMissingVersionJSON, Cause: err}
	}

	jarPath := filepath.Join(gameRoot, "versions", versionID, versionID+".jar")
	info, err := os.Stat(jarPath)
	if err != nil || info.Size() == 0 {
		return descriptor{}, nil, &domain.InstallError{Kind: domain.InstallCorruptedVersionJar, Cause: err}
	}

	classpath := []string{jarPath}
	var missing []domain.LibraryRef
	for _, library := range desc.Libraries {
		artifact := library.Downloads.Artifact
		if artifact.Path == "" {
			continue
		}

		libraryPath := filepath.Join(gameRoot, "libraries", filepath.FromSlash(artifact.Path))
		if _, err := os.Stat(libraryPath); err != nil {
			missing = append(missing, domain.LibraryRef{Path: artifact.Path, URL: artifact.URL})
			continue
		}
		classpath = append(classpath, libraryPath)
	}
	if len(missing) > 0 {
		return descriptor{}, nil, &domain.InstallError{Kind: domain.InstallMissingLibraries, Libraries: missing}
	}

	return desc, classpath, nil
}

func buildArgs(spec domain.LaunchSpec, desc descriptor, classpath []string) []string {
	mainClass := desc.MainClass
	if mainClass == "" {
		mainClass = "net.minecraft.client.main.Main"
	}

	versionName := spec.VersionID
	if spec.CustomVersion != "" {
		versionName = spec.CustomVersion
	}

	args := []string{
		fmt.Sprintf("-Xms%dM", spec.MinMemoryMB),
		fmt.Sprintf("-Xmx%dM", spec.MaxMemoryMB),
		"-cp", strings.Join(classpath, string(os.PathListSeparator)),
		mainClass,
		"--username", spec.Claims.Name,
		"--uuid", spec.Claims.UUID,
		"--accessToken", spec.Claims.AccessToken,
		"--userType", spec.Claims.UserType,
		"--version", versionName,
		"--versionType", spec.VersionType,
		"--gameDir", spec.GameRoot,
		"--launcherName", spec.LauncherTag,
	}

	return args
}

var sensitiveFlags = []string{"--accessToken", "--clientId", "--xuid", "--uuid"}

// maskSensitiveArgs blanks credential-bearing argument values before they
// reach any log or relayed line.
func maskSensitiveArgs(args []string) []string {
	masked := append([]string(nil), args...)
	for i := 0; i < len(masked)-1; i++ {
		for _, flag := range sensitiveFlags {
			if masked[i] == flag && masked[i+1] != "" {
				masked[i+1] = "***"
			}
		}
	}

	return masked
}

var sensitiveLinePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(sensitiveFlags))
	for _, flag := range sensitiveFlags {
		patterns[flag] = regexp.MustCompile(regexp.QuoteMeta(flag) + ` [^\s,}]+`)
	}
	return patterns
}()

// MaskSensitiveLine blanks credential-bearing flag values inside one relayed
// output line.
func MaskSensitiveLine(line string) string {
	for flag, pattern := range sensitiveLinePatterns {
		if strings.Contains(line, flag) {
			line = pattern.ReplaceAllString(line, flag+" ***")
		}
	}

	return line
}
