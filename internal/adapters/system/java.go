package system

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// javaAutoDetect is the configured-path sentinel meaning "find one for me".
const javaAutoDetect = "java"

type JavaLocator struct{}

var _ ports.JavaLocator = JavaLocator{}

// Locate resolves the configured java path to a concrete executable. An
// explicit path is trusted if it exists; the sentinel triggers a PATH probe
// followed by a scan of the platform's usual install directories.
func (JavaLocator) Locate(ctx context.Context, configured string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if configured != "" && configured != javaAutoDetect {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", &domain.JavaNotFoundError{Searched: []string{configured}}
	}

	searched := []string{"PATH"}
	if fromPath, err := exec.LookPath(javaAutoDetect); err == nil {
		return fromPath, nil
	}

	for _, base := range installBases() {
		searched = append(searched, base)
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			candidate := filepath.Join(base, entry.Name(), "bin", javaExecutableName())
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", &domain.JavaNotFoundError{Searched: searched}
}

func javaExecutableName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func installBases() []string {
	switch runtime.GOOS {
	case "windows":
		bases := []string{}
		if programFiles := os.Getenv("ProgramFiles"); programFiles != "" {
			bases = append(bases, filepath.Join(programFiles, "Java"))
		}
		if programFilesX86 := os.Getenv("ProgramFiles(x86)"); programFilesX86 != "" {
			bases = append(bases, filepath.Join(programFilesX86, "Java"))
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			bases = append(bases, filepath.Join(localAppData, "Programs", "Eclipse Adoptium"))
		}
		return bases
	case "darwin":
		return []string{"/Library/Java/JavaVirtualMachines"}
	default:
		home, _ := os.UserHomeDir()
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
			filepath.Join(home, ".jdks"),
		}
	}
}
