package application

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

// maxRepairRounds bounds the repair loop: one repair plus one cross-repair,
// never more. A failure after that is surfaced verbatim.
const maxRepairRounds = 2

// Repairer restores missing or corrupted installation artifacts from the
// remote manifest/artifact source. Repair is idempotent: every download
// lands atomically, and repairing an already-valid artifact is a harmless
// no-op replacement.
type Repairer struct {
	source ports.VersionSource
	logger *zap.Logger
}

func NewRepairer(source ports.VersionSource, logger *zap.Logger) *Repairer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Repairer{source: source, logger: logger}
}

func descriptorPath(gameRoot, versionID string) string {
	return filepath.Join(gameRoot, "versions", versionID, versionID+".json")
}

func clientJarPath(gameRoot, versionID string) string {
	return filepath.Join(gameRoot, "versions", versionID, versionID+".jar")
}

// Verify inspects the local installation without any network I/O. It
// returns nil when the version is valid: descriptor parses, client archive
// exists non-empty, and every declared library is present.
func (r *Repairer) Verify(gameRoot, versionID string) *domain.InstallError {
	data, err := os.ReadFile(descriptorPath(gameRoot, versionID))
	if err != nil {
		return &domain.InstallError{Kind: domain.InstallMissingVersionJSON, Cause: err}
	}

	var descriptor struct {
		Libraries []struct {
			Downloads struct {
				Artifact struct {
					Path string `json:"path"`
					URL  string `json:"url"`
				} `json:"artifact"`
			} `json:"downloads"`
		} `json:"libraries"`
	}
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return &domain.InstallError{Kind: domain.InstallMissingVersionJSON, Cause: err}
	}

	info, err := os.Stat(clientJarPath(gameRoot, versionID))
	if err != nil || info.Size() == 0 {
		return &domain.InstallError{Kind: domain.InstallCorruptedVersionJar, Cause: err}
	}

	var missing []domain.LibraryRef
	for _, library := range descriptor.Libraries {
		artifact := library.Downloads.Artifact
		if artifact.Path == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(gameRoot, "libraries", filepath.FromSlash(artifact.Path))); err != nil {
			missing = append(missing, domain.LibraryRef{Path: artifact.Path, URL: artifact.URL})
		}
	}
	if len(missing) > 0 {
		return &domain.InstallError{Kind: domain.InstallMissingLibraries, Libraries: missing}
	}

	return nil
}

// Repair fetches the artifacts named by one classified install error.
// Unclassified errors are surfaced immediately with no repair attempt.
func (r *Repairer) Repair(ctx context.Context, gameRoot, versionID string, installErr *domain.InstallError) error {
	switch installErr.Kind {
	case domain.InstallCorruptedVersionJar, domain.InstallMissingVersionJSON:
		return r.repairVersionFiles(ctx, gameRoot, versionID)
	case domain.InstallMissingLibraries:
		return r.repairLibraries(ctx, gameRoot, installErr.Libraries)
	default:
		return installErr
	}
}

func (r *Repairer) repairVersionFiles(ctx context.Context, gameRoot, versionID string) error {
	manifestEntry, err := r.source.LookupVersion(ctx, versionID)
	if err != nil {
		return fmt.Errorf("lookup version %q in manifest: %w", versionID, err)
	}

	r.logger.Info("repairing version files",
		zap.String("version", versionID), zap.String("descriptorUrl", manifestEntry.URL))

	descriptor, err := r.source.FetchDescriptor(ctx, manifestEntry, descriptorPath(gameRoot, versionID))
	if err != nil {
		return fmt.Errorf("fetch version descriptor: %w", err)
	}
	if descriptor.ClientURL == "" {
		return fmt.Errorf("version descriptor %q names no client archive", versionID)
	}

	if err := r.source.DownloadArtifact(ctx, descriptor.ClientURL, clientJarPath(gameRoot, versionID)); err != nil {
		return fmt.Errorf("download client archive: %w", err)
	}

	return nil
}

func (r *Repairer) repairLibraries(ctx context.Context, gameRoot string, libraries []domain.LibraryRef) error {
	for _, library := range libraries {
		dest := filepath.Join(gameRoot, "libraries", filepath.FromSlash(library.Path))
		r.logger.Info("repairing library", zap.String("path", library.Path))

		if err := r.source.DownloadArtifact(ctx, library.URL, dest); err != nil {
			return fmt.Errorf("download library %q: %w", library.Path, err)
		}
	}

	return nil
}

// EnsureInstallable verifies the local installation for versionID and
// repairs what is missing, up to the repair budget. A valid installation
// performs zero network calls.
func (r *Repairer) EnsureInstallable(ctx context.Context, gameRoot, versionID string) error {
	for round := 0; round < maxRepairRounds; round++ {
		installErr := r.Verify(gameRoot, versionID)
		if installErr == nil {
			return nil
		}

		if err := r.Repair(ctx, gameRoot, versionID, installErr); err != nil {
			return err
		}
	}

	if installErr := r.Verify(gameRoot, versionID); installErr != nil {
		return &domain.RepairFailedError{Last: installErr}
	}

	return nil
}
