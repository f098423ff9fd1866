package ports

import (
	"context"

	"github.com/turkuazz/launcher/internal/domain"
)

// ManifestVersion is one entry of the canonical remote version manifest.
type ManifestVersion struct {
	ID   string
	Type string
	URL  string
}

// VersionDescriptor is the parsed version JSON naming the client archive and
// the dependent libraries.
type VersionDescriptor struct {
	ID           string
	InheritsFrom string
	MainClass    string
	ClientURL    string
	Libraries    []domain.LibraryRef
}

// VersionSource fetches version metadata and artifacts from the remote
// manifest/artifact service. All file writes are atomic: download to a temp
// suffix, then rename over the target.
type VersionSource interface {
	Manifest(ctx context.Context) ([]ManifestVersion, error)
	LookupVersion(ctx context.Context, versionID string) (ManifestVersion, error)
	// FetchDescriptor downloads the descriptor JSON for version to destPath
	// and returns the parsed form.
	FetchDescriptor(ctx context.Context, version ManifestVersion, destPath string) (VersionDescriptor, error)
	DownloadArtifact(ctx context.Context, url string, destPath string) error
}
