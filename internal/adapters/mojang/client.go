// Package mojang talks to the canonical version manifest and artifact
// service.
package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

const (
	DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

	manifestCacheSize = 256
	artifactDirMode   = 0o755
	tempSuffix        = ".part"
)

// Client implements ports.VersionSource. Manifest lookups are cached so
// repeated repairs of the same session do not refetch the full manifest.
type Client struct {
	httpClient  *http.Client
	manifestURL string
	cache       *lru.Cache[string, ports.ManifestVersion]
	logger      *zap.Logger
}

var _ ports.VersionSource = (*Client)(nil)

func NewClient(httpClient *http.Client, manifestURL string, logger *zap.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[string, ports.ManifestVersion](manifestCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create manifest cache: %w", err)
	}

	return &Client{
		httpClient:  httpClient,
		manifestURL: manifestURL,
		cache:       cache,
		logger:      logger,
	}, nil
}

func (c *Client) Manifest(ctx context.Context) ([]ports.ManifestVersion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create manifest request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch version manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("version manifest returned status %d", resp.StatusCode)
	}

	var payload struct {
		Versions []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode version manifest: %w", err)
	}

	versions := make([]ports.ManifestVersion, 0, len(payload.Versions))
	for _, entry := range payload.Versions {
		version := ports.ManifestVersion{ID: entry.ID, Type: entry.Type, URL: entry.URL}
		versions = append(versions, version)
		c.cache.Add(entry.ID, version)
	}

	return versions, nil
}

func (c *Client) LookupVersion(ctx context.Context, versionID string) (ports.ManifestVersion, error) {
	if version, ok := c.cache.Get(versionID); ok {
		return version, nil
	}

	if _, err := c.Manifest(ctx); err != nil {
		return ports.ManifestVersion{}, err
	}

	if version, ok := c.cache.Get(versionID); ok {
		return version, nil
	}

	return ports.ManifestVersion{}, fmt.Errorf("version %q not present in manifest", versionID)
}

func (c *Client) FetchDescriptor(ctx context.Context, version ports.ManifestVersion, destPath string) (ports.VersionDescriptor, error) {
	if err := c.DownloadArtifact(ctx, version.URL, destPath); err != nil {
		return ports.VersionDescriptor{}, err
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		return ports.VersionDescriptor{}, fmt.Errorf("read downloaded descriptor: %w", err)
	}

	var payload struct {
		ID           string `json:"id"`
		InheritsFrom string `json:"inheritsFrom"`
		MainClass    string `json:"mainClass"`
		Downloads    struct {
			Client struct {
				URL string `json:"url"`
			} `json:"client"`
		} `json:"downloads"`
		Libraries []struct {
			Downloads struct {
				Artifact struct {
					Path string `json:"path"`
					URL  string `json:"url"`
				} `json:"artifact"`
			} `json:"downloads"`
		} `json:"libraries"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ports.VersionDescriptor{}, fmt.Errorf("parse version descriptor: %w", err)
	}

	descriptor := ports.VersionDescriptor{
		ID:           payload.ID,
		InheritsFrom: payload.InheritsFrom,
		MainClass:    payload.MainClass,
		ClientURL:    payload.Downloads.Client.URL,
	}
	for _, library := range payload.Libraries {
		artifact := library.Downloads.Artifact
		if artifact.Path == "" {
			continue
		}
		descriptor.Libraries = append(descriptor.Libraries, domain.LibraryRef{Path: artifact.Path, URL: artifact.URL})
	}

	return descriptor, nil
}

// DownloadArtifact streams url into destPath atomically: the payload lands
// in a temp file next to the target and is renamed over it, so a crash
// mid-download can never leave a truncated file at the canonical path.
func (c *Client) DownloadArtifact(ctx context.Context, url string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), artifactDirMode); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+"-*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("create temp artifact file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	written, err := io.Copy(tempFile, resp.Body)
	if err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp artifact file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp artifact file: %w", err)
	}

	if err := os.Rename(tempName, destPath); err != nil {
		return fmt.Errorf("replace artifact file: %w", err)
	}
	cleanup = false

	c.logger.Debug("downloaded artifact",
		zap.String("url", url), zap.String("dest", destPath), zap.Int64("bytes", written))

	return nil
}
