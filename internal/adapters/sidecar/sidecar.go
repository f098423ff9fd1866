// Package sidecar reads and writes the launcher_profiles.json document
// shared with other launchers under the same game root.
package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turkuazz/launcher/internal/domain"
	"github.com/turkuazz/launcher/internal/ports"
)

const (
	sidecarFileName   = "launcher_profiles.json"
	profileTypeCustom = "custom"

	sidecarFileMode = 0o644
	sidecarDirMode  = 0o755
	tempFilePattern = ".launcher_profiles-*.json.tmp"
)

type profileEntry struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	LastVersionID string `json:"lastVersionId,omitempty"`
	Created       string `json:"created,omitempty"`
	LastUsed      string `json:"lastUsed,omitempty"`

	// Per-profile overrides ride on the sidecar's native fields: a heap
	// override becomes -Xmx in javaArgs, a java override becomes javaDir.
	JavaArgs string `json:"javaArgs,omitempty"`
	JavaDir  string `json:"javaDir,omitempty"`
}

type sidecarDocument struct {
	Profiles map[string]profileEntry `json:"profiles"`
}

type Sidecar struct {
	clock ports.Clock
}

var _ ports.ProfileSidecar = (*Sidecar)(nil)

func New(clock ports.Clock) *Sidecar {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Sidecar{clock: clock}
}

// Load imports profiles from the sidecar, skipping the launcher-managed
// latest-release/latest-snapshot pseudo entries.
func (s *Sidecar) Load(ctx context.Context, gameRoot string) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	document, err := readDocument(sidecarPath(gameRoot))
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(document.Profiles))
	for id, entry := range document.Profiles {
		if entry.Type == "latest-release" || entry.Type == "latest-snapshot" {
			continue
		}
		if entry.LastVersionID == "" {
			continue
		}

		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("Profile (%s)", truncateID(id))
		}

		profiles = append(profiles, domain.Profile{
			Name:                 name,
			VersionID:            entry.LastVersionID,
			IsCustomInstallation: entry.Type == profileTypeCustom,
			Overrides:            overridesFromEntry(entry),
		})
	}

	return profiles, nil
}

// Save replaces every locally-managed ("custom") entry with the given
// profiles and preserves foreign entries untouched.
func (s *Sidecar) Save(ctx context.Context, gameRoot string, profiles []domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := sidecarPath(gameRoot)
	document, err := readDocument(path)
	if err != nil {
		return err
	}
	if document.Profiles == nil {
		document.Profiles = make(map[string]profileEntry)
	}

	for id, entry := range document.Profiles {
		if entry.Type == profileTypeCustom {
			delete(document.Profiles, id)
		}
	}

	now := s.clock.Now().UTC().Format(time.RFC3339)
	for _, profile := range profiles {
		id := profileID(profile.Name)
		entry := profileEntry{
			Name:          profile.Name,
			Type:          profileTypeCustom,
			LastVersionID: profile.VersionID,
			Created:       now,
			LastUsed:      now,
		}
		if profile.Overrides != nil {
			entry.JavaDir = profile.Overrides.JavaPath
			if profile.Overrides.RAMMB > 0 {
				entry.JavaArgs = fmt.Sprintf("-Xmx%dM", profile.Overrides.RAMMB)
			}
		}
		document.Profiles[id] = entry
	}

	return writeDocument(path, document)
}

var maxHeapPattern = regexp.MustCompile(`-Xmx(\d+)M\b`)

func overridesFromEntry(entry profileEntry) *domain.ProfileOverrides {
	overrides := domain.ProfileOverrides{JavaPath: entry.JavaDir}
	if match := maxHeapPattern.FindStringSubmatch(entry.JavaArgs); match != nil {
		if ramMB, err := strconv.Atoi(match[1]); err == nil {
			overrides.RAMMB = ramMB
		}
	}

	if overrides == (domain.ProfileOverrides{}) {
		return nil
	}
	return &overrides
}

func sidecarPath(gameRoot string) string {
	return filepath.Join(gameRoot, sidecarFileName)
}

func profileID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

func truncateID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

func readDocument(path string) (sidecarDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sidecarDocument{}, nil
		}
		return sidecarDocument{}, fmt.Errorf("read profiles sidecar: %w", err)
	}

	var document sidecarDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return sidecarDocument{}, fmt.Errorf("decode profiles sidecar: %w", err)
	}

	return document, nil
}

func writeDocument(path string, document sidecarDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), sidecarDirMode); err != nil {
		return fmt.Errorf("create game root: %w", err)
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profiles sidecar: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp sidecar file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp sidecar file: %w", err)
	}
	if err := tempFile.Chmod(sidecarFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp sidecar file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp sidecar file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace sidecar file: %w", err)
	}
	cleanup = false

	return nil
}
