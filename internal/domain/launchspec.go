package domain

import "fmt"

const (
	// MaxMemoryMBCeiling caps resolved heap sizes at a sane upper bound.
	MaxMemoryMBCeiling = 16384

	UserTypeLegacy = "legacy"
	UserTypeMojang = "mojang"
)

// IdentityClaims are the auth fields handed to the spawned game process.
type IdentityClaims struct {
	Name        string
	UUID        string
	AccessToken string
	UserType    string
}

// LaunchSpec is the concrete, runnable configuration produced per launch.
// It is derived fresh for each instance and never persisted.
type LaunchSpec struct {
	InstanceID     string
	VersionID      string
	GameRoot       string
	JavaExecutable string
	MinMemoryMB    int
	MaxMemoryMB    int
	Claims         IdentityClaims
	LauncherTag    string

	// VersionNumber is the version actually fed to the process layer; it
	// differs from VersionID when the target descriptor inherits from a
	// parent version, in which case CustomVersion carries the child id.
	VersionNumber string
	VersionType   string
	CustomVersion string
}

func (s LaunchSpec) Validate() error {
	if s.InstanceID == "" {
		return fmt.Errorf("launch spec instance id is required")
	}
	if s.VersionID == "" {
		return fmt.Errorf("launch spec version id is required")
	}
	if s.GameRoot == "" {
		return fmt.Errorf("launch spec game root is required")
	}
	if s.JavaExecutable == "" {
		return fmt.Errorf("launch spec java executable is required")
	}
	if s.MinMemoryMB != s.MaxMemoryMB {
		return fmt.Errorf("launch spec memory bounds must match: min %d, max %d", s.MinMemoryMB, s.MaxMemoryMB)
	}
	if s.MaxMemoryMB <= 0 {
		return fmt.Errorf("launch spec memory must be positive, got %d", s.MaxMemoryMB)
	}
	if s.MaxMemoryMB > MaxMemoryMBCeiling {
		return fmt.Errorf("launch spec memory %dMB exceeds ceiling %dMB", s.MaxMemoryMB, MaxMemoryMBCeiling)
	}

	return nil
}
