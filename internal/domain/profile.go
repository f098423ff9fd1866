package domain

import "errors"

// Profile is a named, user-defined launch configuration: a version target
// plus optional per-profile resource overrides.
type Profile struct {
	Name                 string
	VersionID            string
	IsCustomInstallation bool
	Overrides            *ProfileOverrides
}

// ProfileOverrides are per-profile settings that take precedence over the
// global defaults at resolution time. Zero values mean "not overridden".
type ProfileOverrides struct {
	RAMMB    int
	JavaPath string
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if p.VersionID == "" {
		return errors.New("profile version id is required")
	}
	if p.Overrides != nil && p.Overrides.RAMMB < 0 {
		return errors.New("profile ram override must not be negative")
	}

	return nil
}
