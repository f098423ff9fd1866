package ports

import "context"

// RequiredSpaceBytes is the fixed headroom floor checked before any launch.
const RequiredSpaceBytes = 2 * 1024 * 1024 * 1024

type DiskSpace struct {
	AvailableBytes uint64
	RequiredBytes  uint64
}

func (d DiskSpace) HasSpace() bool {
	return d.AvailableBytes >= d.RequiredBytes
}

func (d DiskSpace) AvailableGB() float64 {
	return float64(d.AvailableBytes) / (1024 * 1024 * 1024)
}

func (d DiskSpace) RequiredGB() float64 {
	return float64(d.RequiredBytes) / (1024 * 1024 * 1024)
}

type DiskProber interface {
	CheckSpace(gameRoot string) (DiskSpace, error)
}

// JavaLocator resolves a configured java path into a concrete executable.
// The sentinel "java" (or empty) means auto-detect: probe PATH and a small
// set of platform install directories; first match wins. Failure to resolve
// is a *domain.JavaNotFoundError.
type JavaLocator interface {
	Locate(ctx context.Context, configured string) (string, error)
}
