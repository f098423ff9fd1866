// Package system answers simple OS queries: free disk space and Java
// executable discovery.
package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/turkuazz/launcher/internal/ports"
)

type DiskProber struct{}

var _ ports.DiskProber = DiskProber{}

// CheckSpace reports free space on the volume holding gameRoot against the
// fixed headroom floor. A game root that does not exist yet is probed at its
// nearest existing ancestor.
func (DiskProber) CheckSpace(gameRoot string) (ports.DiskSpace, error) {
	probePath := gameRoot
	for {
		if _, err := os.Stat(probePath); err == nil {
			break
		}
		parent := filepath.Dir(probePath)
		if parent == probePath {
			break
		}
		probePath = parent
	}

	usage, err := disk.Usage(probePath)
	if err != nil {
		return ports.DiskSpace{}, fmt.Errorf("probe disk usage for %q: %w", probePath, err)
	}

	return ports.DiskSpace{
		AvailableBytes: usage.Free,
		RequiredBytes:  ports.RequiredSpaceBytes,
	}, nil
}
