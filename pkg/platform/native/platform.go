// Package native implements pkg/platform.Platform over the host operating
// system: real files, real wall clock.
package native

import (
	"os"
	"time"

	"github.com/aluvm/alu/pkg/platform"
)

// Platform is the os-backed implementation of platform.Platform.
type Platform struct {
	fs    FileSystem
	clock Clock
}

// New returns a Platform backed by the real file system and wall clock.
func New() *Platform {
	return &Platform{}
}

// FS returns the native file system.
func (p *Platform) FS() platform.FileSystem { return p.fs }

// Clock returns the native clock.
func (p *Platform) Clock() platform.Clock { return p.clock }

// FileSystem reads files from the host's real file system.
type FileSystem struct{}

// ReadFile reads path via os.ReadFile.
func (FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat reports whether path can be stat'd, distinguishing a missing file
// from other failures (e.g. permission denied) via the returned error.
func (FileSystem) Stat(path string) error {
	_, err := os.Stat(path)
	return err
}

// Clock sleeps via the real wall clock.
type Clock struct{}

// Sleep blocks for ms milliseconds using time.Sleep.
func (Clock) Sleep(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
