package session

import (
	"os"
	"path/filepath"
)

// Marker is the presence-only fact that distinguishes "same session as the
// login" from "the app was fully restarted". Session-only logins write it;
// bootstrap honors the persisted credential only while it is present.
//
// All operations are best-effort: a marker that cannot be written or read
// behaves as absent, which at worst logs a session-only user out on the
// next start. That degraded behavior is acceptable and never surfaced.
type Marker interface {
	Set()
	Has() bool
	Clear()
}

// FileMarker keeps the marker as an empty file in the OS temp directory.
// The OS clearing that directory across restarts plays the role a session
// cookie plays in a browser: the application never detects "restart"
// itself, it only checks presence on the next load.
type FileMarker struct {
	path string
}

func NewFileMarker(name string) *FileMarker {
	return &FileMarker{path: filepath.Join(os.TempDir(), name)}
}

func (m *FileMarker) Set() {
	_ = os.WriteFile(m.path, []byte{'1'}, 0o600)
}

func (m *FileMarker) Has() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

func (m *FileMarker) Clear() {
	_ = os.Remove(m.path)
}
