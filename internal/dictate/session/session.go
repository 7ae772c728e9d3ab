// Package session persists recording-session state across CLI invocations.
//
// Each hotkey press spawns a fresh process, so the marker file is the single
// source of truth for whether a recording is in progress. The marker is
// created with O_EXCL so two rapid toggle presses cannot both begin a
// session.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Common errors
var (
	ErrAlreadyActive   = errors.New("a recording session is already active")
	ErrNoActiveSession = errors.New("no active recording session")
	ErrCorruptMarker   = errors.New("session marker is corrupt")
)

const (
	markerFileName = "session.json"
	dirPerm        = 0755
	filePerm       = 0644
)

// Session describes one start-to-stop recording interval.
type Session struct {
	PID       int       `json:"pid"`
	AudioPath string    `json:"audio_path"`
	StartedAt time.Time `json:"started_at"`
	// NoCleanup carries a start-time request to skip transcript cleanup
	// through to the stop invocation.
	NoCleanup bool `json:"no_cleanup,omitempty"`
}

// Store manages the session marker file.
type Store struct {
	dir string
}

// NewStore creates a Store keeping its marker under dir.
// If dir is empty, ~/.vox is used.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".vox")
	}
	return &Store{dir: dir}, nil
}

// MarkerPath returns the path to the session marker file.
func (s *Store) MarkerPath() string {
	return filepath.Join(s.dir, markerFileName)
}

// Begin claims the session marker for a new recording.
// Returns ErrAlreadyActive if a marker already exists. The marker initially
// records PID 0; Commit stores the capture PID once the recorder is running.
func (s *Store) Begin(audioPath string) (*Session, error) {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	sess := &Session{
		AudioPath: audioPath,
		StartedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	// O_EXCL makes create-if-absent atomic; a concurrent Begin loses here
	// rather than after a read-then-write window.
	f, err := os.OpenFile(s.MarkerPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyActive
		}
		return nil, fmt.Errorf("create session marker: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(s.MarkerPath())
		return nil, fmt.Errorf("write session marker: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(s.MarkerPath())
		return nil, fmt.Errorf("close session marker: %w", err)
	}

	return sess, nil
}

// Commit records the capture process PID in the existing marker.
func (s *Store) Commit(sess *Session, pid int) error {
	sess.PID = pid

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(s.MarkerPath(), data, filePerm); err != nil {
		return fmt.Errorf("update session marker: %w", err)
	}
	return nil
}

// End removes the marker and returns the session it described.
// Returns ErrNoActiveSession if no marker exists. A corrupt marker is
// removed anyway so the state machine cannot wedge; the error is still
// returned since the audio path is unrecoverable.
func (s *Store) End() (*Session, error) {
	sess, err := s.read()
	if err != nil {
		if errors.Is(err, ErrCorruptMarker) {
			os.Remove(s.MarkerPath())
		}
		return nil, err
	}

	if err := os.Remove(s.MarkerPath()); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove session marker: %w", err)
	}

	return sess, nil
}

// Active reports whether a session marker exists, without side effects.
func (s *Store) Active() (bool, error) {
	_, err := os.Stat(s.MarkerPath())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat session marker: %w", err)
}

// Current returns the active session without removing the marker.
// Returns ErrNoActiveSession if no marker exists.
func (s *Store) Current() (*Session, error) {
	return s.read()
}

// Stale reports whether the marker exists but cannot describe a live
// recording: its capture process is gone, it was never committed, or its
// content is unreadable. Stale markers are safe to clear.
func (s *Store) Stale() (bool, error) {
	sess, err := s.read()
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return false, nil
		}
		if errors.Is(err, ErrCorruptMarker) {
			return true, nil
		}
		return false, err
	}

	if sess.PID <= 0 {
		// Begin ran but Commit never did; the recorder never started.
		return true, nil
	}

	return !processAlive(sess.PID), nil
}

// Clear removes the marker unconditionally. Returns nil if it is absent.
func (s *Store) Clear() error {
	if err := os.Remove(s.MarkerPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session marker: %w", err)
	}
	return nil
}

func (s *Store) read() (*Session, error) {
	data, err := os.ReadFile(s.MarkerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("read session marker: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMarker, err)
	}
	return &sess, nil
}

// processAlive probes a PID with signal 0. EPERM means the process exists
// but belongs to someone else, which still counts as alive.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
