// Package capture owns the microphone recording process lifecycle.
package capture

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// ErrProcessNotFound is returned when the capture process expected to be
// recording is no longer running, e.g. it was killed externally.
var ErrProcessNotFound = errors.New("capture process not found")

// DefaultStopTimeout is how long Stop waits for the recorder to flush and
// exit after being signalled.
const DefaultStopTimeout = 5 * time.Second

// Recorder launches a detached ffmpeg process writing mono 16 kHz WAV,
// the format whisper models expect.
type Recorder struct {
	binary      string
	device      string
	stopTimeout time.Duration
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithBinary overrides the capture binary (default "ffmpeg").
func WithBinary(path string) RecorderOption {
	return func(r *Recorder) {
		r.binary = path
	}
}

// WithDevice sets the ALSA input device (default "default").
func WithDevice(device string) RecorderOption {
	return func(r *Recorder) {
		r.device = device
	}
}

// WithStopTimeout sets how long Stop waits for the process to exit.
func WithStopTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.stopTimeout = d
	}
}

// NewRecorder creates a Recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		binary:      "ffmpeg",
		device:      "default",
		stopTimeout: DefaultStopTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start launches the capture process writing to path and returns its PID
// without waiting. The process is placed in its own session so it survives
// the CLI process exiting.
func (r *Recorder) Start(path string) (int, error) {
	cmd := exec.Command(r.binary,
		"-f", "alsa",
		"-i", r.device,
		"-ac", "1",
		"-ar", "16000",
		"-v", "quiet",
		"-y",
		path,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", r.binary, err)
	}

	pid := cmd.Process.Pid

	// The CLI exits before the recorder does; reap it in the background so
	// a same-process caller (tests, toggle-within-process) leaves no zombie.
	go cmd.Wait()

	return pid, nil
}

// Stop signals the capture process to finalize the file and waits for it to
// exit so the WAV header is fully flushed before the audio is read.
// Returns ErrProcessNotFound if the process is already gone.
func (r *Recorder) Stop(pid int) error {
	if pid <= 0 {
		return ErrProcessNotFound
	}

	// SIGINT lets ffmpeg close the WAV container properly.
	if err := syscall.Kill(pid, syscall.SIGINT); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return ErrProcessNotFound
		}
		return fmt.Errorf("signal capture process: %w", err)
	}

	if !waitForExit(pid, r.stopTimeout) {
		// Refusing to die after SIGINT; force it so the session can end.
		if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("kill capture process: %w", err)
		}
		waitForExit(pid, 2*time.Second)
	}

	return nil
}

// waitForExit polls until the process exits or the timeout is reached.
func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	pollInterval := 50 * time.Millisecond

	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); err != nil {
			return true // Process gone
		}
		time.Sleep(pollInterval)
	}

	return false
}

// Available reports whether the capture binary can be found.
func (r *Recorder) Available() bool {
	if _, err := exec.LookPath(r.binary); err != nil {
		return false
	}
	return true
}

// TempAudioPath builds a timestamped recording path under dir, creating the
// directory if needed.
func TempAudioPath(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create recordings directory: %w", err)
	}
	name := fmt.Sprintf("dictation_%s.wav", time.Now().Format("20060102_150405"))
	return fmt.Sprintf("%s/%s", dir, name), nil
}
