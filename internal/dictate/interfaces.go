package dictate

import (
	"context"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/contextrules"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/journal"
)

// Recorder owns the background capture process for a session.
type Recorder interface {
	// Start launches capture writing to path and returns the process PID
	// without blocking.
	Start(path string) (int, error)
	// Stop signals the capture process and waits until it has exited, so
	// the audio file is fully flushed before it is read.
	Stop(pid int) error
}

// Transcriber converts captured audio into raw text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Cleaner post-processes a raw transcript. On failure it returns the raw
// text along with an error wrapping cleanup.ErrUnavailable.
type Cleaner interface {
	Clean(ctx context.Context, raw, extraContext string) (string, error)
}

// Titler returns the title of the currently focused window.
type Titler interface {
	ActiveTitle(ctx context.Context) (string, error)
}

// ContextResolver matches a window title against the configured rules.
type ContextResolver interface {
	Resolve(windowTitle string) contextrules.Match
}

// Dispatcher delivers final text into the focused window.
type Dispatcher interface {
	Deliver(ctx context.Context, text, pasteKey string) error
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Recording()
	Transcribing()
	Done(text string)
	Warn(msg string)
	Error(msg string)
}

// JournalWriter records completed dictations.
type JournalWriter interface {
	Append(entry journal.Entry) error
}
