package dictate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/capture"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/cleanup"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/client"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/contextrules"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/journal"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/logging"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/notify"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/paste"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/session"
	"github.com/TechnicallyShaun/vox-orbis/internal/dictate/window"
)

// Service orchestrates the dictation pipeline. Each CLI invocation builds a
// fresh Service; the session marker file carries all state between them.
type Service struct {
	config      *Config
	store       *session.Store
	recorder    Recorder
	transcriber Transcriber
	cleaner     Cleaner
	titler      Titler
	resolver    ContextResolver
	dispatcher  Dispatcher
	notifier    Notifier
	journal     JournalWriter
	logger      logging.Logger
}

// StopResult reports what the stop pipeline produced. CleanupErr and
// DeliveryErr record degraded-but-successful outcomes; fatal failures are
// returned as errors from Stop instead.
type StopResult struct {
	RawText     string
	FinalText   string
	WindowTitle string
	Context     contextrules.Match
	Cleaned     bool
	CleanupErr  error
	DeliveryErr error
}

// NewService wires the production components for the given configuration.
func NewService(cfg *Config, logger logging.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard{}
	}

	store, err := session.NewStore("")
	if err != nil {
		return nil, err
	}

	transcriber, err := newTranscriber(cfg, logger)
	if err != nil {
		return nil, err
	}

	var cleaner Cleaner = cleanup.Passthrough{}
	if cfg.CleanupEnabled() {
		cleaner = cleanup.NewOpenAICleaner(cfg.APIKey, cleanup.WithModel(cfg.CleanupModel))
	}

	rules, err := contextrules.Load(cfg.ContextRules)
	if err != nil {
		// Malformed rules degrade to defaults, never block dictation.
		logger.Warn("context rules unavailable, using defaults",
			logging.String("path", cfg.ContextRules),
			logging.String("reason", err.Error()),
		)
	}

	jnl, err := journal.New(cfg.JournalDir, cfg.JournalEnabled())
	if err != nil {
		return nil, err
	}

	return &Service{
		config: cfg,
		store:  store,
		recorder: capture.NewRecorder(
			capture.WithBinary(cfg.RecorderBinary),
			capture.WithDevice(cfg.RecorderDevice),
		),
		transcriber: transcriber,
		cleaner:     cleaner,
		titler:      window.NewXdotoolTitler(),
		resolver:    rules,
		dispatcher:  paste.NewX11Dispatcher(),
		notifier:    notify.NewDesktopNotifier(cfg.NotificationsEnabled()),
		journal:     jnl,
		logger:      logger,
	}, nil
}

func newTranscriber(cfg *Config, logger logging.Logger) (Transcriber, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Mode {
	case ModeLocal:
		return client.NewLocalClient(cfg.LocalBinary, cfg.LocalModelPath,
			client.WithLanguage(cfg.Language))
	default:
		api, err := client.NewOpenAIClient(cfg.APIKey,
			client.WithModel(cfg.Model),
			client.WithTimeout(timeout),
		)
		if err != nil {
			return nil, err
		}
		return client.NewRetry(api, client.WithRetryCallback(
			func(attempt int, delay time.Duration, err error) {
				logger.Warn("transcription retry",
					logging.Int("attempt", attempt),
					logging.Duration("delay", delay),
					logging.String("reason", err.Error()),
				)
			})), nil
	}
}

// Start begins a recording session. Fails with session.ErrAlreadyActive if
// one is in progress. noCleanup is remembered in the session marker so the
// matching stop skips cleanup even when invoked without the flag.
func (s *Service) Start(ctx context.Context, noCleanup bool) error {
	// A marker whose capture process died should not wedge the hotkey.
	if stale, err := s.store.Stale(); err == nil && stale {
		s.logger.Warn("clearing stale session marker")
		s.store.Clear()
	}

	audioPath, err := capture.TempAudioPath(s.config.TempDir)
	if err != nil {
		return err
	}

	sess, err := s.store.Begin(audioPath)
	if err != nil {
		return err
	}
	sess.NoCleanup = noCleanup

	pid, err := s.recorder.Start(audioPath)
	if err != nil {
		// The marker must not outlive a recorder that never started.
		s.store.Clear()
		s.notifier.Error("Could not start recording")
		return fmt.Errorf("start capture: %w", err)
	}

	if err := s.store.Commit(sess, pid); err != nil {
		s.recorder.Stop(pid)
		s.store.Clear()
		return err
	}

	s.logger.Info("recording started",
		logging.String("audio", audioPath),
		logging.Int("pid", pid),
	)
	s.notifier.Recording()

	return nil
}

// Stop ends the active session and runs the transcribe, clean and deliver
// pipeline. Fails with session.ErrNoActiveSession if nothing is recording.
// Cleanup and delivery failures degrade rather than abort; they are
// reported in the StopResult.
func (s *Service) Stop(ctx context.Context, noCleanup bool) (*StopResult, error) {
	sess, err := s.store.End()
	if err != nil {
		return nil, err
	}
	noCleanup = noCleanup || sess.NoCleanup

	if err := s.recorder.Stop(sess.PID); err != nil {
		// The session is already cleared; a dead recorder must not leave
		// the state machine stuck in recording.
		s.logger.Error("capture process missing", err, logging.Int("pid", sess.PID))
		s.notifier.Error("Recording process was not running")
		return nil, fmt.Errorf("stop capture: %w", err)
	}

	s.notifier.Transcribing()

	raw, err := s.transcriber.Transcribe(ctx, sess.AudioPath)
	if err != nil {
		// Keep the audio for diagnostics or a manual retry.
		s.logger.Error("transcription failed", err, logging.String("audio", sess.AudioPath))
		s.notifier.Error("Transcription failed; audio kept at " + sess.AudioPath)
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	result := &StopResult{RawText: raw, FinalText: raw}

	if raw == "" {
		s.logger.Info("empty transcript, nothing to deliver")
		s.notifier.Warn("Nothing was recognized")
		s.removeAudio(sess.AudioPath)
		return result, nil
	}

	// Window context: failure here means defaults, never a dead pipeline.
	title, err := s.titler.ActiveTitle(ctx)
	if err != nil {
		s.logger.Warn("active window unavailable", logging.String("reason", err.Error()))
	}
	result.WindowTitle = title
	result.Context = s.resolver.Resolve(title)
	if result.Context.Matched {
		s.logger.Info("context rule matched",
			logging.String("rule", result.Context.Description),
			logging.String("window", title),
		)
	}

	if noCleanup || !s.config.CleanupEnabled() {
		// Pass-through: raw text, no network call.
	} else {
		cleaned, err := s.cleaner.Clean(ctx, raw, result.Context.ExtraContext)
		if err != nil {
			result.CleanupErr = err
			s.logger.Warn("cleanup unavailable, delivering raw transcript",
				logging.String("reason", err.Error()))
			s.notifier.Warn("Cleanup unavailable; pasting raw transcript")
		} else {
			result.FinalText = cleaned
			result.Cleaned = true
		}
	}

	if err := s.journal.Append(journal.Entry{
		Model:       s.config.CleanupModel,
		RawText:     result.RawText,
		CleanedText: result.FinalText,
		Context: journal.Context{
			WindowName:          title,
			ExtraContextApplied: result.Context.ExtraContext != "",
		},
	}); err != nil {
		s.logger.Warn("journal append failed", logging.String("reason", err.Error()))
	}

	// A matched rule's override wins; otherwise the configured default.
	pasteKey := result.Context.PasteKey
	if pasteKey == "" {
		pasteKey = s.config.PasteKey
	}

	if err := s.dispatcher.Deliver(ctx, result.FinalText, pasteKey); err != nil {
		result.DeliveryErr = err
		s.logger.Warn("delivery degraded", logging.String("reason", err.Error()))
		if errors.Is(err, paste.ErrInputUnavailable) {
			s.notifier.Warn("Paste failed; text is on the clipboard")
		} else {
			s.notifier.Warn("Clipboard unavailable; transcript printed to log")
		}
	} else {
		s.notifier.Done(result.FinalText)
	}

	s.removeAudio(sess.AudioPath)

	s.logger.Info("dictation complete",
		logging.String("window", title),
		logging.Bool("cleaned", result.Cleaned),
		logging.Int("chars", len(result.FinalText)),
	)

	return result, nil
}

// Toggle starts a session when idle, otherwise runs the stop pipeline.
// The marker file is consulted fresh, so toggling works across independent
// process invocations.
func (s *Service) Toggle(ctx context.Context, noCleanup bool) (*StopResult, error) {
	active, err := s.store.Active()
	if err != nil {
		return nil, err
	}

	if !active {
		return nil, s.Start(ctx, noCleanup)
	}
	return s.Stop(ctx, noCleanup)
}

// Active reports whether a recording session is in progress.
func (s *Service) Active() (bool, error) {
	return s.store.Active()
}

// removeAudio deletes the recording after successful transcription.
func (s *Service) removeAudio(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("could not remove audio file",
			logging.String("path", path),
			logging.String("reason", err.Error()),
		)
	}
}
