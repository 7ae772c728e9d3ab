// Package notify surfaces dictation outcomes as desktop notifications.
//
// The CLI is invoked from a keyboard shortcut with no visible terminal, so
// notifications are the user's only feedback channel. Notification failures
// are never fatal.
package notify

import "github.com/gen2brain/beeep"

const appName = "Vox"

// Notifier sends desktop notifications.
type Notifier interface {
	Recording()
	Transcribing()
	Done(text string)
	Warn(msg string)
	Error(msg string)
}

// DesktopNotifier implements Notifier with system notifications.
type DesktopNotifier struct {
	enabled bool
}

// NewDesktopNotifier creates a Notifier. When enabled is false every method
// is a no-op.
func NewDesktopNotifier(enabled bool) *DesktopNotifier {
	return &DesktopNotifier{enabled: enabled}
}

// Recording announces that capture has started.
func (n *DesktopNotifier) Recording() {
	n.send("Recording started", "Press the hotkey again to stop")
}

// Transcribing announces that the stop pipeline is running.
func (n *DesktopNotifier) Transcribing() {
	n.send("Transcribing", "")
}

// Done announces successful delivery, previewing the text.
func (n *DesktopNotifier) Done(text string) {
	n.send("Finished", truncate(text, 100))
}

// Warn announces a degraded but non-fatal outcome.
func (n *DesktopNotifier) Warn(msg string) {
	n.send("Warning", msg)
}

// Error announces a fatal outcome.
func (n *DesktopNotifier) Error(msg string) {
	n.send("Error", msg)
}

func (n *DesktopNotifier) send(title, message string) {
	if !n.enabled {
		return
	}
	_ = beeep.Notify(appName+": "+title, message, "")
}

// truncate shortens s to at most max runes, never splitting one mid-byte.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
