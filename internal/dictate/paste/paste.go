// Package paste delivers final text into the focused window.
package paste

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common errors
var (
	ErrClipboardUnavailable = errors.New("clipboard utility unavailable")
	ErrInputUnavailable     = errors.New("input simulation utility unavailable")
)

// Dispatcher places text on the clipboard and simulates a paste shortcut.
type Dispatcher interface {
	// Deliver copies text to the clipboard, then simulates pasteKey into
	// the focused window. When ErrInputUnavailable is returned the text is
	// already on the clipboard for manual pasting.
	Deliver(ctx context.Context, text, pasteKey string) error
}

// X11Dispatcher implements Dispatcher with xclip and xdotool.
type X11Dispatcher struct {
	clipboardBinary string
	inputBinary     string
}

// NewX11Dispatcher creates a Dispatcher for X11 desktops.
func NewX11Dispatcher() *X11Dispatcher {
	return &X11Dispatcher{
		clipboardBinary: "xclip",
		inputBinary:     "xdotool",
	}
}

// Deliver writes to the clipboard first so a failed keystroke still leaves
// the text retrievable.
func (d *X11Dispatcher) Deliver(ctx context.Context, text, pasteKey string) error {
	if err := d.copy(ctx, text); err != nil {
		return err
	}
	return d.paste(ctx, pasteKey)
}

func (d *X11Dispatcher) copy(ctx context.Context, text string) error {
	if _, err := exec.LookPath(d.clipboardBinary); err != nil {
		return fmt.Errorf("%w: %s not found", ErrClipboardUnavailable, d.clipboardBinary)
	}

	cmd := exec.CommandContext(ctx, d.clipboardBinary, "-selection", "clipboard")
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

func (d *X11Dispatcher) paste(ctx context.Context, pasteKey string) error {
	if _, err := exec.LookPath(d.inputBinary); err != nil {
		return fmt.Errorf("%w: %s not found", ErrInputUnavailable, d.inputBinary)
	}

	cmd := exec.CommandContext(ctx, d.inputBinary, "key", pasteKey)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	return nil
}
