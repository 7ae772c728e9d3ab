// Package window queries the desktop for the currently focused window.
package window

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Titler returns the title of the active window.
type Titler interface {
	// ActiveTitle returns the focused window's title, or an empty string
	// with an error if it cannot be determined. Callers must treat failure
	// as "no context", never as a pipeline failure.
	ActiveTitle(ctx context.Context) (string, error)
}

// XdotoolTitler implements Titler using xdotool.
type XdotoolTitler struct {
	binary string
}

// NewXdotoolTitler creates a Titler shelling out to xdotool.
func NewXdotoolTitler() *XdotoolTitler {
	return &XdotoolTitler{binary: "xdotool"}
}

// ActiveTitle queries xdotool for the active window id, then its name.
func (x *XdotoolTitler) ActiveTitle(ctx context.Context) (string, error) {
	id, err := x.run(ctx, "getactivewindow")
	if err != nil {
		return "", fmt.Errorf("get active window: %w", err)
	}

	title, err := x.run(ctx, "getwindowname", id)
	if err != nil {
		return "", fmt.Errorf("get window name: %w", err)
	}

	return title, nil
}

func (x *XdotoolTitler) run(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, x.binary, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
