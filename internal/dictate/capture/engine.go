package capture

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Engine controls a long-lived local recognition process that stays
// initialized between dictations. Instead of spawning a recorder per
// session, the engine is resumed on start and suspended on stop.
type Engine interface {
	// Begin initializes the engine process.
	Begin(ctx context.Context) error
	// Suspend pauses capture; the engine stays loaded.
	Suspend(ctx context.Context) error
	// Resume continues capture after a suspend.
	Resume(ctx context.Context) error
	// Terminate shuts the engine down.
	Terminate(ctx context.Context) error
	// Ready reports whether the engine is initialized and controllable.
	Ready(ctx context.Context) bool
}

// CommandEngine drives an engine through its own control CLI, one
// subcommand per transition (begin/suspend/resume/end), the protocol
// nerd-dictation style tools expose.
type CommandEngine struct {
	binary string
	args   []string
}

// NewCommandEngine creates an Engine adapter for the given control binary.
// Extra args are passed before the subcommand on every invocation.
func NewCommandEngine(binary string, args ...string) *CommandEngine {
	return &CommandEngine{binary: binary, args: args}
}

func (e *CommandEngine) Begin(ctx context.Context) error   { return e.run(ctx, "begin") }
func (e *CommandEngine) Suspend(ctx context.Context) error { return e.run(ctx, "suspend") }
func (e *CommandEngine) Resume(ctx context.Context) error  { return e.run(ctx, "resume") }
func (e *CommandEngine) Terminate(ctx context.Context) error {
	return e.run(ctx, "end")
}

// Ready probes the binary without changing engine state.
func (e *CommandEngine) Ready(ctx context.Context) bool {
	if _, err := exec.LookPath(e.binary); err != nil {
		return false
	}
	return true
}

func (e *CommandEngine) run(ctx context.Context, subcommand string) error {
	args := append(append([]string{}, e.args...), subcommand)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s %s: %s: %w", e.binary, subcommand, msg, err)
		}
		return fmt.Errorf("%s %s: %w", e.binary, subcommand, err)
	}
	return nil
}
