package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrModelNotFound indicates the local model file does not exist.
var ErrModelNotFound = errors.New("local model file not found")

// LocalClient implements Transcriber by invoking an on-device whisper.cpp
// style binary. Deterministic given the same audio and model; no network.
type LocalClient struct {
	binary    string
	modelPath string
	language  string
}

// LocalOption configures the LocalClient.
type LocalOption func(*LocalClient)

// WithLanguage sets the recognition language hint.
func WithLanguage(lang string) LocalOption {
	return func(c *LocalClient) {
		c.language = lang
	}
}

// NewLocalClient creates a client invoking binary with the model at
// modelPath. Returns ErrModelNotFound if the model file is missing.
func NewLocalClient(binary, modelPath string, opts ...LocalOption) (*LocalClient, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	c := &LocalClient{
		binary:    binary,
		modelPath: modelPath,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Transcribe runs the local engine on the audio file and returns its
// stdout. May take seconds proportional to audio length.
func (c *LocalClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	args := []string{"-m", c.modelPath, "-f", audioPath, "-nt"}
	if c.language != "" && c.language != "auto" {
		args = append(args, "-l", c.language)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("local transcription: %s: %w", msg, err)
		}
		return "", fmt.Errorf("local transcription: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
