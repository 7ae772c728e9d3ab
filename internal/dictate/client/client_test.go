package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dictation.wav")
	if err := os.WriteFile(path, []byte("RIFF fake wav data"), 0644); err != nil {
		t.Fatalf("write test audio: %v", err)
	}
	return path
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got: %v", err)
	}
}

func TestOpenAIClientTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q, want whisper-1", got)
		}
		w.Write([]byte("hello world this is a test\n"))
	}))
	defer server.Close()

	c, err := NewOpenAIClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	text, err := c.Transcribe(context.Background(), writeTestAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello world this is a test" {
		t.Errorf("text = %q, want trimmed transcript", text)
	}
}

func TestOpenAIClientAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	c, err := NewOpenAIClient("bad-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	_, err = c.Transcribe(context.Background(), writeTestAudio(t))
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got: %v", err)
	}
}

func TestOpenAIClientNetworkFailure(t *testing.T) {
	// Point at a closed port.
	c, err := NewOpenAIClient("test-key",
		WithBaseURL("http://127.0.0.1:1"),
		WithTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	_, err = c.Transcribe(context.Background(), writeTestAudio(t))
	if err == nil {
		t.Fatal("expected network error")
	}
	if errors.Is(err, ErrAuth) {
		t.Errorf("network failure must not be classified as auth failure: %v", err)
	}
}

func TestLocalClientRequiresModel(t *testing.T) {
	_, err := NewLocalClient("whisper-cli", filepath.Join(t.TempDir(), "missing.bin"))
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestLocalClientTranscribe(t *testing.T) {
	dir := t.TempDir()

	modelPath := filepath.Join(dir, "ggml-base.en.bin")
	if err := os.WriteFile(modelPath, []byte("model"), 0644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	script := filepath.Join(dir, "whisper-cli")
	content := "#!/bin/sh\necho ' local transcript output '\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	c, err := NewLocalClient(script, modelPath)
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}

	text, err := c.Transcribe(context.Background(), writeTestAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "local transcript output" {
		t.Errorf("text = %q, want trimmed stdout", text)
	}
}

func TestLocalClientSurfacesStderr(t *testing.T) {
	dir := t.TempDir()

	modelPath := filepath.Join(dir, "model.bin")
	os.WriteFile(modelPath, []byte("model"), 0644)

	script := filepath.Join(dir, "whisper-cli")
	content := "#!/bin/sh\necho 'failed to load model' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	c, err := NewLocalClient(script, modelPath)
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}

	_, err = c.Transcribe(context.Background(), writeTestAudio(t))
	if err == nil {
		t.Fatal("expected error")
	}
}

// fakeTranscriber returns queued results in order.
type fakeTranscriber struct {
	results []fakeResult
	calls   int
}

type fakeResult struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	return r.text, r.err
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	fake := &fakeTranscriber{results: []fakeResult{
		{err: transient},
		{err: transient},
		{text: "recovered"},
	}}

	r := NewRetry(fake, WithBaseDelay(time.Millisecond))
	text, err := r.Transcribe(context.Background(), "/tmp/a.wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q, want %q", text, "recovered")
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

func TestRetryDoesNotRetryAuthFailure(t *testing.T) {
	fake := &fakeTranscriber{results: []fakeResult{
		{err: ErrAuth},
		{text: "should never get here"},
	}}

	r := NewRetry(fake, WithBaseDelay(time.Millisecond))
	_, err := r.Transcribe(context.Background(), "/tmp/a.wav")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", fake.calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	fake := &fakeTranscriber{results: []fakeResult{{err: transient}}}

	var retries int
	r := NewRetry(fake,
		WithRetryCount(2),
		WithBaseDelay(time.Millisecond),
		WithRetryCallback(func(attempt int, delay time.Duration, err error) {
			retries++
		}),
	)

	_, err := r.Transcribe(context.Background(), "/tmp/a.wav")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", fake.calls)
	}
	if retries != 2 {
		t.Errorf("retry callback invoked %d times, want 2", retries)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	fake := &fakeTranscriber{results: []fakeResult{{err: transient}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetry(fake, WithBaseDelay(time.Hour))
	_, err := r.Transcribe(ctx, "/tmp/a.wav")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
