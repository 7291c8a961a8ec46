package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner executes the external OCR tools. Tests swap in a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs tools through os/exec.
type ExecRunner struct {
	Logger *slog.Logger
	// Dir is the working directory of every command; empty means the
	// current one.
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	began := time.Now()
	err := cmd.Run()
	attrs := []any{"tool", name, "elapsed", time.Since(began).Round(time.Millisecond)}
	if err != nil {
		logger.Error("ocr tool failed", append(attrs, "args", args, "error", err, "stderr", tail(stderr.Bytes(), 4<<10))...)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	logger.Debug("ocr tool finished", append(attrs, "stdout_bytes", stdout.Len())...)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// tail keeps the last n bytes of b; tesseract and poppler print the cause
// of a failure last.
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return "..." + string(b[len(b)-n:])
}
