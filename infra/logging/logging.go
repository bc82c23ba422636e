// Package logging routes op/go-logging output to a file so it never mixes
// with the terminal UI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	oplog "github.com/op/go-logging"
)

const format = `%{time:2006-01-02T15:04:05.000} %{level:.4s} %{module} %{message}`

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Candidates lists the log file locations tried by Setup, in order.
func Candidates() []string {
	var out []string
	if p := os.Getenv("HNTUI_LOG_FILE"); p != "" {
		out = append(out, p)
	}
	if dir, err := os.UserCacheDir(); err == nil {
		out = append(out, filepath.Join(dir, "hntui", "hntui.log"))
	}
	return append(out, "hntui.log")
}

// Setup installs the global backend at level ("debug", "info", "warning",
// "error"). It returns the path written to, or "" when every candidate
// failed and output is discarded. The closer releases the file.
func Setup(level string) (string, io.Closer, error) {
	lvl, err := oplog.LogLevel(level)
	if err != nil {
		return "", nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var (
		w      io.Writer = io.Discard
		closer io.Closer = nopCloser{}
		path   string
	)
	for _, candidate := range Candidates() {
		f, err := openLog(candidate)
		if err != nil {
			continue
		}
		w, closer, path = f, f, candidate
		break
	}

	backend := oplog.NewBackendFormatter(
		oplog.NewLogBackend(w, "", 0),
		oplog.MustStringFormatter(format),
	)
	oplog.SetBackend(backend).SetLevel(lvl, "")
	return path, closer, nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
