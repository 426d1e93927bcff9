package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/mcp-starter/middleware"
)

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	l, closeLog, err := setupLogging(&buf, "info", "")
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	defer closeLog()

	logger := newLogrusLogger(l)
	logger.Info("request completed", middleware.F("method", "tools/call"), middleware.F("code", -32602))
	logger.Debug("hidden")

	out := buf.String()
	for _, want := range []string{"level=info", `msg="request completed"`, "method=tools/call", "code=-32602"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level:\n%s", out)
	}
}

func TestSetupLogging(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		if _, _, err := setupLogging(&bytes.Buffer{}, "chatty", ""); err == nil {
			t.Error("expected error for invalid level")
		}
	})

	t.Run("log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "server.log")
		var buf bytes.Buffer
		l, closeLog, err := setupLogging(&buf, "debug", path)
		if err != nil {
			t.Fatalf("setupLogging() error = %v", err)
		}
		newLogrusLogger(l).Warn("slow request")
		if err := closeLog(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "slow request") || !strings.Contains(buf.String(), "slow request") {
			t.Errorf("entry not written to both outputs: file=%q stderr=%q", data, buf.String())
		}
	})
}
