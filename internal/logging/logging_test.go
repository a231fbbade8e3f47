package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New(&buf, "", "info")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Debug("hidden")
		logger.Info("shown", "k", "v")
		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Fatalf("debug line leaked at info level: %s", out)
		}
		if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
			t.Fatalf("expected JSON output, got %s", out)
		}
	})

	t.Run("text with debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New(&buf, "TEXT", "debug")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Debug("visible")
		if !strings.Contains(buf.String(), "msg=visible") {
			t.Fatalf("expected text output, got %s", buf.String())
		}
	})

	t.Run("rejects bad values", func(t *testing.T) {
		t.Parallel()

		if _, err := New(&bytes.Buffer{}, "xml", "info"); err == nil {
			t.Fatal("expected error for unknown format")
		}
		if _, err := New(&bytes.Buffer{}, "json", "loud"); err == nil {
			t.Fatal("expected error for unknown level")
		}
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil logger on empty context")
	}

	logger, _ := New(&bytes.Buffer{}, "json", "info")
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected logger round trip through context")
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatal("expected nil logger to leave context untouched")
	}
}
