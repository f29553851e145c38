package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: Level(false)}, &buf)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", got)
	}
	if !strings.Contains(got, "shown") {
		t.Errorf("expected warn message, got %q", got)
	}
}

func TestNewWithWriter_Debug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: Level(true), Encoding: "json"}, &buf)

	log.Debug("request")

	if !strings.Contains(buf.String(), `"msg":"request"`) {
		t.Errorf("expected json debug entry, got %q", buf.String())
	}
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "loud"}, &buf)

	log.Info("dropped")
	log.Error("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
