package monitoring

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	if L() == nil {
		t.Fatal("L() must never be nil")
	}
	// Must not panic.
	L().Infow("silent", "k", 1)
	Logf("silent %d", 2)
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	L().Infow("hello", "n", 3)
	Logf("formatted %s", "message")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "hello" {
		t.Errorf("first message = %q", entries[0].Message)
	}
	if entries[1].Message != "formatted message" {
		t.Errorf("second message = %q", entries[1].Message)
	}
}

func TestInit(t *testing.T) {
	l, err := Init(true)
	if err != nil {
		t.Fatal(err)
	}
	if l == nil {
		t.Fatal("Init should hand back the zap logger")
	}
	defer SetLogger(nil)
	if L() == nil {
		t.Error("Init must install the process logger")
	}

	if _, err := Init(false); err != nil {
		t.Errorf("production init failed: %v", err)
	}
	SetLogger(nil)
}
