package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapIncludesPhaseContext(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(ErrExternalTool, "extension-fix", "detect format", "Format detection failed", underlying)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Fatalf("expected underlying error to be preserved, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extension-fix", "detect format", "Format detection failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "match", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Wrap(ErrUsage, "", "parse args", "Too many arguments", nil)) {
		t.Fatal("usage errors should be fatal")
	}
	if !IsFatal(Wrap(ErrConfiguration, "", "preflight", "file binary missing", nil)) {
		t.Fatal("configuration errors should be fatal")
	}
	if IsFatal(Wrap(ErrExternalTool, "extension-fix", "detect", "detection failed", nil)) {
		t.Fatal("external tool errors are per-file, not fatal")
	}
}
