package services_test

import (
	"errors"
	"strings"
	"testing"

	"subgen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConfiguration, "srtfile", "write", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"srtfile", "write", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestMarkerLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "config", "load", "bad", nil), "validation"},
		{services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), "configuration"},
		{services.Wrap(services.ErrTimeout, "api", "call", "slow", nil), "timeout"},
		{services.Wrap(services.ErrTransient, "history", "insert", "busy", errors.New("io")), "transient"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range tests {
		if got := services.MarkerLabel(tc.err); got != tc.want {
			t.Fatalf("MarkerLabel(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
