package services

import (
	"errors"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrTimeout, "matching", "invoke backend", "backend did not respond", cause)

	if !errors.Is(err, ErrTimeout) {
		t.Error("wrapped error should match marker")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause")
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "stage", "op", "msg", nil)
	if !errors.Is(err, ErrTransient) {
		t.Error("nil marker should default to transient")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(Wrap(ErrConfiguration, "config", "validate", "bad template", nil)) {
		t.Error("configuration errors are fatal")
	}
	if IsFatal(Wrap(ErrTimeout, "matching", "invoke", "", nil)) {
		t.Error("timeouts are not fatal")
	}
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
}
