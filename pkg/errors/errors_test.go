package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigRange, "axis %s: min %.1f > max %.1f", "x", 2.0, 1.0)

	if err.Code != ErrCodeConfigRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfigRange)
	}

	if err.Message != "axis x: min 2.0 > max 1.0" {
		t.Errorf("Message = %v", err.Message)
	}

	expected := "CONFIG_INVALID_RANGE: axis x: min 2.0 > max 1.0"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSceneSource, cause, "load scene")

	if err.Code != ErrCodeSceneSource {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSceneSource)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeConfigMissing, "missing [images] section")

	if !Is(err, ErrCodeConfigMissing) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeExport) {
		t.Error("Is should not match a different code")
	}

	// Works through wrapping with %w
	wrapped := fmt.Errorf("startup: %w", err)
	if !Is(wrapped, ErrCodeConfigMissing) {
		t.Error("Is should match through fmt.Errorf wrapping")
	}

	if Is(errors.New("plain"), ErrCodeConfigMissing) {
		t.Error("Is should not match plain errors")
	}
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeConfigMissing, true},
		{ErrCodeConfigRange, true},
		{ErrCodeConfigValue, true},
		{ErrCodeSceneSource, true},
		{ErrCodeRender, false},
		{ErrCodeRoleNotFound, false},
	}

	for _, tt := range tests {
		err := New(tt.code, "msg")
		if got := IsConfiguration(err); got != tt.want {
			t.Errorf("IsConfiguration(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}

	if IsConfiguration(errors.New("plain")) {
		t.Error("plain errors are not configuration errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "boom")); got != ErrCodeInternal {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeInternal)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeConfigValue, "seed must be positive")
	if got := UserMessage(err); got != "seed must be positive" {
		t.Errorf("UserMessage = %v", got)
	}
	plain := errors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage on plain error = %v", got)
	}
}
