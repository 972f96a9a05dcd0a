package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "invalid input")

	if err.Code != CodeValidation {
		t.Errorf("expected code=%s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "invalid input" {
		t.Errorf("expected message='invalid input', got %s", err.Message)
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeNotFound, "job %s not found", "job123")

	if err.Code != CodeNotFound {
		t.Errorf("expected code=%s, got %s", CodeNotFound, err.Code)
	}
	if err.Message != "job job123 not found" {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "simple error",
			err:      New(CodeValidation, "invalid"),
			contains: []string{"VALIDATION_ERROR", "invalid"},
		},
		{
			name: "error with op",
			err: &Error{
				Code:    CodeInternal,
				Message: "db failed",
				Op:      "job.create",
			},
			contains: []string{"job.create", "INTERNAL_ERROR", "db failed"},
		},
		{
			name: "error with underlying",
			err: &Error{
				Code:    CodeEngineFailure,
				Message: "wrapper",
				Err:     fmt.Errorf("underlying error"),
			},
			contains: []string{"wrapper", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			str := tt.err.Error()
			for _, c := range tt.contains {
				if !strings.Contains(str, c) {
					t.Errorf("expected error string to contain %q, got: %s", c, str)
				}
			}
		})
	}
}

func TestWrap(t *testing.T) {
	original := fmt.Errorf("original error")
	wrapped := Wrap(original, "supervisor.render", "render failed")

	if wrapped == nil {
		t.Fatal("expected wrapped error to be non-nil")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code=%s, got %s", CodeInternal, wrapped.Code)
	}
	if wrapped.Op != "supervisor.render" {
		t.Errorf("expected op='supervisor.render', got %s", wrapped.Op)
	}
	if wrapped.Err != original {
		t.Error("expected underlying error to be preserved")
	}

	if errors.Unwrap(wrapped) != original {
		t.Error("Unwrap should return original error")
	}
}

func TestWrapNil(t *testing.T) {
	wrapped := Wrap(nil, "op", "message")
	if wrapped != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapPreservesCode(t *testing.T) {
	original := AssetNotFound("logo.png", []string{"/assets/logo.png"})
	wrapped := Wrap(original, "compiler.compile", "graph compilation failed")

	if wrapped.Code != CodeAssetNotFound {
		t.Errorf("expected code to be preserved as %s, got %s", CodeAssetNotFound, wrapped.Code)
	}
}

func TestAssetNotFound(t *testing.T) {
	err := AssetNotFound("sticker.png", []string{"/a/sticker.png", "/b/sticker.png"})

	if err.Code != CodeAssetNotFound {
		t.Errorf("expected code=%s, got %s", CodeAssetNotFound, err.Code)
	}
	for _, want := range []string{"sticker.png", "/a/sticker.png", "/b/sticker.png"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected message to contain %q, got: %s", want, err.Error())
		}
	}
	if err.Fields["reference"] != "sticker.png" {
		t.Errorf("expected reference field, got %v", err.Fields["reference"])
	}
}

func TestEngineFailure(t *testing.T) {
	err := EngineFailure(187)

	if err.Code != CodeEngineFailure {
		t.Errorf("expected code=%s, got %s", CodeEngineFailure, err.Code)
	}
	if !strings.Contains(err.Message, "187") {
		t.Errorf("expected exit code in message, got: %s", err.Message)
	}
	if err.Fields["exit_code"] != 187 {
		t.Errorf("expected exit_code field, got %v", err.Fields["exit_code"])
	}
}

func TestProbeFailure(t *testing.T) {
	cause := fmt.Errorf("ffprobe: no such file")
	err := ProbeFailure("/uploads/in.mp4", cause)

	if err.Code != CodeProbeFailure {
		t.Errorf("expected code=%s, got %s", CodeProbeFailure, err.Code)
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected cause to be preserved")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, 400},
		{CodeBadRequest, 400},
		{CodeNotFound, 404},
		{CodeAssetNotFound, 404},
		{CodeConflict, 409},
		{CodeProbeFailure, 500},
		{CodeEngineFailure, 500},
		{CodeStoreUnavailable, 503},
		{CodeUnavailable, 503},
		{CodeTimeout, 504},
		{CodeInternal, 500},
		{Code("SOMETHING_ELSE"), 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := &Error{Code: tt.code}
			if got := err.HTTPStatus(); got != tt.status {
				t.Errorf("expected %d, got %d", tt.status, got)
			}
		})
	}
}

func TestIsCodeHelpers(t *testing.T) {
	if !IsValidation(ValidationField("x", "out of range")) {
		t.Error("expected IsValidation to be true")
	}
	if !IsAssetNotFound(AssetNotFound("a.png", nil)) {
		t.Error("expected IsAssetNotFound to be true")
	}
	if !IsNotFound(NotFound("job", "j1")) {
		t.Error("expected IsNotFound to be true")
	}
	if IsNotFound(fmt.Errorf("plain")) {
		t.Error("expected plain error not to match NotFound")
	}
	if GetCode(fmt.Errorf("plain")) != CodeInternal {
		t.Error("expected plain error to map to internal code")
	}
}

func TestErrorIs(t *testing.T) {
	a := New(CodeEngineFailure, "one")
	b := New(CodeEngineFailure, "two")
	if !errors.Is(a, b) {
		t.Error("errors with the same code should match via errors.Is")
	}

	c := New(CodeValidation, "three")
	if errors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestWithFields(t *testing.T) {
	err := New(CodeInternal, "boom").WithFields(map[string]any{
		"job_id": "j1",
		"stage":  "probe",
	})

	fields := GetFields(err)
	if fields["job_id"] != "j1" || fields["stage"] != "probe" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
