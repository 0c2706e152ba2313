package minecart

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Kind: KindModel, Op: "upload", Err: ErrNoVertices}, "model: upload: no vertices set, call SetVertices first"},
		{&Error{Kind: KindShader, Err: ErrShaderNotBound}, "shader: shader not bound, call Bind first"},
		{&Error{Kind: Kind(42), Op: "x", Err: errors.New("y")}, "kind(42): x: y"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestNewErrorNil(t *testing.T) {
	if err := NewError(KindGPU, "op", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("device lost")
	err := fmt.Errorf("frame 3: %w", gpuError("submit frame", cause))

	if !errors.Is(err, cause) {
		t.Errorf("cause not found in %v", err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("no *Error in %v", err)
	}
	if e.Kind != KindGPU || e.Op != "submit frame" {
		t.Errorf("got %+v", e)
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindWindow: "window",
		KindGPU:    "gpu",
		KindUI:     "imgui",
		KindModel:  "model",
		KindShader: "shader",
	} {
		if kind.String() != want {
			t.Errorf("%d: got %q, want %q", int(kind), kind.String(), want)
		}
	}
}
