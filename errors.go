package minecart

import (
	"errors"
	"fmt"
)

// Kind identifies the subsystem an Error came from.
type Kind int

const (
	KindWindow Kind = iota + 1
	KindGPU
	KindUI
	KindModel
	KindShader
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindGPU:
		return "gpu"
	case KindUI:
		return "imgui"
	case KindModel:
		return "model"
	case KindShader:
		return "shader"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by the window, model, shader and UI
// wrappers. Err carries either one of the sentinel errors below or the
// underlying Vulkan / glfw error message.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind and operation name.
func NewError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrNilDevice          = errors.New("device cannot be nil")
	ErrNilWindow          = errors.New("window cannot be nil")
	ErrNoSuitableDevice   = errors.New("no physical device with graphics and present support")
	ErrFrameInactive      = errors.New("frame context used outside of its render call")

	ErrNoVertices = errors.New("no vertices set, call SetVertices first")

	ErrShaderRead       = errors.New("failed to read shader source")
	ErrShaderCompile    = errors.New("failed to compile shader")
	ErrShaderReflect    = errors.New("failed to reflect shader")
	ErrShaderCreate     = errors.New("failed to create shader module")
	ErrShadersNotLoaded = errors.New("both vertex and fragment shaders must be loaded before building pipeline")
	ErrPipelineNotBuilt = errors.New("pipeline not built")
	ErrShaderNotBound   = errors.New("shader not bound, call Bind first")
	ErrUniformSlot      = errors.New("uniform slot out of range")
	ErrUniformSize      = errors.New("uniform data exceeds reserved push constant range")
)

func gpuError(op string, err error) error {
	return NewError(KindGPU, op, err)
}
