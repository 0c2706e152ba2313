package minecart

import (
	"errors"
	"testing"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

func TestNewModelNilDevice(t *testing.T) {
	m, err := NewModel(nil)
	if m != nil {
		t.Errorf("expected nil model")
	}
	if !errors.Is(err, ErrNilDevice) {
		t.Fatalf("expected ErrNilDevice, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindModel {
		t.Errorf("expected a model error, got %#v", err)
	}
}

func TestUploadWithoutVertices(t *testing.T) {
	m, err := NewModel(&Device{})
	if err != nil {
		t.Fatal(err)
	}

	err = m.Upload()
	if !errors.Is(err, ErrNoVertices) {
		t.Fatalf("expected ErrNoVertices, got %v", err)
	}
	if m.IsReady() {
		t.Errorf("model should not be ready after a failed upload")
	}

	m.SetIndices([]uint32{0, 1, 2})
	if err := m.Upload(); !errors.Is(err, ErrNoVertices) {
		t.Errorf("indices alone must not be uploadable, got %v", err)
	}
}

func TestModelCounts(t *testing.T) {
	m, _ := NewModel(&Device{})
	m.SetVertices([]Vertex{
		NewVertex(0, 0, 0, 1, 0, 0),
		NewVertex(1, 0, 0, 0, 1, 0),
		NewVertex(0, 1, 0, 0, 0, 1),
	})
	m.SetIndices([]uint32{0, 1, 2})

	if m.VertexCount() != 3 || m.IndexCount() != 3 {
		t.Errorf("counts = %d/%d, want 3/3", m.VertexCount(), m.IndexCount())
	}

	m.SetIndices(nil)
	if m.IndexCount() != 0 {
		t.Errorf("index count after clearing = %d", m.IndexCount())
	}
}

func TestRenderSkipsWhenNotReady(t *testing.T) {
	m, _ := NewModel(&Device{})
	m.SetVertices([]Vertex{NewVertex(0, 0, 0, 1, 1, 1)})

	// a nil frame would panic if Render tried to record anything
	m.Render(nil)
	m.Render(&FrameContext{})
}

func TestNewVertex(t *testing.T) {
	v := NewVertex(1, 2, 3, 0.25, 0.5, 0.75)
	if v.Position != [3]float32{1, 2, 3} {
		t.Errorf("position = %v", v.Position)
	}
	if v.Color != [4]float32{0.25, 0.5, 0.75, 1} {
		t.Errorf("color = %v", v.Color)
	}
}

func TestVertexLayout(t *testing.T) {
	if VertexStride != 28 {
		t.Errorf("VertexStride = %d, want 28", VertexStride)
	}

	attrs := VertexAttributes()
	if len(attrs) != 2 {
		t.Fatalf("got %d attributes", len(attrs))
	}
	if attrs[0].Offset != 0 || attrs[0].Format != vk.FormatR32g32b32Sfloat {
		t.Errorf("position attribute = %+v", attrs[0])
	}
	if attrs[1].Offset != 12 || attrs[1].Format != vk.FormatR32g32b32a32Sfloat {
		t.Errorf("color attribute = %+v", attrs[1])
	}

	layout := vertexLayout{stride: VertexStride, attributes: attrs}
	if b := layout.BindingDescription(); b.Stride != VertexStride || b.InputRate != vk.VertexInputRateVertex {
		t.Errorf("binding = %+v", b)
	}
	for i, d := range layout.AttributeDescriptions() {
		if d.Location != uint32(i) || d.Binding != 0 {
			t.Errorf("attribute %d = %+v", i, d)
		}
	}
}

func TestSliceBytesOfVertices(t *testing.T) {
	v := []Vertex{NewVertex(0, 0, 0, 0, 0, 0), NewVertex(0, 0, 0, 0, 0, 0)}
	if n := len(SliceBytes(v)); n != 2*int(unsafe.Sizeof(Vertex{})) {
		t.Errorf("len = %d", n)
	}
	if SliceBytes[Vertex](nil) != nil {
		t.Errorf("expected nil for an empty slice")
	}
}
