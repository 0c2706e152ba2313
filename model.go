package minecart

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Vertex is the vertex format drawn by Model: a position and an RGBA color.
type Vertex struct {
	Position [3]float32
	Color    [4]float32
}

// NewVertex returns an opaque vertex.
func NewVertex(x, y, z, r, g, b float32) Vertex {
	return Vertex{
		Position: [3]float32{x, y, z},
		Color:    [4]float32{r, g, b, 1},
	}
}

// VertexStride is the size of one Vertex in a vertex buffer.
const VertexStride = uint32(unsafe.Sizeof(Vertex{}))

// VertexAttribute is one shader input read from binding 0.
type VertexAttribute struct {
	Location uint32
	Format   vk.Format
	Offset   uint32
}

// VertexAttributes describes Vertex: position at location 0, color at
// location 1.
func VertexAttributes() []VertexAttribute {
	return []VertexAttribute{
		{Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Position))},
		{Location: 1, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
	}
}

// vertexLayout adapts a stride and attribute list to VertexDescriptor.
type vertexLayout struct {
	stride     uint32
	attributes []VertexAttribute
}

func (l vertexLayout) BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    l.stride,
		InputRate: vk.VertexInputRateVertex,
	}
}

func (l vertexLayout) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	attr := make([]vk.VertexInputAttributeDescription, len(l.attributes))
	for i, a := range l.attributes {
		attr[i] = vk.VertexInputAttributeDescription{
			Binding:  0,
			Location: a.Location,
			Format:   a.Format,
			Offset:   a.Offset,
		}
	}
	return attr
}

// Model is a vertex list with an optional index list. Data set on the model
// stays on the CPU until Upload copies it into device local buffers.
type Model struct {
	device *Device

	vertices []Vertex
	indices  []uint32

	vertexBuffer *BoundBuffer
	indexBuffer  *BoundBuffer
	ready        bool
}

func NewModel(dev *Device) (*Model, error) {
	if dev == nil {
		return nil, NewError(KindModel, "new model", ErrNilDevice)
	}
	return &Model{device: dev}, nil
}

// SetVertices replaces the vertex data. The model must be uploaded again.
func (m *Model) SetVertices(v []Vertex) {
	m.vertices = append(m.vertices[:0], v...)
	m.ready = false
}

// SetIndices replaces the index data. A model with indices is drawn
// indexed; pass nil to draw the vertices in order.
func (m *Model) SetIndices(idx []uint32) {
	m.indices = append(m.indices[:0], idx...)
	m.ready = false
}

func (m *Model) VertexCount() int { return len(m.vertices) }

func (m *Model) IndexCount() int { return len(m.indices) }

// IsReady reports whether the current data has been uploaded.
func (m *Model) IsReady() bool { return m.ready }

// Upload creates the GPU buffers for the current data, replacing any
// previous ones. It blocks until the copy has finished.
func (m *Model) Upload() error {
	if len(m.vertices) == 0 {
		return NewError(KindModel, "upload", ErrNoVertices)
	}

	vb, err := m.device.CreateStagedBuffer(SliceBytes(m.vertices), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return NewError(KindModel, "upload", fmt.Errorf("unable to create vertex buffer: %w", err))
	}

	var ib *BoundBuffer
	if len(m.indices) > 0 {
		ib, err = m.device.CreateStagedBuffer(SliceBytes(m.indices), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
		if err != nil {
			vb.Destroy()
			return NewError(KindModel, "upload", fmt.Errorf("unable to create index buffer: %w", err))
		}
	}

	m.releaseBuffers()
	m.vertexBuffer, m.indexBuffer = vb, ib
	m.ready = true

	Logger().Debug("model uploaded", "vertices", len(m.vertices), "indices", len(m.indices))
	return nil
}

var _ Renderable = (*Model)(nil)

// Render records the draw into frame. Models that are not ready are
// skipped.
func (m *Model) Render(frame *FrameContext) {
	if !m.ready || !frame.Active() {
		return
	}

	cb := frame.CommandBuffer
	cb.BindVertexBuffer(m.vertexBuffer.Buffer, 0)
	if m.indexBuffer != nil {
		cb.BindIndexBuffer(m.indexBuffer.Buffer, 0, vk.IndexTypeUint32)
		cb.DrawIndexed(uint32(len(m.indices)), 0, 0)
		return
	}
	cb.Draw(uint32(len(m.vertices)), 0)
}

func (m *Model) releaseBuffers() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
		m.indexBuffer = nil
	}
}

// Destroy frees the GPU buffers. The device must be idle.
func (m *Model) Destroy() {
	m.releaseBuffers()
	m.ready = false
}
