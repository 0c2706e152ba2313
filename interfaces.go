package minecart

import (
	vk "github.com/vulkan-go/vulkan"
)

// VertexDescriptor describes the layout of a vertex buffer bound at binding 0.
type VertexDescriptor interface {
	BindingDescription() vk.VertexInputBindingDescription
	AttributeDescriptions() []vk.VertexInputAttributeDescription
}

// Renderable is anything that records draw commands into a frame.
type Renderable interface {
	Render(frame *FrameContext)
}
