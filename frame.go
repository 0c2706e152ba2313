package minecart

import (
	vk "github.com/vulkan-go/vulkan"
)

// FrameContext is what a RenderFunc records into. It does not own anything
// and is only valid while the RenderFunc it was passed to runs.
type FrameContext struct {
	CommandBuffer *CommandBuffer
	RenderPass    *RenderPass
	Framebuffer   *Framebuffer
	Extent        vk.Extent2D
	// FrameIndex is the frame-in-flight slot, in [0, FramesInFlight).
	FrameIndex int

	Window *Window
	Device *Device

	active bool
}

// Active reports whether commands may still be recorded.
func (f *FrameContext) Active() bool {
	return f != nil && f.active
}

// RenderFunc records one layer of a frame.
type RenderFunc func(frame *FrameContext) error
