package imgui

import (
	_ "embed"
	"fmt"
	"unsafe"

	minecart "github.com/ajh123/Minecart"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go"
	vk "github.com/vulkan-go/vulkan"
)

//go:embed shaders/imgui.wgsl
var shaderWGSL string

const projectionSize = uint32(unsafe.Sizeof(mgl32.Mat4{}))

// vertexLayout describes imgui's vertex format: position, uv, packed color.
type vertexLayout struct{}

func (vertexLayout) BindingDescription() vk.VertexInputBindingDescription {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (vertexLayout) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	_, offsetPos, offsetUv, offsetCol := imgui.VertexBufferLayout()
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(offsetPos)},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(offsetUv)},
		// the shader wants the color as normalized floats
		{Binding: 0, Location: 2, Format: vk.FormatR8g8b8a8Unorm, Offset: uint32(offsetCol)},
	}
}

// orthoProjection maps imgui's display coordinates (origin top left) onto
// Vulkan clip space, whose Y axis points down.
func orthoProjection(width, height float32) mgl32.Mat4 {
	return mgl32.Ortho(0, width, 0, height, -1, 1)
}

// scissorFor converts a clip rectangle in framebuffer pixels into a scissor
// clamped to the framebuffer. It reports false when nothing is visible.
func scissorFor(clip imgui.Vec4, fb vk.Extent2D) (vk.Rect2D, bool) {
	x0, y0 := maxf(clip.X, 0), maxf(clip.Y, 0)
	x1, y1 := minf(clip.Z, float32(fb.Width)), minf(clip.W, float32(fb.Height))
	if x1 <= x0 || y1 <= y0 {
		return vk.Rect2D{}, false
	}
	return vk.Rect2D{
		Offset: vk.Offset2D{X: int32(x0), Y: int32(y0)},
		Extent: vk.Extent2D{Width: uint32(x1 - x0), Height: uint32(y1 - y0)},
	}, true
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// growSize returns the capacity to allocate for need bytes, leaving room so
// buffers are not recreated every time the UI grows a little.
func growSize(need int) uint64 {
	size := uint64(64 * 1024)
	for size < uint64(need) {
		size *= 2
	}
	return size
}

// hostBuffers are the per frame-in-flight vertex and index buffers. A slot
// is only rewritten after the window waited for its previous frame.
type hostBuffers struct {
	vertex *minecart.BoundBuffer
	index  *minecart.BoundBuffer
}

func (h *hostBuffers) destroy() {
	if h.vertex != nil {
		h.vertex.Destroy()
		h.vertex = nil
	}
	if h.index != nil {
		h.index.Destroy()
		h.index = nil
	}
}

type renderer struct {
	device *minecart.Device

	font     *minecart.Image
	fontView *minecart.ImageView
	sampler  *minecart.Sampler

	descriptorPool   *minecart.DescriptorPool
	descriptorLayout *minecart.DescriptorSetLayout
	descriptorSet    *minecart.DescriptorSet

	layout   *minecart.PipelineLayout
	vertex   *minecart.ShaderModule
	fragment *minecart.ShaderModule
	pipeline *minecart.GraphicsPipeline

	frames []hostBuffers

	vertexData []byte
	indexData  []byte
}

func newRenderer(w *minecart.Window, io imgui.IO) (r *renderer, err error) {
	r = &renderer{
		device: w.Device(),
		frames: make([]hostBuffers, w.FramesInFlight()),
	}
	defer func() {
		if err != nil {
			r.destroy()
		}
	}()

	if err := r.createFontTexture(io); err != nil {
		return nil, fmt.Errorf("unable to create font texture: %w", err)
	}
	if err := r.createDescriptorSet(); err != nil {
		return nil, fmt.Errorf("unable to create descriptor set: %w", err)
	}
	if err := r.createPipeline(w); err != nil {
		return nil, fmt.Errorf("unable to create pipeline: %w", err)
	}
	return r, nil
}

func (r *renderer) createFontTexture(io imgui.IO) error {
	tex := io.Fonts().TextureDataRGBA32()
	pixels := minecart.ToBytes(tex.Pixels, tex.Width*tex.Height*4)

	var err error
	r.font, err = r.device.UploadRGBA(pixels, tex.Width, tex.Height)
	if err != nil {
		return err
	}
	r.fontView, err = r.font.CreateImageView()
	if err != nil {
		return err
	}
	r.sampler, err = r.device.CreateLinearSampler()
	return err
}

func (r *renderer) createDescriptorSet() error {
	pool := r.device.NewDescriptorPool()
	pool.AddPoolSize(vk.DescriptorTypeSampledImage, 1)
	pool.AddPoolSize(vk.DescriptorTypeSampler, 1)
	if _, err := r.device.CreateDescriptorPool(pool, 1); err != nil {
		return err
	}
	r.descriptorPool = pool

	dsl := r.device.NewDescriptorSetLayout()
	dsl.AddBinding(0, vk.DescriptorTypeSampledImage, vk.ShaderStageFragmentBit).
		AddBinding(1, vk.DescriptorTypeSampler, vk.ShaderStageFragmentBit)
	if _, err := r.device.CreateDescriptorSetLayout(dsl); err != nil {
		return err
	}
	r.descriptorLayout = dsl

	var err error
	r.descriptorSet, err = pool.Allocate(dsl)
	if err != nil {
		return err
	}
	r.descriptorSet.AddSampledImage(0, vk.ImageLayoutShaderReadOnlyOptimal, r.fontView)
	r.descriptorSet.AddSampler(1, r.sampler)
	r.descriptorSet.Write()
	return nil
}

func (r *renderer) createPipeline(w *minecart.Window) error {
	code, err := minecart.CompileWGSL(shaderWGSL)
	if err != nil {
		return err
	}

	r.vertex, err = r.device.CreateShaderModule(code, minecart.StageVertex, "vs_main")
	if err != nil {
		return err
	}
	r.fragment, err = r.device.CreateShaderModule(code, minecart.StageFragment, "fs_main")
	if err != nil {
		return err
	}

	r.layout, err = r.device.CreatePipelineLayout(
		[]*minecart.DescriptorSetLayout{r.descriptorLayout},
		[]vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       projectionSize,
		}})
	if err != nil {
		return err
	}

	gc := r.device.CreateGraphicsPipelineConfig()
	gc.AddVertexDescriptor(vertexLayout{}).
		AddBlendAttachment(minecart.AlphaBlendAttachment).
		AddShaderStage(r.vertex).
		AddShaderStage(r.fragment).
		SetCullMode(vk.CullModeNone).
		SetPipelineLayout(r.layout)
	gc.DepthTestEnable = false
	gc.DepthWriteEnable = false

	r.pipeline, err = gc.Build(w.RenderPass(), w.PipelineCache())
	return err
}

// ensure makes sure the frame slot's buffers hold at least the given sizes.
func (r *renderer) ensure(slot *hostBuffers, vertexBytes, indexBytes int) error {
	if slot.vertex == nil || slot.vertex.Size < uint64(vertexBytes) {
		if slot.vertex != nil {
			slot.vertex.Destroy()
			slot.vertex = nil
		}
		b, err := r.device.CreateHostBuffer(growSize(vertexBytes), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
		if err != nil {
			return fmt.Errorf("unable to allocate vertex buffer: %w", err)
		}
		slot.vertex = b
	}
	if slot.index == nil || slot.index.Size < uint64(indexBytes) {
		if slot.index != nil {
			slot.index.Destroy()
			slot.index = nil
		}
		b, err := r.device.CreateHostBuffer(growSize(indexBytes), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
		if err != nil {
			return fmt.Errorf("unable to allocate index buffer: %w", err)
		}
		slot.index = b
	}
	return nil
}

// draw records drawData into frame. display is the size imgui laid out
// against, scale maps it to framebuffer pixels.
func (r *renderer) draw(frame *minecart.FrameContext, drawData imgui.DrawData, display, scale imgui.Vec2) error {
	lists := drawData.CommandLists()
	if len(lists) == 0 || display.X <= 0 || display.Y <= 0 {
		return nil
	}

	drawData.ScaleClipRects(scale)

	r.vertexData = r.vertexData[:0]
	r.indexData = r.indexData[:0]
	for _, list := range lists {
		vp, vn := list.VertexBuffer()
		ip, in := list.IndexBuffer()
		r.vertexData = append(r.vertexData, minecart.ToBytes(vp, vn)...)
		r.indexData = append(r.indexData, minecart.ToBytes(ip, in)...)
	}
	if len(r.vertexData) == 0 || len(r.indexData) == 0 {
		return nil
	}

	slot := &r.frames[frame.FrameIndex%len(r.frames)]
	if err := r.ensure(slot, len(r.vertexData), len(r.indexData)); err != nil {
		return err
	}
	if err := slot.vertex.Write(r.vertexData); err != nil {
		return err
	}
	if err := slot.index.Write(r.indexData); err != nil {
		return err
	}

	indexType := vk.IndexTypeUint16
	if imgui.IndexBufferLayout() == 4 {
		indexType = vk.IndexTypeUint32
	}
	vertexSize, _, _, _ := imgui.VertexBufferLayout()

	cb := frame.CommandBuffer
	cb.BindGraphicsPipeline(r.pipeline.VKPipeline)
	cb.BindDescriptorSets(r.layout, 0, r.descriptorSet)
	cb.BindVertexBuffer(slot.vertex.Buffer, 0)
	cb.BindIndexBuffer(slot.index.Buffer, 0, indexType)

	proj := orthoProjection(display.X, display.Y)
	cb.PushConstants(r.layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, minecart.SliceBytes(proj[:]))

	var indexOffset, vertexOffset int
	for _, list := range lists {
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else if scissor, ok := scissorFor(cmd.ClipRect(), frame.Extent); ok {
				cb.SetScissor(scissor.Offset.X, scissor.Offset.Y, scissor.Extent.Width, scissor.Extent.Height)
				cb.DrawIndexed(uint32(cmd.ElementCount()), uint32(indexOffset), int32(vertexOffset))
			}
			indexOffset += cmd.ElementCount()
		}
		_, vn := list.VertexBuffer()
		vertexOffset += vn / vertexSize
	}

	cb.SetScissor(0, 0, frame.Extent.Width, frame.Extent.Height)
	return nil
}

func (r *renderer) destroy() {
	for i := range r.frames {
		r.frames[i].destroy()
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
		r.pipeline = nil
	}
	if r.layout != nil {
		r.layout.Destroy()
		r.layout = nil
	}
	if r.fragment != nil {
		r.fragment.Destroy()
		r.fragment = nil
	}
	if r.vertex != nil {
		r.vertex.Destroy()
		r.vertex = nil
	}
	if r.descriptorPool != nil {
		r.descriptorPool.Destroy()
		r.descriptorPool = nil
	}
	if r.descriptorLayout != nil {
		r.descriptorLayout.Destroy()
		r.descriptorLayout = nil
	}
	if r.sampler != nil {
		r.sampler.Destroy()
		r.sampler = nil
	}
	if r.fontView != nil {
		r.fontView.Destroy()
		r.fontView = nil
	}
	if r.font != nil {
		r.font.Destroy()
		r.font = nil
	}
}
