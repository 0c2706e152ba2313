package minecart

import (
	"fmt"
	"os"
	"path"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// PipelineConfig is the fixed function state of a Shader's pipeline.
type PipelineConfig struct {
	// Attributes and VertexStride describe vertex buffer binding 0.
	// Both default to the Vertex layout when Attributes is empty.
	Attributes   []VertexAttribute
	VertexStride uint32

	Topology    vk.PrimitiveTopology
	PolygonMode vk.PolygonMode
	CullMode    vk.CullModeFlagBits
	FrontFace   vk.FrontFace

	// EnableBlend turns on alpha blending of the color attachment.
	EnableBlend bool
	DepthTest   bool

	// Bytes of push constant space reserved for each stage's uniform.
	// Zero disables the uniform for that stage.
	VertexUniformSize   uint32
	FragmentUniformSize uint32
}

// DefaultPipelineConfig draws filled, unculled triangle lists of Vertex with
// depth testing and a 64 byte uniform (one 4x4 matrix) per stage.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Attributes:          VertexAttributes(),
		VertexStride:        VertexStride,
		Topology:            vk.PrimitiveTopologyTriangleList,
		PolygonMode:         vk.PolygonModeFill,
		CullMode:            vk.CullModeNone,
		FrontFace:           vk.FrontFaceCounterClockwise,
		DepthTest:           true,
		VertexUniformSize:   64,
		FragmentUniformSize: 64,
	}
}

// pushConstantRanges lays out the vertex range first and the fragment range
// directly after it.
func (c PipelineConfig) pushConstantRanges() []vk.PushConstantRange {
	var ranges []vk.PushConstantRange
	if c.VertexUniformSize > 0 {
		ranges = append(ranges, vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       c.VertexUniformSize,
		})
	}
	if c.FragmentUniformSize > 0 {
		ranges = append(ranges, vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Offset:     c.VertexUniformSize,
			Size:       c.FragmentUniformSize,
		})
	}
	return ranges
}

// validate checks the uniform sizes against the 4 byte granularity of push
// constants.
func (c PipelineConfig) validate() error {
	if c.VertexUniformSize%4 != 0 {
		return fmt.Errorf("%w: vertex size %d is not a multiple of 4", ErrUniformSize, c.VertexUniformSize)
	}
	if c.FragmentUniformSize%4 != 0 {
		return fmt.Errorf("%w: fragment size %d is not a multiple of 4", ErrUniformSize, c.FragmentUniformSize)
	}
	return nil
}

func (c PipelineConfig) vertexLayout() vertexLayout {
	if len(c.Attributes) == 0 {
		return vertexLayout{stride: VertexStride, attributes: VertexAttributes()}
	}
	return vertexLayout{stride: c.VertexStride, attributes: c.Attributes}
}

// Shader is a vertex and fragment shader pair and the pipeline built from
// them. Shader sources are WGSL, compiled to SPIR-V on load, or precompiled
// SPIR-V in files ending in ".spv".
type Shader struct {
	device *Device
	window *Window

	vertex   *ShaderModule
	fragment *ShaderModule

	cfg      PipelineConfig
	layout   *PipelineLayout
	pipeline *GraphicsPipeline

	frame *FrameContext

	// build replaces createPipeline when set.
	build func(cfg PipelineConfig) (*PipelineLayout, *GraphicsPipeline, error)
}

// NewShader returns an empty shader. The window provides the render pass
// pipelines are built against.
func NewShader(dev *Device, w *Window) (*Shader, error) {
	if dev == nil {
		return nil, NewError(KindShader, "new shader", ErrNilDevice)
	}
	if w == nil {
		return nil, NewError(KindShader, "new shader", ErrNilWindow)
	}
	return &Shader{device: dev, window: w}, nil
}

// LoadVertexShader loads the vertex stage from a file. An empty entry
// point means "main".
func (s *Shader) LoadVertexShader(file, entryPoint string) error {
	data, err := os.ReadFile(file)
	return s.load(StageVertex, file, data, err, entryPoint)
}

// LoadFragmentShader loads the fragment stage from a file.
func (s *Shader) LoadFragmentShader(file, entryPoint string) error {
	data, err := os.ReadFile(file)
	return s.load(StageFragment, file, data, err, entryPoint)
}

// LoadVertexShaderResource loads the vertex stage through a resource manager.
func (s *Shader) LoadVertexShaderResource(rm *ResourceManager, name, entryPoint string) error {
	data, err := rm.Load(name)
	return s.load(StageVertex, name, data, err, entryPoint)
}

// LoadFragmentShaderResource loads the fragment stage through a resource
// manager.
func (s *Shader) LoadFragmentShaderResource(rm *ResourceManager, name, entryPoint string) error {
	data, err := rm.Load(name)
	return s.load(StageFragment, name, data, err, entryPoint)
}

func (s *Shader) load(stage ShaderStage, name string, data []byte, readErr error, entryPoint string) error {
	op := "load " + stage.String() + " shader"
	if entryPoint == "" {
		entryPoint = "main"
	}

	if readErr != nil {
		return NewError(KindShader, op, fmt.Errorf("%w %s: %w", ErrShaderRead, name, readErr))
	}

	code, err := compileShader(name, data)
	if err != nil {
		return NewError(KindShader, op, fmt.Errorf("%w %s: %w", ErrShaderCompile, name, err))
	}

	entries, err := ReflectSPIRV(code)
	if err != nil {
		return NewError(KindShader, op, fmt.Errorf("%w %s: %w", ErrShaderReflect, name, err))
	}
	if !FindEntryPoint(entries, entryPoint, stage) {
		return NewError(KindShader, op, fmt.Errorf("%w %s: no %s entry point %q", ErrShaderReflect, name, stage, entryPoint))
	}

	module, err := s.device.CreateShaderModule(code, stage, entryPoint)
	if err != nil {
		return NewError(KindShader, op, fmt.Errorf("%w %s: %w", ErrShaderCreate, name, err))
	}

	switch stage {
	case StageVertex:
		if s.vertex != nil {
			s.vertex.Destroy()
		}
		s.vertex = module
	case StageFragment:
		if s.fragment != nil {
			s.fragment.Destroy()
		}
		s.fragment = module
	}

	Logger().Debug("shader loaded", "name", name, "stage", stage, "entry", entryPoint, "words", len(code))
	return nil
}

// compileShader turns a source file into SPIR-V words. ".spv" files are
// taken as they are, everything else is compiled as WGSL.
func compileShader(name string, data []byte) ([]uint32, error) {
	if strings.EqualFold(path.Ext(name), ".spv") {
		return SPIRVWords(data)
	}
	return CompileWGSL(string(data))
}

// BuildPipeline (re)creates the graphics pipeline from the loaded shaders.
// Both stages must be loaded and the window initialized. On failure the
// previous pipeline, if any, is kept.
func (s *Shader) BuildPipeline(cfg PipelineConfig) error {
	const op = "build pipeline"
	if s.vertex == nil || s.fragment == nil {
		return NewError(KindShader, op, ErrShadersNotLoaded)
	}
	if err := cfg.validate(); err != nil {
		return NewError(KindShader, op, err)
	}

	build := s.build
	if build == nil {
		build = s.createPipeline
	}
	layout, pipeline, err := build(cfg)
	if err != nil {
		return NewError(KindShader, op, err)
	}

	if s.pipeline != nil {
		// command buffers still in flight reference the old pipeline
		s.device.WaitIdle()
	}
	s.destroyPipeline()
	s.cfg = cfg
	s.layout = layout
	s.pipeline = pipeline
	return nil
}

func (s *Shader) createPipeline(cfg PipelineConfig) (*PipelineLayout, *GraphicsPipeline, error) {
	renderPass := s.window.RenderPass()
	if renderPass == nil {
		return nil, nil, fmt.Errorf("window %w", ErrNotInitialized)
	}

	layout, err := s.device.CreatePipelineLayout(nil, cfg.pushConstantRanges())
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create pipeline layout: %w", err)
	}

	gpc := s.device.CreateGraphicsPipelineConfig()
	gpc.PrimitiveTopology = cfg.Topology
	gpc.PolygonMode = cfg.PolygonMode
	gpc.CullMode = cfg.CullMode
	gpc.FrontFace = cfg.FrontFace
	gpc.DepthTestEnable = cfg.DepthTest
	gpc.DepthWriteEnable = cfg.DepthTest
	if cfg.EnableBlend {
		gpc.AddBlendAttachment(AlphaBlendAttachment)
	}
	gpc.AddShaderStage(s.vertex).
		AddShaderStage(s.fragment).
		AddVertexDescriptor(cfg.vertexLayout()).
		SetPipelineLayout(layout)

	pipeline, err := gpc.Build(renderPass, s.window.PipelineCache())
	if err != nil {
		layout.Destroy()
		return nil, nil, fmt.Errorf("unable to create graphics pipeline: %w", err)
	}
	return layout, pipeline, nil
}

// Bind binds the pipeline into frame. Uniforms can be set until the frame
// ends.
func (s *Shader) Bind(frame *FrameContext) error {
	if s.pipeline == nil {
		return NewError(KindShader, "bind", ErrPipelineNotBuilt)
	}
	if !frame.Active() {
		return NewError(KindShader, "bind", ErrFrameInactive)
	}
	frame.CommandBuffer.BindGraphicsPipeline(s.pipeline.VKPipeline)
	s.frame = frame
	return nil
}

// SetVertexUniform pushes data to the vertex stage. Only slot 0 exists.
func (s *Shader) SetVertexUniform(slot uint32, data []byte) error {
	return s.push("set vertex uniform", vk.ShaderStageVertexBit, 0, s.cfg.VertexUniformSize, slot, data)
}

// SetFragmentUniform pushes data to the fragment stage. Only slot 0 exists.
func (s *Shader) SetFragmentUniform(slot uint32, data []byte) error {
	return s.push("set fragment uniform", vk.ShaderStageFragmentBit, s.cfg.VertexUniformSize, s.cfg.FragmentUniformSize, slot, data)
}

func (s *Shader) push(op string, stage vk.ShaderStageFlagBits, offset, size, slot uint32, data []byte) error {
	if !s.frame.Active() {
		return NewError(KindShader, op, ErrShaderNotBound)
	}
	if slot != 0 {
		return NewError(KindShader, op, fmt.Errorf("%w: %d", ErrUniformSlot, slot))
	}
	if uint32(len(data)) > size {
		return NewError(KindShader, op, fmt.Errorf("%w: %d > %d bytes", ErrUniformSize, len(data), size))
	}
	if len(data)%4 != 0 {
		return NewError(KindShader, op, fmt.Errorf("%w: %d bytes is not a multiple of 4", ErrUniformSize, len(data)))
	}
	if len(data) == 0 {
		return nil
	}
	s.frame.CommandBuffer.PushConstants(s.layout, vk.ShaderStageFlags(stage), offset, data)
	return nil
}

// IsReady reports whether a pipeline has been built.
func (s *Shader) IsReady() bool { return s.pipeline != nil }

func (s *Shader) Pipeline() *GraphicsPipeline { return s.pipeline }

func (s *Shader) destroyPipeline() {
	if s.pipeline != nil {
		s.pipeline.Destroy()
		s.pipeline = nil
	}
	if s.layout != nil {
		s.layout.Destroy()
		s.layout = nil
	}
	s.frame = nil
}

// Destroy releases the pipeline and both shader modules. The device must be
// idle.
func (s *Shader) Destroy() {
	s.destroyPipeline()
	if s.vertex != nil {
		s.vertex.Destroy()
		s.vertex = nil
	}
	if s.fragment != nil {
		s.fragment.Destroy()
		s.fragment = nil
	}
}
