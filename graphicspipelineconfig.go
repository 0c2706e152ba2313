package minecart

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"
)

// GraphicsPipelineConfig collects the state of a graphics pipeline. Viewport
// and scissor are always dynamic so pipelines survive swapchain resizes.
type GraphicsPipelineConfig struct {
	Device         *Device
	ShaderStages   []*ShaderModule
	PipelineLayout *PipelineLayout

	// defaults to vk.PrimitiveTopologyTriangleList
	PrimitiveTopology vk.PrimitiveTopology
	// defaults to vk.PolygonModeFill
	PolygonMode vk.PolygonMode
	// defaults to 1.0
	LineWidth float32
	// defaults to vk.CullModeBackBit
	CullMode vk.CullModeFlagBits
	// defaults to vk.FrontFaceCounterClockwise
	FrontFace vk.FrontFace

	// One attachment without blending is used when empty.
	BlendAttachments []vk.PipelineColorBlendAttachmentState

	// both default to true
	DepthTestEnable  bool
	DepthWriteEnable bool

	VertexInputBindingDescriptions   []vk.VertexInputBindingDescription
	VertexInputAttributeDescriptions []vk.VertexInputAttributeDescription
}

func (d *Device) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return &GraphicsPipelineConfig{
		Device:            d,
		PrimitiveTopology: vk.PrimitiveTopologyTriangleList,
		PolygonMode:       vk.PolygonModeFill,
		LineWidth:         1.0,
		CullMode:          vk.CullModeBackBit,
		FrontFace:         vk.FrontFaceCounterClockwise,
		DepthTestEnable:   true,
		DepthWriteEnable:  true,
	}
}

// AlphaBlendAttachment is standard "source over" alpha blending.
var AlphaBlendAttachment = vk.PipelineColorBlendAttachmentState{
	BlendEnable:         vk.True,
	SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
	DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
	ColorBlendOp:        vk.BlendOpAdd,
	SrcAlphaBlendFactor: vk.BlendFactorOne,
	DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
	AlphaBlendOp:        vk.BlendOpAdd,
	ColorWriteMask:      colorWriteAll,
}

const colorWriteAll = vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)

func (g *GraphicsPipelineConfig) AddBlendAttachment(ba vk.PipelineColorBlendAttachmentState) *GraphicsPipelineConfig {
	g.BlendAttachments = append(g.BlendAttachments, ba)
	return g
}

func (g *GraphicsPipelineConfig) SetCullMode(mode vk.CullModeFlagBits) *GraphicsPipelineConfig {
	g.CullMode = mode
	return g
}

func (g *GraphicsPipelineConfig) SetPipelineLayout(layout *PipelineLayout) *GraphicsPipelineConfig {
	g.PipelineLayout = layout
	return g
}

func (g *GraphicsPipelineConfig) AddShaderStage(m *ShaderModule) *GraphicsPipelineConfig {
	g.ShaderStages = append(g.ShaderStages, m)
	return g
}

func (g *GraphicsPipelineConfig) AddVertexDescriptor(v VertexDescriptor) *GraphicsPipelineConfig {
	g.VertexInputBindingDescriptions = append(g.VertexInputBindingDescriptions, v.BindingDescription())
	g.VertexInputAttributeDescriptions = append(g.VertexInputAttributeDescriptions, v.AttributeDescriptions()...)
	return g
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// Build creates the pipeline for subpass 0 of renderPass.
func (g *GraphicsPipelineConfig) Build(renderPass *RenderPass, cache *PipelineCache) (*GraphicsPipeline, error) {
	if g.PipelineLayout == nil {
		return nil, errors.New("graphics pipeline needs a pipeline layout")
	}

	stages := make([]vk.PipelineShaderStageCreateInfo, len(g.ShaderStages))
	for i, s := range g.ShaderStages {
		stages[i] = s.VKPipelineShaderStageCreateInfo()
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(g.VertexInputBindingDescriptions)),
		PVertexBindingDescriptions:      g.VertexInputBindingDescriptions,
		VertexAttributeDescriptionCount: uint32(len(g.VertexInputAttributeDescriptions)),
		PVertexAttributeDescriptions:    g.VertexInputAttributeDescriptions,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               g.PrimitiveTopology,
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             g.PolygonMode,
		CullMode:                vk.CullModeFlags(g.CullMode),
		FrontFace:               g.FrontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               g.LineWidth,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
	}

	blendAttachments := g.BlendAttachments
	if len(blendAttachments) == 0 {
		blendAttachments = []vk.PipelineColorBlendAttachmentState{{
			BlendEnable:    vk.False,
			ColorWriteMask: colorWriteAll,
		}}
	}
	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       bool32(g.DepthTestEnable),
		DepthWriteEnable:      bool32(g.DepthWriteEnable),
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}

	createInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterState,
		PMultisampleState:   &multisampleState,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		Layout:              g.PipelineLayout.VKPipelineLayout,
		RenderPass:          renderPass.VKRenderPass,
		Subpass:             0,
	}

	vkCache := vk.NullPipelineCache
	if cache != nil {
		vkCache = cache.VKPipelineCache
	}

	pipelines := make([]vk.Pipeline, 1)
	err := vk.Error(vk.CreateGraphicsPipelines(g.Device.VKDevice, vkCache, 1, []vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines))
	if err != nil {
		return nil, err
	}

	return &GraphicsPipeline{
		Device:     g.Device,
		Layout:     g.PipelineLayout,
		VKPipeline: pipelines[0],
	}, nil
}
