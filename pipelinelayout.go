package minecart

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineLayout records the descriptor set layouts and push constant ranges
// a pipeline is built against.
type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
	PushConstants    []vk.PushConstantRange
}

func (d *Device) CreatePipelineLayout(descriptorSetLayouts []*DescriptorSetLayout, pushConstants []vk.PushConstantRange) (*PipelineLayout, error) {
	l := make([]vk.DescriptorSetLayout, len(descriptorSetLayouts))
	for i, dsl := range descriptorSetLayouts {
		l[i] = dsl.VKDescriptorSetLayout
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(l)),
		PSetLayouts:            l,
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	var pipelineLayout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &createInfo, nil, &pipelineLayout))
	if err != nil {
		return nil, err
	}

	return &PipelineLayout{
		Device:           d,
		VKPipelineLayout: pipelineLayout,
		PushConstants:    pushConstants,
	}, nil
}

func (p *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
}
