package minecart

import (
	vk "github.com/vulkan-go/vulkan"
)

type ShaderModule struct {
	Device         *Device
	Stage          ShaderStage
	EntryPoint     string
	VKShaderModule vk.ShaderModule
}

// CreateShaderModule creates a module from SPIR-V words.
func (d *Device) CreateShaderModule(code []uint32, stage ShaderStage, entryPoint string) (*ShaderModule, error) {
	var module vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module))
	if err != nil {
		return nil, err
	}

	return &ShaderModule{
		Device:         d,
		Stage:          stage,
		EntryPoint:     entryPoint,
		VKShaderModule: module,
	}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.Stage.VK(),
		Module: s.VKShaderModule,
		PName:  safeString(s.EntryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}
