package minecart

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSet collects writes with the Add methods and applies them with
// Write.
type DescriptorSet struct {
	Device          *Device
	DescriptorPool  *DescriptorPool
	VKDescriptorSet vk.DescriptorSet

	writes []vk.WriteDescriptorSet
}

func (ds *DescriptorSet) addImage(dstBinding int, dtype vk.DescriptorType, info vk.DescriptorImageInfo) {
	ds.writes = append(ds.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PImageInfo:      []vk.DescriptorImageInfo{info},
	})
}

// AddSampledImage binds a texture without a sampler, as WGSL
// texture_2d bindings expect.
func (ds *DescriptorSet) AddSampledImage(dstBinding int, layout vk.ImageLayout, view *ImageView) {
	ds.addImage(dstBinding, vk.DescriptorTypeSampledImage, vk.DescriptorImageInfo{
		ImageView:   view.VKImageView,
		ImageLayout: layout,
	})
}

func (ds *DescriptorSet) AddSampler(dstBinding int, sampler *Sampler) {
	ds.addImage(dstBinding, vk.DescriptorTypeSampler, vk.DescriptorImageInfo{
		Sampler: sampler.VKSampler,
	})
}

func (ds *DescriptorSet) Write() {
	if len(ds.writes) == 0 {
		return
	}
	for i := range ds.writes {
		ds.writes[i].DstSet = ds.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(ds.Device.VKDevice, uint32(len(ds.writes)), ds.writes, 0, nil)
	ds.writes = nil
}
