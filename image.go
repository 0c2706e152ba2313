package minecart

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Image is a 2D image. Images created by the device own their memory;
// swapchain images do not and are never destroyed here.
type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent3D
	Memory   *DeviceMemory

	external bool
}

func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, err
	}

	return &Image{
		Device:   d,
		VKImage:  image,
		VKFormat: format,
		Extent:   imageInfo.Extent,
	}, nil
}

// CreateBoundImage creates an image and binds freshly allocated memory with
// the given properties to it.
func (d *Device) CreateBoundImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (*Image, error) {
	img, err := d.CreateImage(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mem, err := d.AllocateForImage(img, props)
	if err != nil {
		img.Destroy()
		return nil, err
	}
	img.Memory = mem

	err = vk.Error(vk.BindImageMemory(d.VKDevice, img.VKImage, mem.VKDeviceMemory, 0))
	if err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

// UploadRGBA creates a sampled RGBA8 image holding pixels. The upload goes
// through a staging buffer and finishes before the call returns.
func (d *Device) UploadRGBA(pixels []byte, width, height int) (*Image, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("expected %d bytes of RGBA data, got %d", width*height*4, len(pixels))
	}

	staging, err := d.CreateHostBuffer(uint64(len(pixels)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return nil, fmt.Errorf("unable to create staging buffer: %w", err)
	}
	defer staging.Destroy()

	if err := staging.Write(pixels); err != nil {
		return nil, err
	}

	img, err := d.CreateBoundImage(
		vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, fmt.Errorf("unable to create image: %w", err)
	}

	err = d.SubmitOneTime(func(cb *CommandBuffer) {
		cb.TransitionImageLayout(img, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		cb.CopyBufferToImage(staging.Buffer, img)
		cb.TransitionImageLayout(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy()
		return nil, fmt.Errorf("unable to upload image: %w", err)
	}
	return img, nil
}

// TransitionImageLayout records a barrier for the two transitions an upload
// needs: undefined to transfer destination, and transfer destination to
// shader read.
func (cb *CommandBuffer) TransitionImageLayout(img *Image, oldLayout, newLayout vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	default:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}

	vk.CmdPipelineBarrier(cb.VK(), srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (cb *CommandBuffer) CopyBufferToImage(src *Buffer, img *Image) {
	vk.CmdCopyBufferToImage(cb.VK(), src.VKBuffer, img.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: img.Extent,
	}})
}

func (i *Image) Destroy() {
	if i.external {
		return
	}
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
	if i.Memory != nil {
		i.Memory.Destroy()
		i.Memory = nil
	}
}

type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

// CreateLinearSampler creates a bilinear, clamp-to-edge sampler.
func (d *Device) CreateLinearSampler() (*Sampler, error) {
	var sampler vk.Sampler
	err := vk.Error(vk.CreateSampler(d.VKDevice, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler))
	if err != nil {
		return nil, err
	}
	return &Sampler{Device: d, VKSampler: sampler}, nil
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
}
