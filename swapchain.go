package minecart

import (
	"math"

	vk "github.com/vulkan-go/vulkan"
)

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain
}

// Destroy releases the swapchain. It is a no-op on a nil swapchain.
func (s *Swapchain) Destroy() {
	if s == nil {
		return
	}
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

func (s *Swapchain) GetImages() ([]*Image, error) {
	var count uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, nil))
	if err != nil {
		return nil, err
	}

	images := make([]vk.Image, count)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &count, images))
	if err != nil {
		return nil, err
	}

	ret := make([]*Image, count)
	for i := range images {
		ret[i] = &Image{
			Device:   s.Device,
			VKImage:  images[i],
			VKFormat: s.Format,
			Extent:   vk.Extent3D{Width: s.Extent.Width, Height: s.Extent.Height, Depth: 1},
			external: true,
		}
	}
	return ret, nil
}

// AcquireNextImage returns the index of the next presentable image. The raw
// result is returned alongside so callers can react to vk.ErrorOutOfDate and
// vk.Suboptimal.
func (s *Swapchain) AcquireNextImage(signal *Semaphore) (uint32, vk.Result) {
	var index uint32
	res := vk.AcquireNextImage(s.Device.VKDevice, s.VKSwapchain, math.MaxUint64, signal.VKSemaphore, vk.NullFence, &index)
	return index, res
}

type CreateSwapchainOptions struct {
	OldSwapchain *Swapchain
	// ActualSize is the framebuffer size, used when the surface leaves the
	// extent up to the application.
	ActualSize vk.Extent2D
	VSync      bool
}

// ChooseSurfaceFormat prefers 8 bit BGRA with an sRGB non-linear colour space
// and otherwise takes the first format offered.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
}

// ChoosePresentMode returns FIFO when vsync is wanted (always available) and
// otherwise mailbox, then immediate, then FIFO.
func ChoosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, want := range []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate} {
		for _, m := range modes {
			if m == want {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's current extent, or actual clamped to the
// surface limits when the surface leaves the choice to the application.
func ChooseExtent(caps *vk.SurfaceCapabilities, actual vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(actual.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(actual.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi != 0 && v > hi {
		return hi
	}
	return v
}

func (d *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options CreateSwapchainOptions) (*Swapchain, error) {
	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	formats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	format := ChooseSurfaceFormat(formats)
	extent := ChooseExtent(caps, options.ActualSize)

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      ChoosePresentMode(modes, options.VSync),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
		ImageSharingMode: vk.SharingModeExclusive,
	}
	if options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}
	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(graphicsQueue.QueueFamily.Index), uint32(presentQueue.QueueFamily.Index)}
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(d.VKDevice, &createInfo, nil, &swapchain))
	if err != nil {
		return nil, err
	}

	return &Swapchain{
		Extent:      extent,
		Format:      format.Format,
		Device:      d,
		VKSwapchain: swapchain,
	}, nil
}
