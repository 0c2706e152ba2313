package minecart

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Device is a logical Vulkan device. Window creates it together with a
// graphics queue and a command pool used for one-time transfer work.
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device

	queue *Queue
	pool  *CommandPool
}

func (d *Device) Destroy() {
	if d.pool != nil {
		d.pool.Destroy()
		d.pool = nil
	}
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

func (d *Device) WaitIdle() {
	vk.DeviceWaitIdle(d.VKDevice)
}

func (d *Device) GetQueue(qf *QueueFamily) *Queue {
	var vkq vk.Queue
	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)

	return &Queue{
		Device:      d,
		QueueFamily: qf,
		VKQueue:     vkq,
	}
}

// GraphicsQueue returns the queue used for rendering and uploads.
func (d *Device) GraphicsQueue() *Queue { return d.queue }

// setTransfer wires the queue and pool used by SubmitOneTime.
func (d *Device) setTransfer(q *Queue, pool *CommandPool) {
	d.queue = q
	d.pool = pool
}

// SubmitOneTime records commands with fn into a fresh command buffer, submits
// it to the graphics queue and blocks until the queue is idle.
func (d *Device) SubmitOneTime(fn func(cb *CommandBuffer)) error {
	if d.queue == nil || d.pool == nil {
		return ErrNotInitialized
	}

	cb, err := d.pool.AllocateBuffer()
	if err != nil {
		return fmt.Errorf("unable to allocate command buffer: %w", err)
	}
	defer d.pool.FreeBuffer(cb)

	if err := cb.BeginOneTime(); err != nil {
		return fmt.Errorf("unable to begin command buffer: %w", err)
	}
	fn(cb)
	if err := cb.End(); err != nil {
		return fmt.Errorf("unable to end command buffer: %w", err)
	}

	return d.queue.SubmitWaitIdle(cb)
}

type AllocationRequirements struct {
	Size           int
	MemoryTypeBits uint32
}

func (d *Device) AllocateForBuffer(b *Buffer, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	ar := b.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}

func (d *Device) AllocateForImage(i *Image, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	var mr vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.VKDevice, i.VKImage, &mr)
	mr.Deref()
	return d.Allocate(int(mr.Size), mr.MemoryTypeBits, memoryProperties)
}

func (d *Device) Allocate(sizeInBytes int, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	typeIndex, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(sizeInBytes),
		MemoryTypeIndex: typeIndex,
	}

	var deviceMemory vk.DeviceMemory
	err = vk.Error(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory))
	if err != nil {
		return nil, err
	}

	return &DeviceMemory{
		Device:         d,
		VKDeviceMemory: deviceMemory,
		Size:           uint64(sizeInBytes),
	}, nil
}
