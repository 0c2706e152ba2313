package minecart

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

const hostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

// BoundBuffer is a buffer together with the memory bound to it.
type BoundBuffer struct {
	*Buffer
	Memory *DeviceMemory
}

func (d *Device) CreateBoundBuffer(size uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags) (*BoundBuffer, error) {
	buffer, err := d.CreateBuffer(size, usage)
	if err != nil {
		return nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	if err := buffer.Bind(memory, 0); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}
	return &BoundBuffer{Buffer: buffer, Memory: memory}, nil
}

// CreateHostBuffer creates a host visible, coherent buffer that can be
// written with Write at any time.
func (d *Device) CreateHostBuffer(size uint64, usage vk.BufferUsageFlags) (*BoundBuffer, error) {
	return d.CreateBoundBuffer(size, usage, hostVisible)
}

// CreateStagedBuffer creates a device local buffer holding data. The data goes
// through a temporary host visible staging buffer and a one-time copy on the
// graphics queue; the call returns once the copy has finished.
func (d *Device) CreateStagedBuffer(data []byte, usage vk.BufferUsageFlags) (*BoundBuffer, error) {
	size := uint64(len(data))

	staging, err := d.CreateHostBuffer(size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return nil, fmt.Errorf("unable to create staging buffer: %w", err)
	}
	defer staging.Destroy()

	if err := staging.Write(data); err != nil {
		return nil, fmt.Errorf("unable to fill staging buffer: %w", err)
	}

	dst, err := d.CreateBoundBuffer(size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, fmt.Errorf("unable to create device buffer: %w", err)
	}

	err = d.SubmitOneTime(func(cb *CommandBuffer) {
		cb.CopyBuffer(staging.Buffer, dst.Buffer, size)
	})
	if err != nil {
		dst.Destroy()
		return nil, fmt.Errorf("unable to copy staging buffer: %w", err)
	}

	return dst, nil
}

// Write copies data to the start of a host visible buffer.
func (b *BoundBuffer) Write(data []byte) error {
	if uint64(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes exceeds buffer size %d", len(data), b.Size)
	}
	return b.Memory.MapCopyUnmap(data)
}

func (b *BoundBuffer) Destroy() {
	if b.Buffer != nil {
		b.Buffer.Destroy()
	}
	if b.Memory != nil {
		b.Memory.Destroy()
	}
}
