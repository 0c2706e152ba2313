package minecart

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory is a block of memory allocated from one of the device's memory
// types. Only host visible memory can be mapped.
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
}

func (d *DeviceMemory) Destroy() {
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

// Map maps size bytes starting at offset.
func (d *DeviceMemory) Map(offset, size uint64) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	err := vk.Error(vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &ptr))
	if err != nil {
		return nil, err
	}
	return ptr, nil
}

func (d *DeviceMemory) Unmap() {
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
}

// MapCopyUnmap copies data to the start of the memory block.
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	ptr, err := d.Map(0, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(ToBytes(ptr, len(data)), data)
	d.Unmap()
	return nil
}
