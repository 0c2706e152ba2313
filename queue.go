package minecart

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return vk.Error(vk.QueueWaitIdle(q.VKQueue))
}

// SubmitWaitIdle submits the buffers and waits for the queue to drain.
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	if err := q.Submit(SubmitOptions{}, buffers...); err != nil {
		return err
	}
	return q.WaitIdle()
}

// SubmitOptions carries the synchronisation objects of a submission. Any of
// them may be nil.
type SubmitOptions struct {
	Wait      *Semaphore
	WaitStage vk.PipelineStageFlags
	Signal    *Semaphore
	Fence     *Fence
}

func (q *Queue) Submit(opts SubmitOptions, buffers ...*CommandBuffer) error {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(b)),
		PCommandBuffers:    b,
	}
	if opts.Wait != nil {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{opts.Wait.VKSemaphore}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{opts.WaitStage}
	}
	if opts.Signal != nil {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{opts.Signal.VKSemaphore}
	}

	fence := vk.NullFence
	if opts.Fence != nil {
		fence = opts.Fence.VKFence
	}

	return vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence))
}

// Present queues swapchain image index for presentation once wait is
// signaled. The raw result is returned so callers can react to
// vk.ErrorOutOfDate and vk.Suboptimal.
func (q *Queue) Present(sc *Swapchain, index uint32, wait *Semaphore) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.VKSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.VKSwapchain},
		PImageIndices:      []uint32{index},
	}
	return vk.QueuePresent(q.VKQueue, &presentInfo)
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device, q.QueueFamily)
}
