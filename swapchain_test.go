package minecart

import "testing"

func TestNilSwapchainDestroy(t *testing.T) {
	var s *Swapchain
	s.Destroy()
}
