package minecart

import (
	"fmt"
	"runtime"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// WindowConfig configures the window and its swapchain.
type WindowConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// VSync selects FIFO presentation.
	VSync bool
	// Validation enables the Khronos validation layer and forwards its
	// reports to Logger.
	Validation bool

	ClearColor [4]float32

	// FramesInFlight is the number of frames the CPU may record ahead of
	// the GPU.
	FramesInFlight int
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Title:          "minecart",
		Width:          960,
		Height:         540,
		Resizable:      true,
		VSync:          true,
		ClearColor:     [4]float32{0.1, 0.1, 0.1, 1},
		FramesInFlight: 2,
	}
}

type frameSlot struct {
	cmd            *CommandBuffer
	imageAvailable *Semaphore
	renderFinished *Semaphore
	inFlight       *Fence
}

// Window owns the glfw window and every Vulkan object needed to draw into
// it. All methods must be called from the thread that called Initialize.
//
// See https://vulkan-tutorial.com/ for a walkthrough of the setup.
type Window struct {
	cfg        WindowConfig
	clearColor [4]float32

	glfwReady  bool
	glfwWindow *glfw.Window
	events     eventQueue

	instance      *Instance
	surface       vk.Surface
	hasSurface    bool
	device        *Device
	graphicsQueue *Queue
	presentQueue  *Queue
	commandPool   *CommandPool
	pipelineCache *PipelineCache
	renderPass    *RenderPass
	depthFormat   vk.Format

	swapchain    *Swapchain
	views        []*ImageView
	depthImage   *Image
	depthView    *ImageView
	framebuffers []*Framebuffer

	frames     []frameSlot
	frameIndex int
	recreate   bool

	initialized bool
}

// NewWindow returns an uninitialized window. Zero values in cfg are replaced
// with the defaults.
func NewWindow(cfg WindowConfig) *Window {
	def := DefaultWindowConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = def.FramesInFlight
	}
	return &Window{cfg: cfg, clearColor: cfg.ClearColor}
}

func (w *Window) Config() WindowConfig { return w.cfg }

// Initialize creates the window and brings up Vulkan. On failure everything
// created so far is released again.
func (w *Window) Initialize() (err error) {
	if w.initialized {
		return NewError(KindWindow, "initialize", ErrAlreadyInitialized)
	}

	defer func() {
		if err != nil {
			w.release()
		}
	}()

	// glfw and the Vulkan surface must stay on one OS thread.
	runtime.LockOSThread()

	if err := w.createWindow(); err != nil {
		return NewError(KindWindow, "initialize", err)
	}
	if err := w.createDevice(); err != nil {
		return NewError(KindGPU, "initialize", err)
	}
	if err := w.createRenderer(); err != nil {
		return NewError(KindGPU, "initialize", err)
	}

	w.initialized = true
	Logger().Info("window initialized",
		"title", w.cfg.Title,
		"device", w.device.PhysicalDevice.DeviceName,
		"width", w.swapchain.Extent.Width,
		"height", w.swapchain.Extent.Height)
	return nil
}

func (w *Window) createWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("unable to initialize glfw: %w", err)
	}
	w.glfwReady = true

	if !glfw.VulkanSupported() {
		return fmt.Errorf("vulkan is unsupported")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("unable to initialize vulkan: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if w.cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	window, err := glfw.CreateWindow(w.cfg.Width, w.cfg.Height, w.cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("unable to create window: %w", err)
	}
	w.glfwWindow = window
	w.events.install(window)
	return nil
}

func (w *Window) createDevice() error {
	app := &App{
		Name:       w.cfg.Title,
		EngineName: "minecart",
		Version:    Version{Major: 0, Minor: 1, Patch: 0},
	}
	for _, ext := range w.glfwWindow.GetRequiredInstanceExtensions() {
		app.EnableExtension(ext)
	}
	if w.cfg.Validation {
		if err := app.EnableDebugging(); err != nil {
			Logger().Warn("validation disabled", "err", err)
		}
	}

	instance, err := app.CreateInstance()
	if err != nil {
		return fmt.Errorf("unable to create instance: %w", err)
	}
	w.instance = instance

	if w.cfg.Validation && len(app.EnabledLayers) > 0 {
		if err := instance.UseLoggerDebugCallback(); err != nil {
			Logger().Warn("unable to install debug report callback", "err", err)
		}
	}

	surface, err := w.glfwWindow.CreateWindowSurface(instance.VKInstance, nil)
	if err != nil {
		return fmt.Errorf("unable to create surface: %w", err)
	}
	w.surface = vk.SurfaceFromPointer(surface)
	w.hasSurface = true

	pd, graphics, present, err := pickPhysicalDevice(instance, w.surface)
	if err != nil {
		return err
	}

	families := QueueFamilySlice{graphics}
	if present.Index != graphics.Index {
		families = append(families, present)
	}

	device, err := pd.CreateLogicalDevice(families, &CreateDeviceOptions{
		EnabledExtensions: []string{"VK_KHR_swapchain"},
	})
	if err != nil {
		return fmt.Errorf("unable to create device: %w", err)
	}
	w.device = device
	w.graphicsQueue = device.GetQueue(graphics)
	w.presentQueue = device.GetQueue(present)

	w.commandPool, err = device.CreateCommandPool(graphics)
	if err != nil {
		return fmt.Errorf("unable to create command pool: %w", err)
	}
	device.setTransfer(w.graphicsQueue, w.commandPool)

	w.pipelineCache, err = device.CreatePipelineCache()
	if err != nil {
		return fmt.Errorf("unable to create pipeline cache: %w", err)
	}

	w.depthFormat, err = pd.FindDepthFormat()
	if err != nil {
		return err
	}

	Logger().Info("device selected", "name", pd.DeviceName, "type", pd.DeviceType(),
		"graphics_queue", graphics.Index, "present_queue", present.Index)
	return nil
}

// pickPhysicalDevice picks the best scoring device that can render to and
// present on surface, preferring a single family that does both.
func pickPhysicalDevice(instance *Instance, surface vk.Surface) (*PhysicalDevice, *QueueFamily, *QueueFamily, error) {
	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error getting devices: %w", err)
	}

	var (
		best              *PhysicalDevice
		graphics, present *QueueFamily
	)
	for _, pd := range devices {
		if best != nil && pd.score() <= best.score() {
			continue
		}
		exts, err := pd.SupportedExtensions()
		if err != nil || !contains(exts, "VK_KHR_swapchain") {
			continue
		}

		families := pd.QueueFamilies()
		if both := families.FilterGraphicsAndPresent(surface); len(both) > 0 {
			best, graphics, present = pd, both[0], both[0]
			continue
		}
		g, p := families.FilterGraphics(), families.FilterPresent(surface)
		if len(g) > 0 && len(p) > 0 {
			best, graphics, present = pd, g[0], p[0]
		}
	}

	if best == nil {
		return nil, nil, nil, ErrNoSuitableDevice
	}
	return best, graphics, present, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (w *Window) createRenderer() error {
	if err := w.createSwapchain(nil); err != nil {
		return err
	}

	var err error
	w.renderPass, err = w.device.CreateRenderPass(w.swapchain.Format, w.depthFormat)
	if err != nil {
		return fmt.Errorf("unable to create render pass: %w", err)
	}

	if err := w.createFramebuffers(); err != nil {
		return err
	}

	cmds, err := w.commandPool.AllocateBuffers(w.cfg.FramesInFlight)
	if err != nil {
		return fmt.Errorf("unable to allocate command buffers: %w", err)
	}
	w.frames = make([]frameSlot, len(cmds))
	for i := range w.frames {
		slot := &w.frames[i]
		slot.cmd = cmds[i]
		if slot.imageAvailable, err = w.device.CreateSemaphore(); err != nil {
			return err
		}
		if slot.renderFinished, err = w.device.CreateSemaphore(); err != nil {
			return err
		}
		if slot.inFlight, err = w.device.CreateFence(true); err != nil {
			return err
		}
	}
	w.frameIndex = 0
	return nil
}

func (w *Window) createSwapchain(old *Swapchain) error {
	width, height := w.glfwWindow.GetFramebufferSize()
	swapchain, err := w.device.CreateSwapchain(w.surface, w.graphicsQueue, w.presentQueue, CreateSwapchainOptions{
		OldSwapchain: old,
		ActualSize:   vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		VSync:        w.cfg.VSync,
	})
	if err != nil {
		return fmt.Errorf("unable to create swapchain: %w", err)
	}
	w.swapchain = swapchain

	images, err := swapchain.GetImages()
	if err != nil {
		return fmt.Errorf("unable to get swapchain images: %w", err)
	}
	w.views = make([]*ImageView, 0, len(images))
	for _, image := range images {
		view, err := image.CreateImageView()
		if err != nil {
			return err
		}
		w.views = append(w.views, view)
	}
	return nil
}

func (w *Window) createFramebuffers() error {
	extent := w.swapchain.Extent

	var err error
	w.depthImage, err = w.device.CreateBoundImage(extent, w.depthFormat, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return fmt.Errorf("unable to create depth image: %w", err)
	}
	w.depthView, err = w.depthImage.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}

	w.framebuffers = make([]*Framebuffer, 0, len(w.views))
	for _, view := range w.views {
		fb, err := w.renderPass.CreateFramebuffer(extent, view, w.depthView)
		if err != nil {
			return fmt.Errorf("unable to create framebuffer: %w", err)
		}
		w.framebuffers = append(w.framebuffers, fb)
	}
	return nil
}

func (w *Window) destroyFramebuffers() {
	for _, fb := range w.framebuffers {
		fb.Destroy()
	}
	w.framebuffers = nil
	if w.depthView != nil {
		w.depthView.Destroy()
		w.depthView = nil
	}
	if w.depthImage != nil {
		w.depthImage.Destroy()
		w.depthImage = nil
	}
}

func (w *Window) destroySwapchainViews() {
	for _, view := range w.views {
		view.Destroy()
	}
	w.views = nil
}

// recreateSwapchain rebuilds the swapchain and everything sized after it.
// It reports false without doing anything while the window is minimized.
func (w *Window) recreateSwapchain() (bool, error) {
	if minimized(w.glfwWindow.GetFramebufferSize()) {
		return false, nil
	}

	w.device.WaitIdle()
	w.destroyFramebuffers()
	w.destroySwapchainViews()

	// old is nil when the previous recreation failed
	old := w.swapchain
	err := w.createSwapchain(old)
	if old != nil {
		old.Destroy()
	}
	if err != nil {
		if w.swapchain == old {
			w.swapchain = nil
		}
		return false, NewError(KindGPU, "recreate swapchain", err)
	}
	if err := w.createFramebuffers(); err != nil {
		return false, NewError(KindGPU, "recreate swapchain", err)
	}

	w.recreate = false
	Logger().Info("swapchain recreated", "width", w.swapchain.Extent.Width, "height", w.swapchain.Extent.Height)
	return true, nil
}

// PollEvents processes pending window events and returns the input events
// collected since the previous call.
func (w *Window) PollEvents() []Event {
	if w.glfwWindow == nil {
		return nil
	}
	glfw.PollEvents()
	events := w.events.drain()
	for _, ev := range events {
		if ev.Type == EventResize {
			w.recreate = true
		}
	}
	return events
}

// RenderFrame records and presents one frame. Each layer is called in order
// inside the render pass with the viewport and scissor covering the whole
// swapchain image. When no image can be acquired (minimized or out of date
// swapchain) an empty command buffer is submitted instead and the layers are
// not called. The first layer error is returned after the frame has been
// submitted.
func (w *Window) RenderFrame(layers ...RenderFunc) error {
	if !w.initialized {
		return NewError(KindWindow, "render frame", ErrNotInitialized)
	}

	slot := &w.frames[w.frameIndex]
	if err := slot.inFlight.Wait(-1); err != nil {
		return gpuError("wait for frame", err)
	}

	if w.recreate {
		ok, err := w.recreateSwapchain()
		if err != nil {
			return err
		}
		if !ok {
			return w.submitEmpty(slot)
		}
	}

	index, res := w.swapchain.AcquireNextImage(slot.imageAvailable)
	draw, recreate, err := acquireResult(res)
	if recreate {
		w.recreate = true
	}
	if err != nil {
		return err
	}
	if !draw {
		return w.submitEmpty(slot)
	}

	if err := slot.inFlight.Reset(); err != nil {
		return gpuError("reset fence", err)
	}

	cb := slot.cmd
	if err := cb.Reset(); err != nil {
		return gpuError("reset command buffer", err)
	}
	if err := cb.Begin(); err != nil {
		return gpuError("begin command buffer", err)
	}

	extent := w.swapchain.Extent
	fb := w.framebuffers[index]
	cb.BeginRenderPass(w.renderPass, fb, w.clearColor)
	cb.SetViewport(0, 0, float32(extent.Width), float32(extent.Height))
	cb.SetScissor(0, 0, extent.Width, extent.Height)

	frame := &FrameContext{
		CommandBuffer: cb,
		RenderPass:    w.renderPass,
		Framebuffer:   fb,
		Extent:        extent,
		FrameIndex:    w.frameIndex,
		Window:        w,
		Device:        w.device,
		active:        true,
	}
	var layerErr error
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if err := layer(frame); err != nil && layerErr == nil {
			layerErr = err
		}
	}
	frame.active = false

	cb.EndRenderPass()
	if err := cb.End(); err != nil {
		return gpuError("end command buffer", err)
	}

	err = w.graphicsQueue.Submit(SubmitOptions{
		Wait:      slot.imageAvailable,
		WaitStage: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		Signal:    slot.renderFinished,
		Fence:     slot.inFlight,
	}, cb)
	if err != nil {
		return gpuError("submit frame", err)
	}

	res = w.presentQueue.Present(w.swapchain, index, slot.renderFinished)
	switch res {
	case vk.Success:
	case vk.Suboptimal, vk.ErrorOutOfDate:
		w.recreate = true
	default:
		return gpuError("present", vk.Error(res))
	}

	w.frameIndex = (w.frameIndex + 1) % len(w.frames)
	return layerErr
}

// acquireResult decides what RenderFrame does with the result of acquiring a
// swapchain image: draw into it, or skip the layers and submit an empty
// command buffer. recreate requests a new swapchain before the next frame.
func acquireResult(res vk.Result) (draw, recreate bool, err error) {
	switch res {
	case vk.Success:
		return true, false, nil
	case vk.Suboptimal:
		return true, true, nil
	case vk.ErrorOutOfDate:
		return false, true, nil
	}
	return false, false, gpuError("acquire image", vk.Error(res))
}

func minimized(width, height int) bool {
	return width <= 0 || height <= 0
}

// submitEmpty keeps the frame slot's fence cycling when nothing is drawn.
func (w *Window) submitEmpty(slot *frameSlot) error {
	if err := slot.inFlight.Reset(); err != nil {
		return gpuError("reset fence", err)
	}
	if err := slot.cmd.Reset(); err != nil {
		return gpuError("reset command buffer", err)
	}
	if err := slot.cmd.Begin(); err != nil {
		return gpuError("begin command buffer", err)
	}
	if err := slot.cmd.End(); err != nil {
		return gpuError("end command buffer", err)
	}
	if err := w.graphicsQueue.Submit(SubmitOptions{Fence: slot.inFlight}, slot.cmd); err != nil {
		return gpuError("submit empty frame", err)
	}
	return nil
}

func (w *Window) ClearColor() [4]float32 { return w.clearColor }

func (w *Window) SetClearColor(c [4]float32) { w.clearColor = c }

// Extent is the current swapchain size, zero before Initialize.
func (w *Window) Extent() vk.Extent2D {
	if w.swapchain == nil {
		return vk.Extent2D{}
	}
	return w.swapchain.Extent
}

func (w *Window) FramebufferSize() (int, int) {
	if w.glfwWindow == nil {
		return 0, 0
	}
	return w.glfwWindow.GetFramebufferSize()
}

// ShouldClose reports whether the user asked to close the window. An
// uninitialized window always should.
func (w *Window) ShouldClose() bool {
	if w.glfwWindow == nil {
		return true
	}
	return w.glfwWindow.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	if w.glfwWindow != nil {
		w.glfwWindow.SetShouldClose(v)
	}
}

// SetCursorCaptured hides the cursor and locks it to the window, giving
// unbounded relative motion for mouse look.
func (w *Window) SetCursorCaptured(captured bool) {
	if w.glfwWindow == nil {
		return
	}
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	w.glfwWindow.SetInputMode(glfw.CursorMode, mode)
}

func (w *Window) Device() *Device { return w.device }

func (w *Window) RenderPass() *RenderPass { return w.renderPass }

func (w *Window) PipelineCache() *PipelineCache { return w.pipelineCache }

func (w *Window) FramesInFlight() int { return w.cfg.FramesInFlight }

// GLFW exposes the underlying window for input polling.
func (w *Window) GLFW() *glfw.Window { return w.glfwWindow }

func (w *Window) Initialized() bool { return w.initialized }

// Shutdown waits for the GPU and releases everything in reverse creation
// order. It is safe to call more than once, or without Initialize.
func (w *Window) Shutdown() {
	if w.device != nil {
		w.device.WaitIdle()
	}
	w.release()
	w.initialized = false
}

func (w *Window) release() {
	for _, slot := range w.frames {
		if slot.inFlight != nil {
			slot.inFlight.Destroy()
		}
		if slot.renderFinished != nil {
			slot.renderFinished.Destroy()
		}
		if slot.imageAvailable != nil {
			slot.imageAvailable.Destroy()
		}
		if slot.cmd != nil {
			w.commandPool.FreeBuffer(slot.cmd)
		}
	}
	w.frames = nil

	w.destroyFramebuffers()
	w.destroySwapchainViews()
	if w.swapchain != nil {
		w.swapchain.Destroy()
		w.swapchain = nil
	}
	if w.renderPass != nil {
		w.renderPass.Destroy()
		w.renderPass = nil
	}
	if w.pipelineCache != nil {
		w.pipelineCache.Destroy()
		w.pipelineCache = nil
	}
	if w.device != nil {
		// also destroys the command pool handed over in setTransfer
		w.device.Destroy()
		w.device = nil
		w.commandPool = nil
	} else if w.commandPool != nil {
		w.commandPool.Destroy()
		w.commandPool = nil
	}
	w.graphicsQueue, w.presentQueue = nil, nil
	if w.hasSurface {
		vk.DestroySurface(w.instance.VKInstance, w.surface, nil)
		w.hasSurface = false
	}
	if w.instance != nil {
		w.instance.Destroy()
		w.instance = nil
	}
	if w.glfwWindow != nil {
		w.glfwWindow.Destroy()
		w.glfwWindow = nil
	}
	if w.glfwReady {
		glfw.Terminate()
		w.glfwReady = false
	}
}
