/*
Package minecart is a small 3D rendering scaffold on top of Vulkan and glfw. It opens a
window, brings up a device and swapchain, and gives the application a few thin wrappers to
draw with: models made of colored vertices, shader pairs compiled from WGSL, and a per-frame
context to record into. It is not an engine; there is no scene graph, no asset pipeline and
no resource pooling.

Vulkan in brief

Vulkan leaves almost everything OpenGL used to manage up to the application. Work is
recorded into command buffers and submitted to queues; those commands run pipelines the
application built beforehand, reading data the application placed in buffers and images.
The wrappers in this package keep the native handles visible in every object (fields
prefixed with 'VK') so anything not covered here can still be done with the vk package.

Native Vulkan terms
	Instance	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	Device		the logical device, target of most of the vulkan apis
	Queue		a queue command buffers are submitted to
	Swapchain	the images presented to the window
	RenderPass	the attachments a frame draws into and how they are loaded and stored
	Pipeline	shader stages plus fixed function state used for a draw call
	DeviceMemory	an allocation backing buffers and images
	DescriptorSet	the resources (textures, buffers) a shader reads

A frame

Window.RenderFrame drives one frame:

	1. wait until the frame slot's previous submission finished
	2. acquire a swapchain image, or submit an empty command buffer when there is none
	   (minimized window, out of date swapchain)
	3. begin the render pass, clearing color and depth
	4. call each RenderFunc with a FrameContext; models and shaders record into it
	5. end the pass, submit, present

About this package

	Window		glfw window, device bootstrap, swapchain and the frame loop above
	FrameContext	what a render callback records into; only valid during the callback
	Model		vertex and index data uploaded to device local buffers
	Shader		a vertex and fragment shader pair and the pipeline built from them
	ResourceManager	loads shader sources from directories or embedded file systems

The camera, imgui and app sub packages build on these. Errors returned by the package are
*Error values wrapping the sentinel errors, so both errors.Is and errors.As work on them.
Logging goes through log/slog and is silent until SetLogger is called.
*/
package minecart
