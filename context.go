/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mtl

import (
	"errors"

	"goarrg.com/rhi/mtl/platform"
)

/*
Context owns everything a renderer needs to encode work for one device: the queue, the
command buffer being recorded, the state and pipeline caches and the utility pipelines.
A Context and everything created from it must only be used from a single goroutine, GPU
completion is the only thing that happens concurrently.
*/
type Context struct {
	noCopy     noCopy
	config     Config
	device     platform.Device
	library    platform.Library
	properties platform.Properties

	queue     *CommandQueue
	cmdBuffer *CommandBuffer
	numFlush  uint64

	stateCache       *StateCache
	computePipelines computePipelineCache
	utils            *RenderUtils
	queryPool        *OcclusionQueryPool
}

// NewContext creates a context for device, library holds the internal utility shaders.
func NewContext(device platform.Device, library platform.Library, config Config) (*Context, error) {
	config.validate()

	queue, err := newCommandQueue(device, config.WaitTimeout)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		config:           config,
		device:           device,
		library:          library,
		properties:       device.Properties(),
		queue:            queue,
		stateCache:       newStateCache(device),
		computePipelines: newComputePipelineCache(device),
	}
	ctx.noCopy.init("Context")
	ctx.utils = newRenderUtils(ctx)

	ctx.queryPool, err = newOcclusionQueryPool(ctx)
	if err != nil {
		queue.destroy()
		ctx.noCopy.close()
		return nil, err
	}

	instance.logger.IPrintf("Created context %q on device %q", config.Label, device.Name())
	instance.logger.VPrintf("Config: %s", prettyString(&ctx.config))
	instance.logger.VPrintf("Properties: %s", prettyString(&ctx.properties))
	return ctx, nil
}

func (ctx *Context) Config() Config {
	ctx.noCopy.check()
	return ctx.config
}

func (ctx *Context) Device() platform.Device {
	ctx.noCopy.check()
	return ctx.device
}

func (ctx *Context) Library() platform.Library {
	ctx.noCopy.check()
	return ctx.library
}

func (ctx *Context) Properties() platform.Properties {
	ctx.noCopy.check()
	return ctx.properties
}

func (ctx *Context) Queue() *CommandQueue {
	ctx.noCopy.check()
	return ctx.queue
}

func (ctx *Context) StateCache() *StateCache {
	ctx.noCopy.check()
	return ctx.stateCache
}

func (ctx *Context) RenderUtils() *RenderUtils {
	ctx.noCopy.check()
	return ctx.utils
}

func (ctx *Context) OcclusionQueryPool() *OcclusionQueryPool {
	ctx.noCopy.check()
	return ctx.queryPool
}

// CommandBuffer returns the command buffer being recorded, creating one if needed.
func (ctx *Context) CommandBuffer() (*CommandBuffer, error) {
	ctx.noCopy.check()
	if ctx.cmdBuffer != nil && ctx.cmdBuffer.Ready() {
		return ctx.cmdBuffer, nil
	}
	cb, err := ctx.queue.makeCommandBuffer(genID(ctx.config.Label, "commandBuffer", ctx.numFlush))
	if err != nil {
		return nil, err
	}
	ctx.cmdBuffer = cb
	return cb, nil
}

// RenderCommandEncoder returns the active render encoder if it was started with an equal
// descriptor, otherwise it starts a new render pass.
func (ctx *Context) RenderCommandEncoder(desc RenderPassDesc) (*RenderCommandEncoder, error) {
	cb, err := ctx.CommandBuffer()
	if err != nil {
		return nil, err
	}
	if cb.ActiveEncoderType() == EncoderTypeRender && cb.render.desc.Equal(desc) {
		return &cb.render, nil
	}
	if cb.ActiveEncoderType() == EncoderTypeRender {
		cb.EndActiveEncoder()
	}
	return cb.BeginRenderPass(desc), nil
}

// ActiveRenderCommandEncoder returns nil if no render pass is open.
func (ctx *Context) ActiveRenderCommandEncoder() *RenderCommandEncoder {
	ctx.noCopy.check()
	if ctx.cmdBuffer == nil || !ctx.cmdBuffer.Ready() || ctx.cmdBuffer.ActiveEncoderType() != EncoderTypeRender {
		return nil
	}
	return &ctx.cmdBuffer.render
}

func (ctx *Context) BlitCommandEncoder() (*BlitCommandEncoder, error) {
	cb, err := ctx.CommandBuffer()
	if err != nil {
		return nil, err
	}
	if cb.ActiveEncoderType() == EncoderTypeBlit {
		return &cb.blit, nil
	}
	return cb.BeginBlit(), nil
}

func (ctx *Context) ComputeCommandEncoder() (*ComputeCommandEncoder, error) {
	cb, err := ctx.CommandBuffer()
	if err != nil {
		return nil, err
	}
	if cb.ActiveEncoderType() == EncoderTypeCompute {
		return &cb.compute, nil
	}
	return cb.BeginCompute(), nil
}

// EndEncoding ends the active encoder of the current command buffer, if any.
func (ctx *Context) EndEncoding() {
	ctx.noCopy.check()
	if ctx.cmdBuffer != nil && ctx.cmdBuffer.Ready() {
		ctx.cmdBuffer.EndActiveEncoder()
	}
}

// Flush commits the current command buffer without waiting for it.
func (ctx *Context) Flush() {
	ctx.noCopy.check()
	if ctx.queryPool.NumRenderPassAllocatedQueries() > 0 {
		ctx.EndEncoding()
		if err := ctx.queryPool.ResolveVisibilityResults(ctx); err != nil {
			instance.logger.WPrintf("Failed to resolve visibility results: %v", err)
		}
	}
	if ctx.cmdBuffer != nil {
		ctx.cmdBuffer.Commit()
		ctx.cmdBuffer = nil
		ctx.numFlush++
	}
	ctx.queue.runRetired()
}

// Finish flushes and waits for every command buffer submitted so far.
func (ctx *Context) Finish() error {
	ctx.Flush()
	return ctx.queue.FinishAllCommands()
}

// Present schedules d to be shown after the current command buffer and flushes it.
func (ctx *Context) Present(d platform.Drawable) error {
	cb, err := ctx.CommandBuffer()
	if err != nil {
		return err
	}
	cb.Present(d)
	ctx.Flush()
	return nil
}

func (ctx *Context) IsResourceBeingUsedByGPU(r GPUResource) bool {
	ctx.noCopy.check()
	return ctx.queue.IsResourceBeingUsedByGPU(r)
}

// EnsureResourceReadyForCPU flushes the current command buffer if it references r, then
// blocks until the GPU is done with r.
func (ctx *Context) EnsureResourceReadyForCPU(r GPUResource) error {
	ctx.noCopy.check()
	if !ctx.queue.IsResourceBeingUsedByGPU(r) {
		return nil
	}
	if ctx.cmdBuffer != nil && r.resource().LastQueueSerial() >= ctx.cmdBuffer.Serial() {
		ctx.Flush()
	}
	if err := ctx.queue.EnsureResourceReadyForCPU(r); err != nil {
		return err
	}
	ctx.queue.runRetired()
	return nil
}

// DestroyWhenUnused destroys d right away if the GPU is done with r, otherwise once the
// current command buffer retires.
func (ctx *Context) DestroyWhenUnused(r GPUResource, d Destroyer) {
	ctx.noCopy.check()
	if !ctx.queue.IsResourceBeingUsedByGPU(r) {
		d.Destroy()
		return
	}
	cb, err := ctx.CommandBuffer()
	if err != nil {
		instance.logger.WPrintf("Destroying resource in use by the GPU: %v", err)
		d.Destroy()
		return
	}
	cb.QueueDestroy(d)
}

// HandleDeviceLost drops every cached object and abandons in flight command buffers, the
// context can be used again afterwards.
func (ctx *Context) HandleDeviceLost() {
	ctx.noCopy.check()
	ctx.cmdBuffer = nil
	ctx.queue.abandon()
	ctx.stateCache.Clear()
	ctx.computePipelines.clear()
	ctx.utils.clearPipelines()
	ctx.queryPool.reset()
}

func (ctx *Context) Destroy() {
	ctx.noCopy.check()
	if err := ctx.Finish(); err != nil && !errors.Is(err, ErrorDeviceLost{}) {
		instance.logger.EPrintf("Failed to finish commands on destroy: %v", err)
	}

	instance.logger.VPrintf("StateCache: %s", prettyString(ctx.stateCache))
	instance.logger.VPrintf("ComputePipelineCache: %s", prettyString(&ctx.computePipelines))
	instance.logger.VPrintf("RenderUtils: %s", prettyString(ctx.utils))

	ctx.queryPool.destroy()
	ctx.utils.destroy()
	ctx.stateCache.Clear()
	ctx.computePipelines.clear()
	ctx.queue.destroy()
	ctx.noCopy.close()
	instance.logger.IPrintf("Destroyed context %q", ctx.config.Label)
}
