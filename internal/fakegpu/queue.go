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

package fakegpu

import (
	"sync"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/platform"
)

// Command is one recorded encoder call.
type Command struct {
	Encoder string
	Name    string
	Args    []any
}

/*
CommandQueue tracks every command buffer it created. Committed buffers stay pending until
Complete is called on them, unless AutoComplete is enabled.
*/
type CommandQueue struct {
	device *Device

	mtx          sync.Mutex
	buffers      []*CommandBuffer
	autoComplete bool
	failCreate   error
}

var _ platform.CommandQueue = (*CommandQueue)(nil)

// SetAutoComplete makes Commit complete buffers with CommandBufferStatusCompleted.
func (q *CommandQueue) SetAutoComplete(enabled bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.autoComplete = enabled
}

// FailNextCommandBuffer makes the next NewCommandBuffer call return err.
func (q *CommandQueue) FailNextCommandBuffer(err error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.failCreate = err
}

func (q *CommandQueue) NewCommandBuffer() (platform.CommandBuffer, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if q.failCreate != nil {
		err := q.failCreate
		q.failCreate = nil
		return nil, err
	}
	cb := &CommandBuffer{queue: q}
	q.buffers = append(q.buffers, cb)
	return cb, nil
}

// CommandBuffers returns every buffer created so far in creation order.
func (q *CommandQueue) CommandBuffers() []*CommandBuffer {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return append([]*CommandBuffer(nil), q.buffers...)
}

// Last returns the most recently created buffer.
func (q *CommandQueue) Last() *CommandBuffer {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if len(q.buffers) == 0 {
		return nil
	}
	return q.buffers[len(q.buffers)-1]
}

// Pending returns committed buffers that did not complete yet.
func (q *CommandQueue) Pending() []*CommandBuffer {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	var pending []*CommandBuffer
	for _, cb := range q.buffers {
		if cb.Committed() && !cb.Completed() {
			pending = append(pending, cb)
		}
	}
	return pending
}

// CompleteAll completes every pending buffer in commit order.
func (q *CommandQueue) CompleteAll() {
	for _, cb := range q.Pending() {
		cb.Complete(platform.CommandBufferStatusCompleted)
	}
}

/*
CommandBuffer records encoder calls in order. Completion handlers run on the goroutine
calling Complete.
*/
type CommandBuffer struct {
	queue *CommandQueue

	mtx       sync.Mutex
	label     string
	handlers  []func(platform.CommandBufferStatus)
	commands  []Command
	presented []platform.Drawable
	committed bool
	completed bool
	encoding  bool
}

var _ platform.CommandBuffer = (*CommandBuffer)(nil)

func (cb *CommandBuffer) SetLabel(label string) {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	cb.label = label
}

func (cb *CommandBuffer) Label() string {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	return cb.label
}

func (cb *CommandBuffer) record(encoder, name string, args ...any) {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	if cb.committed {
		panic(debug.Errorf("Command %s.%s recorded into committed command buffer %q", encoder, name, cb.label))
	}
	cb.commands = append(cb.commands, Command{Encoder: encoder, Name: name, Args: args})
}

func (cb *CommandBuffer) beginEncoder(encoder string, args ...any) {
	cb.mtx.Lock()
	if cb.encoding {
		cb.mtx.Unlock()
		panic(debug.Errorf("%s started on command buffer %q while another encoder is active", encoder, cb.label))
	}
	cb.encoding = true
	cb.mtx.Unlock()
	cb.record(encoder, "Begin", args...)
}

func (cb *CommandBuffer) endEncoder(encoder string) {
	cb.record(encoder, "EndEncoding")
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	cb.encoding = false
}

func (cb *CommandBuffer) RenderCommandEncoder(desc platform.RenderPassDescriptor) platform.RenderCommandEncoder {
	cb.beginEncoder("Render", desc)
	return &RenderCommandEncoder{encoder{cb: cb, name: "Render"}}
}

func (cb *CommandBuffer) BlitCommandEncoder() platform.BlitCommandEncoder {
	cb.beginEncoder("Blit")
	return &BlitCommandEncoder{encoder{cb: cb, name: "Blit"}}
}

func (cb *CommandBuffer) ComputeCommandEncoder() platform.ComputeCommandEncoder {
	cb.beginEncoder("Compute")
	return &ComputeCommandEncoder{encoder{cb: cb, name: "Compute"}}
}

func (cb *CommandBuffer) AddCompletedHandler(f func(platform.CommandBufferStatus)) {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	cb.handlers = append(cb.handlers, f)
}

func (cb *CommandBuffer) PresentDrawable(d platform.Drawable) {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	cb.presented = append(cb.presented, d)
}

func (cb *CommandBuffer) Commit() {
	cb.mtx.Lock()
	if cb.committed {
		cb.mtx.Unlock()
		panic(debug.Errorf("Command buffer %q committed twice", cb.label))
	}
	if cb.encoding {
		cb.mtx.Unlock()
		panic(debug.Errorf("Command buffer %q committed with an active encoder", cb.label))
	}
	cb.committed = true
	cb.mtx.Unlock()

	cb.queue.mtx.Lock()
	auto := cb.queue.autoComplete
	cb.queue.mtx.Unlock()
	if auto {
		cb.Complete(platform.CommandBufferStatusCompleted)
	}
}

// Complete runs the completion handlers with status, completing twice is a no-op.
func (cb *CommandBuffer) Complete(status platform.CommandBufferStatus) {
	cb.mtx.Lock()
	if !cb.committed {
		cb.mtx.Unlock()
		panic(debug.Errorf("Command buffer %q completed before commit", cb.label))
	}
	if cb.completed {
		cb.mtx.Unlock()
		return
	}
	cb.completed = true
	handlers := cb.handlers
	cb.mtx.Unlock()

	for _, h := range handlers {
		h(status)
	}
}

func (cb *CommandBuffer) Committed() bool {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	return cb.committed
}

func (cb *CommandBuffer) Completed() bool {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	return cb.completed
}

func (cb *CommandBuffer) Commands() []Command {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	return append([]Command(nil), cb.commands...)
}

// Count returns how many commands named name were recorded by any encoder.
func (cb *CommandBuffer) Count(name string) int {
	n := 0
	for _, c := range cb.Commands() {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Find returns the recorded commands named name.
func (cb *CommandBuffer) Find(name string) []Command {
	var found []Command
	for _, c := range cb.Commands() {
		if c.Name == name {
			found = append(found, c)
		}
	}
	return found
}

func (cb *CommandBuffer) Presented() []platform.Drawable {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()
	return append([]platform.Drawable(nil), cb.presented...)
}

type encoder struct {
	cb   *CommandBuffer
	name string
}

func (e *encoder) record(name string, args ...any) {
	e.cb.record(e.name, name, args...)
}

func (e *encoder) EndEncoding() {
	e.cb.endEncoder(e.name)
}

type RenderCommandEncoder struct {
	encoder
}

var _ platform.RenderCommandEncoder = (*RenderCommandEncoder)(nil)

func (e *RenderCommandEncoder) SetRenderPipelineState(state platform.RenderPipelineState) {
	e.record("SetRenderPipelineState", state)
}

func (e *RenderCommandEncoder) SetTriangleFillMode(mode platform.TriangleFillMode) {
	e.record("SetTriangleFillMode", mode)
}

func (e *RenderCommandEncoder) SetFrontFacingWinding(winding platform.Winding) {
	e.record("SetFrontFacingWinding", winding)
}

func (e *RenderCommandEncoder) SetCullMode(mode platform.CullMode) {
	e.record("SetCullMode", mode)
}

func (e *RenderCommandEncoder) SetDepthStencilState(state platform.DepthStencilState) {
	e.record("SetDepthStencilState", state)
}

func (e *RenderCommandEncoder) SetDepthBias(depthBias, slopeScale, clamp float32) {
	e.record("SetDepthBias", depthBias, slopeScale, clamp)
}

func (e *RenderCommandEncoder) SetStencilReferenceValues(front, back uint32) {
	e.record("SetStencilReferenceValues", front, back)
}

func (e *RenderCommandEncoder) SetViewport(viewport platform.Viewport) {
	e.record("SetViewport", viewport)
}

func (e *RenderCommandEncoder) SetScissorRect(rect gmath.Recti32) {
	e.record("SetScissorRect", rect)
}

func (e *RenderCommandEncoder) SetBlendColor(r, g, b, a float32) {
	e.record("SetBlendColor", r, g, b, a)
}

func (e *RenderCommandEncoder) SetVisibilityResultMode(mode platform.VisibilityResultMode, offset int) {
	e.record("SetVisibilityResultMode", mode, offset)
}

func (e *RenderCommandEncoder) SetVertexBuffer(buffer platform.Buffer, offset, index int) {
	e.record("SetVertexBuffer", buffer, offset, index)
}

func (e *RenderCommandEncoder) SetVertexBytes(data []byte, index int) {
	e.record("SetVertexBytes", append([]byte(nil), data...), index)
}

func (e *RenderCommandEncoder) SetVertexSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.record("SetVertexSamplerState", state, lodMinClamp, lodMaxClamp, index)
}

func (e *RenderCommandEncoder) SetVertexTexture(texture platform.Texture, index int) {
	e.record("SetVertexTexture", texture, index)
}

func (e *RenderCommandEncoder) SetFragmentBuffer(buffer platform.Buffer, offset, index int) {
	e.record("SetFragmentBuffer", buffer, offset, index)
}

func (e *RenderCommandEncoder) SetFragmentBytes(data []byte, index int) {
	e.record("SetFragmentBytes", append([]byte(nil), data...), index)
}

func (e *RenderCommandEncoder) SetFragmentSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.record("SetFragmentSamplerState", state, lodMinClamp, lodMaxClamp, index)
}

func (e *RenderCommandEncoder) SetFragmentTexture(texture platform.Texture, index int) {
	e.record("SetFragmentTexture", texture, index)
}

func (e *RenderCommandEncoder) DrawPrimitives(primitive platform.PrimitiveType, vertexStart, vertexCount, instanceCount int) {
	e.record("DrawPrimitives", primitive, vertexStart, vertexCount, instanceCount)
}

func (e *RenderCommandEncoder) DrawIndexedPrimitives(primitive platform.PrimitiveType, indexCount int, indexType platform.IndexType, indexBuffer platform.Buffer, indexBufferOffset, instanceCount int) {
	e.record("DrawIndexedPrimitives", primitive, indexCount, indexType, indexBuffer, indexBufferOffset, instanceCount)
}

func (e *RenderCommandEncoder) SetColorStoreAction(action platform.StoreAction, index int) {
	e.record("SetColorStoreAction", action, index)
}

func (e *RenderCommandEncoder) SetDepthStoreAction(action platform.StoreAction) {
	e.record("SetDepthStoreAction", action)
}

func (e *RenderCommandEncoder) SetStencilStoreAction(action platform.StoreAction) {
	e.record("SetStencilStoreAction", action)
}

type BlitCommandEncoder struct {
	encoder
}

var _ platform.BlitCommandEncoder = (*BlitCommandEncoder)(nil)

// CopyBufferToBuffer also copies the bytes so tests can observe the result.
func (e *BlitCommandEncoder) CopyBufferToBuffer(src platform.Buffer, srcOffset int, dst platform.Buffer, dstOffset, size int) {
	e.record("CopyBufferToBuffer", src, srcOffset, dst, dstOffset, size)
	s, sok := src.(*Buffer)
	d, dok := dst.(*Buffer)
	if sok && dok {
		copy(d.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
	}
}

func (e *BlitCommandEncoder) CopyBufferToTexture(src platform.Buffer, srcOffset, srcBytesPerRow, srcBytesPerImage int, srcSize gmath.Extent3i32,
	dst platform.Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32,
) {
	e.record("CopyBufferToTexture", src, srcOffset, srcBytesPerRow, srcBytesPerImage, srcSize, dst, dstSlice, dstLevel, dstOrigin)
}

func (e *BlitCommandEncoder) CopyTextureToBuffer(src platform.Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, srcSize gmath.Extent3i32,
	dst platform.Buffer, dstOffset, dstBytesPerRow, dstBytesPerImage int,
) {
	e.record("CopyTextureToBuffer", src, srcSlice, srcLevel, srcOrigin, srcSize, dst, dstOffset, dstBytesPerRow, dstBytesPerImage)
}

func (e *BlitCommandEncoder) CopyTextureToTexture(src platform.Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, srcSize gmath.Extent3i32,
	dst platform.Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32,
) {
	e.record("CopyTextureToTexture", src, srcSlice, srcLevel, srcOrigin, srcSize, dst, dstSlice, dstLevel, dstOrigin)
}

func (e *BlitCommandEncoder) FillBuffer(buffer platform.Buffer, r platform.Range, value uint8) {
	e.record("FillBuffer", buffer, r, value)
	if b, ok := buffer.(*Buffer); ok {
		for i := r.Location; i < r.Location+r.Length; i++ {
			b.data[i] = value
		}
	}
}

func (e *BlitCommandEncoder) GenerateMipmaps(texture platform.Texture) {
	e.record("GenerateMipmaps", texture)
}

func (e *BlitCommandEncoder) SynchronizeBuffer(buffer platform.Buffer) {
	e.record("SynchronizeBuffer", buffer)
}

func (e *BlitCommandEncoder) SynchronizeTexture(texture platform.Texture) {
	e.record("SynchronizeTexture", texture)
}

type ComputeCommandEncoder struct {
	encoder
}

var _ platform.ComputeCommandEncoder = (*ComputeCommandEncoder)(nil)

func (e *ComputeCommandEncoder) SetComputePipelineState(state platform.ComputePipelineState) {
	e.record("SetComputePipelineState", state)
}

func (e *ComputeCommandEncoder) SetBuffer(buffer platform.Buffer, offset, index int) {
	e.record("SetBuffer", buffer, offset, index)
}

func (e *ComputeCommandEncoder) SetBytes(data []byte, index int) {
	e.record("SetBytes", append([]byte(nil), data...), index)
}

func (e *ComputeCommandEncoder) SetSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.record("SetSamplerState", state, lodMinClamp, lodMaxClamp, index)
}

func (e *ComputeCommandEncoder) SetTexture(texture platform.Texture, index int) {
	e.record("SetTexture", texture, index)
}

func (e *ComputeCommandEncoder) DispatchThreadgroups(threadgroupsPerGrid, threadsPerThreadgroup gmath.Extent3u32) {
	e.record("DispatchThreadgroups", threadgroupsPerGrid, threadsPerThreadgroup)
}

func (e *ComputeCommandEncoder) DispatchThreads(threadsPerGrid, threadsPerThreadgroup gmath.Extent3u32) {
	e.record("DispatchThreads", threadsPerGrid, threadsPerThreadgroup)
}
