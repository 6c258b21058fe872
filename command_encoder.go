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
	"fmt"

	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/platform"
)

type EncoderType uint8

const (
	EncoderTypeNone EncoderType = iota
	EncoderTypeRender
	EncoderTypeBlit
	EncoderTypeCompute
)

func (t EncoderType) String() string {
	switch t {
	case EncoderTypeNone:
		return "None"
	case EncoderTypeRender:
		return "Render"
	case EncoderTypeBlit:
		return "Blit"
	case EncoderTypeCompute:
		return "Compute"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(t))
	}
}

type commandEncoderInterface interface {
	kind() EncoderType
	endEncoding()
}

type commandEncoder struct {
	cmdBuffer   *CommandBuffer
	encoderType EncoderType
	active      bool
}

func (e *commandEncoder) init(cb *CommandBuffer, t EncoderType) {
	e.cmdBuffer = cb
	e.encoderType = t
}

func (e *commandEncoder) kind() EncoderType {
	return e.encoderType
}

// Valid returns true while the encoder is the command buffer's active encoder.
func (e *commandEncoder) Valid() bool {
	return e.active
}

func (e *commandEncoder) CommandBuffer() *CommandBuffer {
	return e.cmdBuffer
}

func (e *commandEncoder) checkActive(op string) {
	e.cmdBuffer.noCopy.check()
	if !e.active {
		abort("%s called on inactive %s encoder of command buffer %q", op, e.encoderType.String(), e.cmdBuffer.label)
	}
}

func (e *commandEncoder) limits() *platform.Limits {
	return &e.cmdBuffer.queue.properties.Limits
}

func (e *commandEncoder) features() *platform.Features {
	return &e.cmdBuffer.queue.properties.Features
}

func checkBufferRange(op string, b *Buffer, offset, size int) {
	b.noCopy.check()
	if offset < 0 || size < 0 || offset+size > b.Size() {
		abort("%s: range [%d, %d) is out of bounds of buffer %q of size [%d]", op, offset, offset+size, b.label, b.Size())
	}
}

type BlitCommandEncoder struct {
	commandEncoder
	enc platform.BlitCommandEncoder
}

// BeginBlit starts a blit encoder, ending any other active encoder.
func (cb *CommandBuffer) BeginBlit() *BlitCommandEncoder {
	cb.setActiveEncoder(&cb.blit)
	cb.blit.enc = cb.blitCommandEncoder()
	cb.blit.active = true
	return &cb.blit
}

func (e *BlitCommandEncoder) endEncoding() {
	e.checkActive("End")
	e.enc.EndEncoding()
	e.enc = nil
	e.active = false
	e.cmdBuffer.clearActiveEncoder(e)
}

func (e *BlitCommandEncoder) End() {
	e.endEncoding()
}

func (e *BlitCommandEncoder) CopyBuffer(src *Buffer, srcOffset int, dst *Buffer, dstOffset, size int) {
	e.checkActive("CopyBuffer")
	checkBufferRange("CopyBuffer src", src, srcOffset, size)
	checkBufferRange("CopyBuffer dst", dst, dstOffset, size)
	e.cmdBuffer.setReadDependency(src)
	e.cmdBuffer.setWriteDependency(dst)
	e.enc.CopyBufferToBuffer(src.buffer, srcOffset, dst.buffer, dstOffset, size)
}

func (e *BlitCommandEncoder) CopyBufferToTexture(src *Buffer, srcOffset, srcBytesPerRow, srcBytesPerImage int, size gmath.Extent3i32,
	dst *Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32,
) {
	e.checkActive("CopyBufferToTexture")
	checkBufferRange("CopyBufferToTexture src", src, srcOffset, srcBytesPerImage*int(size.Z))
	dst.checkRegion(platform.Region{Origin: dstOrigin, Size: size}, dstLevel, dstSlice)
	e.cmdBuffer.setReadDependency(src)
	e.cmdBuffer.setWriteDependency(dst)
	e.enc.CopyBufferToTexture(src.buffer, srcOffset, srcBytesPerRow, srcBytesPerImage, size, dst.texture, dstSlice, dstLevel, dstOrigin)
}

func (e *BlitCommandEncoder) CopyTextureToBuffer(src *Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, size gmath.Extent3i32,
	dst *Buffer, dstOffset, dstBytesPerRow, dstBytesPerImage int,
) {
	e.checkActive("CopyTextureToBuffer")
	src.checkRegion(platform.Region{Origin: srcOrigin, Size: size}, srcLevel, srcSlice)
	checkBufferRange("CopyTextureToBuffer dst", dst, dstOffset, dstBytesPerImage*int(size.Z))
	e.cmdBuffer.setReadDependency(src)
	e.cmdBuffer.setWriteDependency(dst)
	e.enc.CopyTextureToBuffer(src.texture, srcSlice, srcLevel, srcOrigin, size, dst.buffer, dstOffset, dstBytesPerRow, dstBytesPerImage)
}

func (e *BlitCommandEncoder) CopyTexture(src *Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, size gmath.Extent3i32,
	dst *Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32,
) {
	e.checkActive("CopyTexture")
	src.checkRegion(platform.Region{Origin: srcOrigin, Size: size}, srcLevel, srcSlice)
	dst.checkRegion(platform.Region{Origin: dstOrigin, Size: size}, dstLevel, dstSlice)
	e.cmdBuffer.setReadDependency(src)
	e.cmdBuffer.setWriteDependency(dst)
	e.enc.CopyTextureToTexture(src.texture, srcSlice, srcLevel, srcOrigin, size, dst.texture, dstSlice, dstLevel, dstOrigin)
}

func (e *BlitCommandEncoder) FillBuffer(b *Buffer, offset, size int, value uint8) {
	e.checkActive("FillBuffer")
	checkBufferRange("FillBuffer", b, offset, size)
	e.cmdBuffer.setWriteDependency(b)
	e.enc.FillBuffer(b.buffer, platform.Range{Location: offset, Length: size}, value)
}

func (e *BlitCommandEncoder) GenerateMipmaps(t *Texture) {
	e.checkActive("GenerateMipmaps")
	t.noCopy.check()
	e.cmdBuffer.setWriteDependency(t)
	e.enc.GenerateMipmaps(t.texture)
}

// SynchronizeBuffer copies GPU writes back to the CPU copy of a managed buffer, it is a
// no-op for other storage modes.
func (e *BlitCommandEncoder) SynchronizeBuffer(b *Buffer) {
	e.checkActive("SynchronizeBuffer")
	b.noCopy.check()
	if b.storage != platform.StorageModeManaged {
		return
	}
	e.cmdBuffer.setReadDependency(b)
	e.enc.SynchronizeBuffer(b.buffer)
}

func (e *BlitCommandEncoder) SynchronizeTexture(t *Texture) {
	e.checkActive("SynchronizeTexture")
	t.noCopy.check()
	if t.storage != platform.StorageModeManaged {
		return
	}
	e.cmdBuffer.setReadDependency(t)
	e.enc.SynchronizeTexture(t.texture)
}

type ComputeCommandEncoder struct {
	commandEncoder
	enc      platform.ComputeCommandEncoder
	pipeline platform.ComputePipelineState
}

// BeginCompute starts a compute encoder, ending any other active encoder.
func (cb *CommandBuffer) BeginCompute() *ComputeCommandEncoder {
	cb.setActiveEncoder(&cb.compute)
	cb.compute.enc = cb.computeCommandEncoder()
	cb.compute.pipeline = nil
	cb.compute.active = true
	return &cb.compute
}

func (e *ComputeCommandEncoder) endEncoding() {
	e.checkActive("End")
	e.enc.EndEncoding()
	e.enc = nil
	e.pipeline = nil
	e.active = false
	e.cmdBuffer.clearActiveEncoder(e)
}

func (e *ComputeCommandEncoder) End() {
	e.endEncoding()
}

func (e *ComputeCommandEncoder) SetComputePipelineState(state platform.ComputePipelineState) {
	e.checkActive("SetComputePipelineState")
	if state == e.pipeline {
		return
	}
	e.pipeline = state
	e.enc.SetComputePipelineState(state)
}

func checkBindingIndex(op string, index, limit int) {
	if !gmath.InRange(index, 0, limit-1) {
		abort("%s: binding index [%d] is out of range [0, %d)", op, index, limit)
	}
}

func (e *ComputeCommandEncoder) SetBuffer(b *Buffer, offset, index int) {
	e.checkActive("SetBuffer")
	checkBindingIndex("SetBuffer", index, maxComputeBindings)
	checkBufferRange("SetBuffer", b, offset, 0)
	e.cmdBuffer.setReadDependency(b)
	e.enc.SetBuffer(b.buffer, offset, index)
}

// SetBufferForWrite binds a buffer the kernel writes to.
func (e *ComputeCommandEncoder) SetBufferForWrite(b *Buffer, offset, index int) {
	e.checkActive("SetBufferForWrite")
	checkBindingIndex("SetBufferForWrite", index, maxComputeBindings)
	checkBufferRange("SetBufferForWrite", b, offset, 0)
	e.cmdBuffer.setWriteDependency(b)
	e.enc.SetBuffer(b.buffer, offset, index)
}

func (e *ComputeCommandEncoder) SetBytes(data []byte, index int) {
	e.checkActive("SetBytes")
	checkBindingIndex("SetBytes", index, maxComputeBindings)
	e.enc.SetBytes(data, index)
}

func (e *ComputeCommandEncoder) SetSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.checkActive("SetSamplerState")
	checkBindingIndex("SetSamplerState", index, MaxShaderSamplers)
	e.enc.SetSamplerState(state, lodMinClamp, lodMaxClamp, index)
}

func (e *ComputeCommandEncoder) SetTexture(t *Texture, index int) {
	e.checkActive("SetTexture")
	checkBindingIndex("SetTexture", index, MaxShaderTextures)
	t.noCopy.check()
	e.cmdBuffer.setReadDependency(t)
	e.enc.SetTexture(t.texture, index)
}

// SetTextureForWrite binds a texture the kernel writes to.
func (e *ComputeCommandEncoder) SetTextureForWrite(t *Texture, index int) {
	e.checkActive("SetTextureForWrite")
	checkBindingIndex("SetTextureForWrite", index, MaxShaderTextures)
	t.noCopy.check()
	e.cmdBuffer.setWriteDependency(t)
	e.enc.SetTexture(t.texture, index)
}

func (e *ComputeCommandEncoder) validateThreadgroup(op string, threadsPerThreadgroup gmath.Extent3u32) {
	if e.pipeline == nil {
		abort("%s called without a compute pipeline state", op)
	}
	if threadsPerThreadgroup.X == 0 || threadsPerThreadgroup.Y == 0 || threadsPerThreadgroup.Z == 0 {
		abort("%s: threadsPerThreadgroup %+v has a zero dimension", op, threadsPerThreadgroup)
	}

	maxTotal := e.pipeline.MaxTotalThreadsPerThreadgroup()
	if l := e.limits().Compute.MaxTotalThreadsPerThreadgroup; l > 0 {
		maxTotal = min(maxTotal, l)
	}
	if total := threadsPerThreadgroup.X * threadsPerThreadgroup.Y * threadsPerThreadgroup.Z; total > maxTotal {
		abort("%s: threadsPerThreadgroup %+v has %d threads, limit is %d", op, threadsPerThreadgroup, total, maxTotal)
	}
	if l := e.limits().Compute.MaxThreadsPerThreadgroup; l.X > 0 &&
		(threadsPerThreadgroup.X > l.X || threadsPerThreadgroup.Y > l.Y || threadsPerThreadgroup.Z > l.Z) {
		abort("%s: threadsPerThreadgroup %+v would exceed Properties.Limits.Compute.MaxThreadsPerThreadgroup %+v", op, threadsPerThreadgroup, l)
	}
}

func (e *ComputeCommandEncoder) Dispatch(threadgroupsPerGrid, threadsPerThreadgroup gmath.Extent3u32) {
	e.checkActive("Dispatch")
	e.validateThreadgroup("Dispatch", threadsPerThreadgroup)
	if l := e.limits().Compute.MaxThreadgroupsPerGrid; l.X > 0 &&
		(threadgroupsPerGrid.X > l.X || threadgroupsPerGrid.Y > l.Y || threadgroupsPerGrid.Z > l.Z) {
		abort("Dispatch: threadgroupsPerGrid %+v would exceed Properties.Limits.Compute.MaxThreadgroupsPerGrid %+v", threadgroupsPerGrid, l)
	}
	if threadgroupsPerGrid.X == 0 || threadgroupsPerGrid.Y == 0 || threadgroupsPerGrid.Z == 0 {
		return
	}
	e.enc.DispatchThreadgroups(threadgroupsPerGrid, threadsPerThreadgroup)
}

// DispatchNonUniform dispatches exactly threadsPerGrid threads, the device must support
// non uniform threadgroups.
func (e *ComputeCommandEncoder) DispatchNonUniform(threadsPerGrid, threadsPerThreadgroup gmath.Extent3u32) {
	e.checkActive("DispatchNonUniform")
	if !e.features().NonUniformThreadgroups {
		abort("DispatchNonUniform called on a device without non uniform threadgroup support")
	}
	e.validateThreadgroup("DispatchNonUniform", threadsPerThreadgroup)
	if threadsPerGrid.X == 0 || threadsPerGrid.Y == 0 || threadsPerGrid.Z == 0 {
		return
	}
	e.enc.DispatchThreads(threadsPerGrid, threadsPerThreadgroup)
}
