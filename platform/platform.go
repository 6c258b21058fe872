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


/*
Package platform defines the Metal-shaped interfaces the mtl core encodes against.

Implementations wrap the native API. The core never discovers devices itself, it is handed
a Device (and a Library holding its internal utility shaders) by the renderer. Objects
returned from a Device are opaque to the core, it only forwards them back into encoders.
*/
package platform

import "goarrg.com/gmath"

type Device interface {
	Name() string
	Properties() Properties

	NewCommandQueue() (CommandQueue, error)
	NewBuffer(label string, length int, storage StorageMode) (Buffer, error)
	NewTexture(label string, desc TextureDescriptor) (Texture, error)
	NewDepthStencilState(label string, desc DepthStencilDescriptor) (DepthStencilState, error)
	NewSamplerState(label string, desc SamplerDescriptor) (SamplerState, error)
	NewRenderPipelineState(label string, desc RenderPipelineDescriptor) (RenderPipelineState, error)
	NewComputePipelineState(label string, fn Function) (ComputePipelineState, error)
}

// FunctionConstants specialize a library function, keyed by constant name.
type FunctionConstants map[string]uint32

type Library interface {
	NewFunction(name string, constants FunctionConstants) (Function, error)
}

type Function interface {
	Name() string
}

type DepthStencilState interface {
	Label() string
}

type SamplerState interface {
	Label() string
}

type RenderPipelineState interface {
	Label() string
}

type ComputePipelineState interface {
	Label() string
	MaxTotalThreadsPerThreadgroup() uint32
	ThreadExecutionWidth() uint32
}

type Buffer interface {
	Length() int
	StorageMode() StorageMode
	// Contents is only valid for Shared and Managed storage.
	Contents() []byte
	// DidModifyRange flushes CPU writes of Managed storage, it is a no-op otherwise.
	DidModifyRange(offset, length int)
}

type Range struct {
	Location int
	Length   int
}

type Region struct {
	Origin gmath.Vector3i32
	Size   gmath.Extent3i32
}

type Texture interface {
	TextureType() TextureType
	PixelFormat() PixelFormat
	Width() int
	Height() int
	Depth() int
	MipmapLevelCount() int
	ArrayLength() int
	SampleCount() int

	NewTextureView(format PixelFormat, textureType TextureType, levels, slices Range) (Texture, error)
	ReplaceRegion(region Region, level, slice int, data []byte, bytesPerRow, bytesPerImage int)
	GetBytes(dst []byte, bytesPerRow, bytesPerImage int, region Region, level, slice int)
}

type Drawable interface {
	Texture() Texture
}

type CommandQueue interface {
	NewCommandBuffer() (CommandBuffer, error)
}

type CommandBuffer interface {
	SetLabel(label string)
	RenderCommandEncoder(desc RenderPassDescriptor) RenderCommandEncoder
	BlitCommandEncoder() BlitCommandEncoder
	ComputeCommandEncoder() ComputeCommandEncoder
	// AddCompletedHandler handlers may be called from any goroutine.
	AddCompletedHandler(f func(CommandBufferStatus))
	PresentDrawable(d Drawable)
	Commit()
}

type CommandEncoder interface {
	EndEncoding()
}

type RenderCommandEncoder interface {
	CommandEncoder

	SetRenderPipelineState(state RenderPipelineState)
	SetTriangleFillMode(mode TriangleFillMode)
	SetFrontFacingWinding(winding Winding)
	SetCullMode(mode CullMode)
	SetDepthStencilState(state DepthStencilState)
	SetDepthBias(depthBias, slopeScale, clamp float32)
	SetStencilReferenceValues(front, back uint32)
	SetViewport(viewport Viewport)
	SetScissorRect(rect gmath.Recti32)
	SetBlendColor(r, g, b, a float32)
	SetVisibilityResultMode(mode VisibilityResultMode, offset int)

	SetVertexBuffer(buffer Buffer, offset, index int)
	SetVertexBytes(data []byte, index int)
	SetVertexSamplerState(state SamplerState, lodMinClamp, lodMaxClamp float32, index int)
	SetVertexTexture(texture Texture, index int)

	SetFragmentBuffer(buffer Buffer, offset, index int)
	SetFragmentBytes(data []byte, index int)
	SetFragmentSamplerState(state SamplerState, lodMinClamp, lodMaxClamp float32, index int)
	SetFragmentTexture(texture Texture, index int)

	DrawPrimitives(primitive PrimitiveType, vertexStart, vertexCount, instanceCount int)
	DrawIndexedPrimitives(primitive PrimitiveType, indexCount int, indexType IndexType, indexBuffer Buffer, indexBufferOffset, instanceCount int)

	SetColorStoreAction(action StoreAction, index int)
	SetDepthStoreAction(action StoreAction)
	SetStencilStoreAction(action StoreAction)
}

type BlitCommandEncoder interface {
	CommandEncoder

	CopyBufferToBuffer(src Buffer, srcOffset int, dst Buffer, dstOffset, size int)
	CopyBufferToTexture(src Buffer, srcOffset, srcBytesPerRow, srcBytesPerImage int, srcSize gmath.Extent3i32,
		dst Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32)
	CopyTextureToBuffer(src Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, srcSize gmath.Extent3i32,
		dst Buffer, dstOffset, dstBytesPerRow, dstBytesPerImage int)
	CopyTextureToTexture(src Texture, srcSlice, srcLevel int, srcOrigin gmath.Vector3i32, srcSize gmath.Extent3i32,
		dst Texture, dstSlice, dstLevel int, dstOrigin gmath.Vector3i32)
	FillBuffer(buffer Buffer, r Range, value uint8)
	GenerateMipmaps(texture Texture)
	SynchronizeBuffer(buffer Buffer)
	SynchronizeTexture(texture Texture)
}

type ComputeCommandEncoder interface {
	CommandEncoder

	SetComputePipelineState(state ComputePipelineState)
	SetBuffer(buffer Buffer, offset, index int)
	SetBytes(data []byte, index int)
	SetSamplerState(state SamplerState, lodMinClamp, lodMaxClamp float32, index int)
	SetTexture(texture Texture, index int)
	DispatchThreadgroups(threadgroupsPerGrid, threadsPerThreadgroup gmath.Extent3u32)
	DispatchThreads(threadsPerGrid, threadsPerThreadgroup gmath.Extent3u32)
}
