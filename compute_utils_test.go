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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/internal/fakegpu"
	"goarrg.com/rhi/mtl/platform"
)

func lastComputeFunction(t *testing.T, cb *fakegpu.CommandBuffer) *fakegpu.Function {
	t.Helper()
	found := cb.Find("SetComputePipelineState")
	require.NotEmpty(t, found)
	return found[len(found)-1].Args[0].(*fakegpu.ComputePipelineState).Function.(*fakegpu.Function)
}

func readUint32s(t *testing.T, ctx *testContext, b *Buffer, offset, n int) []uint32 {
	t.Helper()
	data, err := b.MapWithOpt(ctx.Context, true, false)
	require.NoError(t, err)
	defer b.Unmap(ctx.Context)

	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[offset+i*4:])
	}
	return out
}

func TestElementType(t *testing.T) {
	assert.Equal(t, 1, ElementTypeUInt8.Size())
	assert.Equal(t, 2, ElementTypeUInt16.Size())
	assert.Equal(t, 4, ElementTypeUInt32.Size())

	assert.Equal(t, platform.IndexTypeUInt16, ElementTypeUInt8.IndexType())
	assert.Equal(t, platform.IndexTypeUInt16, ElementTypeUInt16.IndexType())
	assert.Equal(t, platform.IndexTypeUInt32, ElementTypeUInt32.IndexType())

	assert.Equal(t, "UInt8", ElementTypeUInt8.String())
	assert.Equal(t, "Unknown", ElementType(9).String())
}

func TestConvertIndexBuffer(t *testing.T) {
	ctx := newTestContext(t)
	src, err := MakeBuffer(ctx.Context, "src", 64, nil)
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 128, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt8, 0, src, 0, dst, 0))
	assert.Nil(t, ctx.last())

	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt8, 10, src, 2, dst, 4))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("convertIndexU8ToU16"))
	assert.Equal(t, uint32(0), lastComputeFunction(t, cb).Constants["kSourceBufferAligned"])
	assert.Equal(t, []byte{2, 0, 0, 0, 10, 0, 0, 0}, lastBytes(t, cb, "SetBytes"))
	assert.Equal(t, []any{dst.Platform(), 4, 2}, cb.Find("SetBuffer")[1].Args)

	dispatches := cb.Find("DispatchThreads")
	require.Len(t, dispatches, 1)
	assert.Equal(t, []any{gmath.Extent3u32{X: 10, Y: 1, Z: 1}, gmath.Extent3u32{X: 10, Y: 1, Z: 1}}, dispatches[0].Args)

	assert.True(t, dst.IsBeingUsedByGPU(ctx.Context))
	assert.True(t, dst.IsCPUReadMemDirty())
	assert.True(t, src.IsBeingUsedByGPU(ctx.Context))
	assert.False(t, src.IsCPUReadMemDirty())

	// same variant is served from the compute pipeline cache
	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt8, 10, src, 6, dst, 4))
	assert.Equal(t, 1, ctx.library.Calls("convertIndexU8ToU16"))
	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt8, 10, src, 8, dst, 4))
	assert.Equal(t, 2, ctx.library.Calls("convertIndexU8ToU16"))
	assert.Equal(t, uint32(1), lastComputeFunction(t, cb).Constants["kSourceBufferAligned"])

	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt32, 4, src, 0, dst, 0))
	assert.Equal(t, 1, ctx.library.Calls("convertIndexU32"))
}

func TestConvertIndexBufferUniformThreadgroups(t *testing.T) {
	props := fakegpu.DefaultProperties()
	props.Features.NonUniformThreadgroups = false
	ctx := newTestContextWithConfig(t, props, DefaultConfig())

	src, err := MakeBuffer(ctx.Context, "src", 256, nil)
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 256, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt16, 100, src, 0, dst, 0))
	cb := ctx.last()
	assert.Zero(t, cb.Count("DispatchThreads"))
	dispatches := cb.Find("DispatchThreadgroups")
	require.Len(t, dispatches, 1)
	assert.Equal(t, []any{gmath.Extent3u32{X: 4, Y: 1, Z: 1}, gmath.Extent3u32{X: 32, Y: 1, Z: 1}}, dispatches[0].Args)
}

func TestConvertIndexBufferMissingShader(t *testing.T) {
	ctx := newTestContext(t)
	ctx.library.SetMissing("convertIndexU16", true)
	src, err := MakeBuffer(ctx.Context, "src", 64, nil)
	require.NoError(t, err)

	err = ctx.RenderUtils().ConvertIndexBuffer(ctx.Context, ElementTypeUInt16, 4, src, 0, src, 32)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
	assert.Nil(t, ctx.last())
}

func TestGenerateTriFanBufferFromArrays(t *testing.T) {
	ctx := newTestContext(t)
	dst, err := MakeBuffer(ctx.Context, "dst", 64, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromArrays(ctx.Context, TriFanFromArrayParams{VertexCount: 2, DstBuffer: dst}))
	assert.Nil(t, ctx.last())

	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromArrays(ctx.Context, TriFanFromArrayParams{
		FirstVertex: 3, VertexCount: 5, DstBuffer: dst, DstOffset: 8,
	}))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("genTriFanIndicesFromArray"))
	assert.Equal(t, []byte{3, 0, 0, 0, 3, 0, 0, 0}, lastBytes(t, cb, "SetBytes"))
	assert.Equal(t, []any{dst.Platform(), 8, 2}, cb.Find("SetBuffer")[0].Args)
	assert.Equal(t, gmath.Extent3u32{X: 3, Y: 1, Z: 1}, cb.Find("DispatchThreads")[0].Args[0])
	assert.True(t, dst.IsCPUReadMemDirty())
}

func TestGenerateTriFanBufferFromElementsArrayCPU(t *testing.T) {
	ctx := newTestContext(t)
	dst, err := MakeBuffer(ctx.Context, "dst", 64, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType:    ElementTypeUInt8,
		IndexCount: 4,
		Indices:    []byte{5, 6, 7, 8},
		DstBuffer:  dst,
		DstOffset:  4,
	}))
	// nothing was encoded
	assert.Nil(t, ctx.last())
	assert.Equal(t, []uint32{5, 6, 7, 5, 7, 8}, readUint32s(t, ctx, dst, 4, 6))

	indices := make([]byte, 6)
	binary.LittleEndian.PutUint16(indices[0:], 1000)
	binary.LittleEndian.PutUint16(indices[2:], 1001)
	binary.LittleEndian.PutUint16(indices[4:], 1002)
	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType:    ElementTypeUInt16,
		IndexCount: 3,
		Indices:    indices,
		DstBuffer:  dst,
	}))
	assert.Equal(t, []uint32{1000, 1001, 1002}, readUint32s(t, ctx, dst, 0, 3))

	assert.Panics(t, func() {
		_ = ctx.RenderUtils().GenerateTriFanBufferFromElementsArray(ctx.Context, IndexGenerationParams{
			SrcType:    ElementTypeUInt32,
			IndexCount: 3,
			Indices:    make([]byte, 8),
			DstBuffer:  dst,
		})
	})
}

func TestGenerateTriFanBufferFromElementsArrayGPU(t *testing.T) {
	ctx := newTestContext(t)
	src, err := MakeBuffer(ctx.Context, "src", 64, nil)
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 64, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType:    ElementTypeUInt16,
		IndexCount: 6,
		SrcBuffer:  src,
		SrcOffset:  4,
		DstBuffer:  dst,
	}))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("genTriFanIndicesFromElements"))
	constants := lastComputeFunction(t, cb).Constants
	assert.Equal(t, uint32(ElementTypeUInt16), constants["kSourceIndexType"])
	assert.Equal(t, uint32(1), constants["kSourceBufferAligned"])
	assert.Equal(t, []byte{4, 0, 0, 0, 4, 0, 0, 0}, lastBytes(t, cb, "SetBytes"))
	assert.Equal(t, gmath.Extent3u32{X: 4, Y: 1, Z: 1}, cb.Find("DispatchThreads")[0].Args[0])

	require.NoError(t, ctx.RenderUtils().GenerateTriFanBufferFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType: ElementTypeUInt16, IndexCount: 2, SrcBuffer: src, DstBuffer: dst,
	}))
	assert.Equal(t, 1, cb.Count("DispatchThreads"))
}

func TestGenerateLineLoopLastSegment(t *testing.T) {
	ctx := newTestContext(t)
	dst, err := MakeBuffer(ctx.Context, "dst", 16, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().GenerateLineLoopLastSegment(ctx.Context, 2, 9, dst, 8))
	ranges := dst.Platform().(*fakegpu.Buffer).ModifiedRanges()
	require.NotEmpty(t, ranges)
	assert.Equal(t, fakegpu.Range{Offset: 8, Length: 8}, ranges[len(ranges)-1])
	assert.Equal(t, []uint32{9, 2}, readUint32s(t, ctx, dst, 8, 2))
	assert.Panics(t, func() { _ = ctx.RenderUtils().GenerateLineLoopLastSegment(ctx.Context, 2, 9, dst, 12) })

	require.NoError(t, ctx.RenderUtils().GenerateLineLoopLastSegmentFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType:    ElementTypeUInt8,
		IndexCount: 3,
		Indices:    []byte{4, 5, 6},
		DstBuffer:  dst,
	}))
	assert.Equal(t, []uint32{6, 4}, readUint32s(t, ctx, dst, 0, 2))

	assert.Panics(t, func() {
		_ = ctx.RenderUtils().GenerateLineLoopLastSegmentFromElementsArray(ctx.Context, IndexGenerationParams{
			SrcType: ElementTypeUInt16, IndexCount: 3, Indices: []byte{4, 0, 5, 0}, DstBuffer: dst,
		})
	})
}

func TestGenerateLineLoopLastSegmentFromBuffer(t *testing.T) {
	ctx := newTestContext(t)
	src, err := MakeBuffer(ctx.Context, "src", 8, []byte{7, 0, 3, 0, 4, 0, 5, 0})
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 8, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().GenerateLineLoopLastSegmentFromElementsArray(ctx.Context, IndexGenerationParams{
		SrcType:    ElementTypeUInt16,
		IndexCount: 3,
		SrcBuffer:  src,
		SrcOffset:  2,
		DstBuffer:  dst,
	}))
	assert.Equal(t, []uint32{5, 3}, readUint32s(t, ctx, dst, 0, 2))

	assert.Panics(t, func() {
		_ = ctx.RenderUtils().GenerateLineLoopLastSegmentFromElementsArray(ctx.Context, IndexGenerationParams{
			SrcType: ElementTypeUInt16, IndexCount: 2, SrcBuffer: src, SrcOffset: 9, DstBuffer: dst,
		})
	})

	// the source is left unmapped
	_, err = src.Map(ctx.Context)
	require.NoError(t, err)
	src.Unmap(ctx.Context)
}

func TestCombineVisibilityResultNoOffsets(t *testing.T) {
	ctx := newTestContext(t)
	b, err := MakeBuffer(ctx.Context, "result", 8, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().CombineVisibilityResult(ctx.Context, false, nil, b, b))
	assert.Nil(t, ctx.last())
	assert.Zero(t, ctx.library.Calls("combineVisibilityResult"))
}

func TestGenerateMipmapCS(t *testing.T) {
	ctx := newTestContext(t)
	src, err := Make2DTexture(ctx.Context, "src", platform.PixelFormatRGBA8Unorm, 64, 64, 7, TextureOptions{ShaderWrite: true})
	require.NoError(t, err)
	views := make([]*Texture, src.MipmapLevels())
	for i := range views {
		views[i], err = src.NewMipView(i)
		require.NoError(t, err)
	}

	require.NoError(t, ctx.RenderUtils().GenerateMipmapCS(ctx.Context, src, views))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("generate2DMipmaps"))

	// levels 1-4 from level 0 then 5-6 from level 4
	uniforms := cb.Find("SetBytes")
	require.Len(t, uniforms, 2)
	assert.Equal(t, []byte{0, 0, 0, 0, 4, 0, 0, 0}, uniforms[0].Args[0])
	assert.Equal(t, []byte{4, 0, 0, 0, 2, 0, 0, 0}, uniforms[1].Args[0])

	dispatches := cb.Find("DispatchThreads")
	require.Len(t, dispatches, 2)
	group := gmath.Extent3u32{X: generateMipThreadGroupSize, Y: generateMipThreadGroupSize, Z: 1}
	assert.Equal(t, []any{gmath.Extent3u32{X: 32, Y: 32, Z: 1}, group}, dispatches[0].Args)
	assert.Equal(t, []any{gmath.Extent3u32{X: 2, Y: 2, Z: 1}, group}, dispatches[1].Args)

	assert.True(t, src.IsCPUReadMemDirty())
	assert.True(t, views[6].IsBeingUsedByGPU(ctx.Context))
}

func TestGenerateMipmapCSCube(t *testing.T) {
	ctx := newTestContext(t)
	cube, err := MakeCubeTexture(ctx.Context, "cube", platform.PixelFormatRGBA8Unorm, 16, 5, TextureOptions{ShaderWrite: true})
	require.NoError(t, err)
	views := []*Texture{cube, cube, cube, cube, cube}

	require.NoError(t, ctx.RenderUtils().GenerateMipmapCS(ctx.Context, cube, views))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("generateCubeMipmaps"))
	dispatches := cb.Find("DispatchThreads")
	require.Len(t, dispatches, 1)
	assert.Equal(t, gmath.Extent3u32{X: 8, Y: 8, Z: 6}, dispatches[0].Args[0])
}

func TestGenerateMipmapCSInvalid(t *testing.T) {
	ctx := newTestContext(t)
	src, err := Make2DTexture(ctx.Context, "src", platform.PixelFormatRGBA8Unorm, 64, 64, 7, TextureOptions{ShaderWrite: true})
	require.NoError(t, err)
	assert.Panics(t, func() { _ = ctx.RenderUtils().GenerateMipmapCS(ctx.Context, src, []*Texture{src, src, src}) })

	ms, err := Make2DMSTexture(ctx.Context, "ms", platform.PixelFormatRGBA8Unorm, 16, 16, 4, TextureOptions{})
	require.NoError(t, err)
	assert.Panics(t, func() { _ = ctx.RenderUtils().GenerateMipmapCS(ctx.Context, ms, []*Texture{ms}) })
}

func TestUnpackPixelsFromBufferToTexture(t *testing.T) {
	ctx := newTestContext(t)
	tex, err := Make2DTexture(ctx.Context, "tex", platform.PixelFormatRGBA8Uint, 16, 16, 1, TextureOptions{ShaderWrite: true})
	require.NoError(t, err)
	buf, err := MakeBuffer(ctx.Context, "pixels", 1024, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().UnpackPixelsFromBufferToTexture(ctx.Context, platform.PixelFormatRGBA8Uint, CopyPixelsFromBufferParams{
		CopyPixelsCommonParams: CopyPixelsCommonParams{Buffer: buf, BufferRowPitch: 64, Texture: tex},
		BufferDepthPitch:       1024,
		TextureSize:            gmath.Extent3i32{X: 16, Y: 16, Z: 1},
	}))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("readFromBufferToUIntTexture"))
	constants := lastComputeFunction(t, cb).Constants
	assert.Equal(t, uint32(platform.PixelFormatRGBA8Uint), constants["kCopyFormatType"])
	assert.Equal(t, uint32(shaderTextureType2D), constants["kCopyTextureType"])

	uniforms := lastBytes(t, cb, "SetBytes")
	assert.Equal(t, uint32(4), u32At(uniforms, 4))
	assert.Equal(t, uint32(64), u32At(uniforms, 8))
	assert.Equal(t, uint32(1024), u32At(uniforms, 12))

	group := gmath.Extent3u32{X: copyPixelsThreadGroupSize, Y: copyPixelsThreadGroupSize, Z: 1}
	assert.Equal(t, []any{gmath.Extent3u32{X: 16, Y: 16, Z: 1}, group}, cb.Find("DispatchThreads")[0].Args)
	assert.True(t, tex.IsCPUReadMemDirty())
	assert.False(t, buf.IsCPUReadMemDirty())
}

func TestPackPixelsFromTextureToBuffer(t *testing.T) {
	ctx := newTestContext(t)
	tex, err := Make2DArrayTexture(ctx.Context, "tex", platform.PixelFormatRGBA8Unorm, 16, 16, 1, 4, TextureOptions{})
	require.NoError(t, err)
	buf, err := MakeBuffer(ctx.Context, "pixels", 1024, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.RenderUtils().PackPixelsFromTextureToBuffer(ctx.Context, platform.PixelFormatR8Unorm, CopyPixelsToBufferParams{
		CopyPixelsCommonParams: CopyPixelsCommonParams{Buffer: buf, BufferStartOffset: 16, BufferRowPitch: 4, Texture: tex},
		TextureArea:            gmath.Recti32{X: 2, Y: 3, W: 4, H: 5},
		TextureSliceOrDepth:    2,
		ReverseTextureRowOrder: true,
	}))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("writeFromFloatTextureToBuffer"))
	assert.Equal(t, uint32(shaderTextureType2DArray), lastComputeFunction(t, cb).Constants["kCopyTextureType"])

	uniforms := lastBytes(t, cb, "SetBytes")
	assert.Equal(t, uint32(16), u32At(uniforms, 0))
	assert.Equal(t, uint32(1), u32At(uniforms, 4))
	assert.Equal(t, uint32(2), u32At(uniforms, 16))
	assert.Equal(t, uint32(3), u32At(uniforms, 20))
	assert.Equal(t, uint32(2), u32At(uniforms, 44))
	assert.Equal(t, uint32(1), u32At(uniforms, 48))

	assert.Equal(t, gmath.Extent3u32{X: 4, Y: 5, Z: 1}, cb.Find("DispatchThreads")[0].Args[0])
	assert.True(t, buf.IsCPUReadMemDirty())
	assert.False(t, tex.IsCPUReadMemDirty())
}

func TestConvertVertexFormatToFloat(t *testing.T) {
	ctx := newTestContext(t)
	src, err := MakeBuffer(ctx.Context, "src", 64, nil)
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 128, nil)
	require.NoError(t, err)

	params := VertexFormatConvertParams{
		SrcBuffer:     src,
		SrcStride:     4,
		DstBuffer:     dst,
		DstStride:     8,
		DstComponents: 2,
	}
	// no vertices, the pipeline is still prepared
	require.NoError(t, ctx.RenderUtils().ConvertVertexFormatToFloat(ctx.Context, platform.VertexFormatUShort2Normalized, params))
	assert.Nil(t, ctx.last())
	assert.Equal(t, 1, ctx.device.Calls("NewComputePipelineState"))

	params.VertexCount = 10
	require.NoError(t, ctx.RenderUtils().ConvertVertexFormatToFloat(ctx.Context, platform.VertexFormatUShort2Normalized, params))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("convertToFloatVertexFormat"))
	assert.Equal(t, uint32(platform.VertexFormatUShort2Normalized), lastComputeFunction(t, cb).Constants["kCopyFormatType"])

	uniforms := lastBytes(t, cb, "SetBytes")
	assert.Equal(t, uint32(4), u32At(uniforms, 4))
	assert.Equal(t, uint32(2), u32At(uniforms, 8))
	assert.Equal(t, uint32(2), u32At(uniforms, 12))
	assert.Equal(t, uint32(8), u32At(uniforms, 24))
	assert.Equal(t, uint32(2), u32At(uniforms, 28))
	assert.Equal(t, uint32(10), u32At(uniforms, 32))
	assert.Equal(t, gmath.Extent3u32{X: 10, Y: 1, Z: 1}, cb.Find("DispatchThreads")[0].Args[0])
	assert.True(t, dst.IsCPUReadMemDirty())
}

func TestExpandVertexFormatComponents(t *testing.T) {
	ctx := newTestContext(t)
	src, err := MakeBuffer(ctx.Context, "src", 64, nil)
	require.NoError(t, err)
	dst, err := MakeBuffer(ctx.Context, "dst", 128, nil)
	require.NoError(t, err)

	params := VertexFormatConvertParams{
		SrcBuffer:           src,
		SrcStride:           12,
		SrcDefaultAlphaData: 0x3F800000,
		DstBuffer:           dst,
		DstStride:           16,
		DstComponents:       4,
		VertexCount:         5,
	}
	require.NoError(t, ctx.RenderUtils().ExpandVertexFormatComponents(ctx.Context, platform.VertexFormatFloat3, params))
	cb := ctx.last()
	assert.Equal(t, 1, ctx.library.Calls("expandVertexFormatComponents"))
	uniforms := lastBytes(t, cb, "SetBytes")
	assert.Equal(t, uint32(4), u32At(uniforms, 8))
	assert.Equal(t, uint32(3), u32At(uniforms, 12))
	assert.Equal(t, uint32(0x3F800000), u32At(uniforms, 16))

	// drop the cached pipeline so the library is asked again
	ctx.gpu().SetAutoComplete(true)
	ctx.Flush()
	ctx.HandleDeviceLost()
	ctx.library.SetMissing("expandVertexFormatComponents", true)
	err = ctx.RenderUtils().ExpandVertexFormatComponents(ctx.Context, platform.VertexFormatFloat3, params)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
}
