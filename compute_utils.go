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

	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/internal/util"
	"goarrg.com/rhi/mtl/platform"
)

const (
	indexBufferOffsetAlignment    = 4
	generateMipThreadGroupSize    = 8
	maxMipmapsPerGenerateDispatch = 4
	copyPixelsThreadGroupSize     = 8
)

// dispatchCompute runs numThreads threads in groups of the pipeline's execution width.
func dispatchCompute(enc *ComputeCommandEncoder, pipeline platform.ComputePipelineState, numThreads int) {
	if numThreads <= 0 {
		return
	}
	w := uint32(min(int(max(1, pipeline.ThreadExecutionWidth())), numThreads))
	if enc.features().NonUniformThreadgroups {
		enc.DispatchNonUniform(gmath.Extent3u32{X: uint32(numThreads), Y: 1, Z: 1}, gmath.Extent3u32{X: w, Y: 1, Z: 1})
		return
	}
	enc.Dispatch(gmath.Extent3u32{X: (uint32(numThreads) + w - 1) / w, Y: 1, Z: 1}, gmath.Extent3u32{X: w, Y: 1, Z: 1})
}

// dispatchCompute3D is dispatchCompute for a grid, the kernel must discard out of range
// threads when non uniform threadgroups are unavailable.
func dispatchCompute3D(enc *ComputeCommandEncoder, numThreads, threadsPerThreadgroup gmath.Extent3u32) {
	if numThreads.X == 0 || numThreads.Y == 0 || numThreads.Z == 0 {
		return
	}
	if enc.features().NonUniformThreadgroups {
		enc.DispatchNonUniform(numThreads, threadsPerThreadgroup)
		return
	}
	enc.Dispatch(gmath.Extent3u32{
		X: (numThreads.X + threadsPerThreadgroup.X - 1) / threadsPerThreadgroup.X,
		Y: (numThreads.Y + threadsPerThreadgroup.Y - 1) / threadsPerThreadgroup.Y,
		Z: (numThreads.Z + threadsPerThreadgroup.Z - 1) / threadsPerThreadgroup.Z,
	}, threadsPerThreadgroup)
}

func (ctx *Context) computePipeline(id, name string, constants platform.FunctionConstants) (platform.ComputePipelineState, error) {
	return ctx.computePipelines.createOrRetrievePipeline(id, func() (platform.Function, error) {
		return ctx.function(name, constants)
	})
}

// ElementType is the type of a client index array, UInt8 has no Metal equivalent and is
// widened to 16 bits.
type ElementType uint8

const (
	ElementTypeUInt8 ElementType = iota
	ElementTypeUInt16
	ElementTypeUInt32
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeUInt8:
		return "UInt8"
	case ElementTypeUInt16:
		return "UInt16"
	case ElementTypeUInt32:
		return "UInt32"
	default:
		return "Unknown"
	}
}

func (t ElementType) Size() int {
	return 1 << t
}

// IndexType returns the Metal index type t is converted to.
func (t ElementType) IndexType() platform.IndexType {
	if t == ElementTypeUInt32 {
		return platform.IndexTypeUInt32
	}
	return platform.IndexTypeUInt16
}

func (t ElementType) index(data []byte, i int) uint32 {
	switch t {
	case ElementTypeUInt8:
		return uint32(data[i])
	case ElementTypeUInt16:
		return uint32(binary.LittleEndian.Uint16(data[i*2:]))
	default:
		return binary.LittleEndian.Uint32(data[i*4:])
	}
}

type TriFanFromArrayParams struct {
	FirstVertex uint32
	VertexCount uint32
	DstBuffer   *Buffer
	DstOffset   uint32
}

// IndexGenerationParams describes client indices, they are read on the GPU from SrcBuffer
// if set and from Indices on the CPU otherwise.
type IndexGenerationParams struct {
	SrcType    ElementType
	IndexCount int
	Indices    []byte
	SrcBuffer  *Buffer
	SrcOffset  uint32
	DstBuffer  *Buffer
	DstOffset  uint32
}

type indexConversionUniforms struct {
	srcOffset  uint32
	indexCount uint32
}

type triFanArrayUniforms struct {
	vertexCountFrom3rd uint32
	firstVertex        uint32
}

// IndexGeneratorUtils converts and generates index buffers for primitives Metal lacks.
// Generated triangle fan and line loop indices are 32 bit.
type IndexGeneratorUtils struct{}

func (IndexGeneratorUtils) ConvertIndexBuffer(ctx *Context, srcType ElementType, indexCount uint32, src *Buffer, srcOffset uint32, dst *Buffer, dstOffset uint32) error {
	if indexCount == 0 {
		return nil
	}
	aligned := srcOffset%indexBufferOffsetAlignment == 0
	name := "convertIndexU8ToU16"
	switch srcType {
	case ElementTypeUInt16:
		name = "convertIndexU16"
	case ElementTypeUInt32:
		name = "convertIndexU32"
	}
	pipeline, err := ctx.computePipeline(genID(name, aligned), name, platform.FunctionConstants{"kSourceBufferAligned": boolConstant(aligned)})
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	uniforms := indexConversionUniforms{srcOffset: srcOffset, indexCount: indexCount}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBuffer(src, 0, 1)
	enc.SetBufferForWrite(dst, int(dstOffset), 2)
	dispatchCompute(enc, pipeline, int(indexCount))
	return nil
}

func (IndexGeneratorUtils) GenerateTriFanBufferFromArrays(ctx *Context, params TriFanFromArrayParams) error {
	if params.VertexCount < 3 {
		return nil
	}
	pipeline, err := ctx.computePipeline("genTriFanIndicesFromArray", "genTriFanIndicesFromArray", nil)
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	uniforms := triFanArrayUniforms{vertexCountFrom3rd: params.VertexCount - 2, firstVertex: params.FirstVertex}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBufferForWrite(params.DstBuffer, int(params.DstOffset), 2)
	dispatchCompute(enc, pipeline, int(uniforms.vertexCountFrom3rd))
	return nil
}

func (u IndexGeneratorUtils) GenerateTriFanBufferFromElementsArray(ctx *Context, params IndexGenerationParams) error {
	if params.IndexCount < 3 {
		return nil
	}
	if params.SrcBuffer != nil {
		return u.generateTriFanBufferFromElementsArrayGPU(ctx, params)
	}
	return u.generateTriFanBufferFromElementsArrayCPU(params)
}

func (IndexGeneratorUtils) generateTriFanBufferFromElementsArrayGPU(ctx *Context, params IndexGenerationParams) error {
	aligned := params.SrcOffset%indexBufferOffsetAlignment == 0
	pipeline, err := ctx.computePipeline(genID("genTriFanIndicesFromElements", params.SrcType, aligned), "genTriFanIndicesFromElements",
		platform.FunctionConstants{"kSourceBufferAligned": boolConstant(aligned), "kSourceIndexType": uint32(params.SrcType)})
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	uniforms := indexConversionUniforms{srcOffset: params.SrcOffset, indexCount: uint32(params.IndexCount - 2)}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBuffer(params.SrcBuffer, 0, 1)
	enc.SetBufferForWrite(params.DstBuffer, int(params.DstOffset), 2)
	dispatchCompute(enc, pipeline, params.IndexCount-2)
	return nil
}

// generateTriFanBufferFromElementsArrayCPU writes directly into DstBuffer, which must not be
// in use by the GPU.
func (IndexGeneratorUtils) generateTriFanBufferFromElementsArrayCPU(params IndexGenerationParams) error {
	if len(params.Indices) < params.IndexCount*params.SrcType.Size() {
		abort("Index data of [%d] bytes is smaller than [%d] indices of %s", len(params.Indices), params.IndexCount, params.SrcType.String())
	}
	first := params.SrcType.index(params.Indices, 0)
	indices := make([]uint32, 0, (params.IndexCount-2)*3)
	for i := 1; i < params.IndexCount-1; i++ {
		indices = append(indices, first, params.SrcType.index(params.Indices, i), params.SrcType.index(params.Indices, i+1))
	}
	util.HostWriteSlice(params.DstBuffer, uintptr(params.DstOffset), indices)
	return nil
}

// writeLineLoopLastSegment writes [last, first] at dstOffset without waiting for the GPU
// and flushes only those 8 bytes.
func writeLineLoopLastSegment(ctx *Context, dst *Buffer, dstOffset uint32, last, first uint32) error {
	if int(dstOffset)+8 > dst.Size() {
		abort("Line loop segment at offset [%d] does not fit in buffer %q of [%d] bytes", dstOffset, dst.Label(), dst.Size())
	}
	data, err := dst.MapWithOpt(ctx, false, true)
	if err != nil {
		return err
	}
	segment := util.SliceBytes([]uint32{last, first})
	util.CopyAt(data, int(dstOffset), segment)
	dst.UnmapAndFlushSubset(ctx, int(dstOffset), len(segment))
	return nil
}

// GenerateLineLoopLastSegment writes the closing segment of a line loop drawn from arrays.
func (IndexGeneratorUtils) GenerateLineLoopLastSegment(ctx *Context, firstVertex, lastVertex uint32, dst *Buffer, dstOffset uint32) error {
	return writeLineLoopLastSegment(ctx, dst, dstOffset, lastVertex, firstVertex)
}

// GenerateLineLoopLastSegmentFromElementsArray reads the first and last index on the CPU,
// waiting for the GPU if the indices live in a buffer.
func (IndexGeneratorUtils) GenerateLineLoopLastSegmentFromElementsArray(ctx *Context, params IndexGenerationParams) error {
	if params.IndexCount < 2 {
		return nil
	}
	indices := params.Indices
	if params.SrcBuffer != nil {
		data, err := params.SrcBuffer.MapWithOpt(ctx, true, false)
		if err != nil {
			return err
		}
		defer params.SrcBuffer.Unmap(ctx)
		if int(params.SrcOffset) > len(data) {
			abort("Index offset [%d] is outside of buffer %q of [%d] bytes", params.SrcOffset, params.SrcBuffer.Label(), len(data))
		}
		indices = data[params.SrcOffset:]
	}
	if len(indices) < params.IndexCount*params.SrcType.Size() {
		abort("Index data of [%d] bytes is smaller than [%d] indices of %s", len(indices), params.IndexCount, params.SrcType.String())
	}
	first := params.SrcType.index(indices, 0)
	last := params.SrcType.index(indices, params.IndexCount-1)
	return writeLineLoopLastSegment(ctx, params.DstBuffer, params.DstOffset, last, first)
}

// VisibilityResultUtils folds the per render pass occlusion results of a query into its
// result buffer.
type VisibilityResultUtils struct{}

func (VisibilityResultUtils) CombineVisibilityResult(ctx *Context, keepOldValue bool, offsets []int, renderPassResults, finalResult *Buffer) error {
	if len(offsets) == 0 {
		return nil
	}
	pipeline, err := ctx.computePipeline(genID("combineVisibilityResult", keepOldValue), "combineVisibilityResult",
		platform.FunctionConstants{"kCombineVisibilityResultKeepOldValue": boolConstant(keepOldValue)})
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	// [numOffsets, offsets in units of results...]
	options := make([]uint32, 0, len(offsets)+1)
	options = append(options, uint32(len(offsets)))
	for _, o := range offsets {
		options = append(options, uint32(o/occlusionQueryResultSize))
	}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.SliceBytes(options), 0)
	enc.SetBufferForWrite(finalResult, 0, 1)
	enc.SetBuffer(renderPassResults, 0, 2)
	dispatchCompute(enc, pipeline, 1)
	return nil
}

type mipmapUniforms struct {
	srcLevel             uint32
	numMipmapsToGenerate uint32
}

// MipmapUtils generates mipmaps with compute, each dispatch produces up to four levels
// from one source level.
type MipmapUtils struct{}

// GenerateMipmapCS fills levels [1, n) of src, mipOutputViews[i] must be a writable view of
// level i.
func (MipmapUtils) GenerateMipmapCS(ctx *Context, src *Texture, mipOutputViews []*Texture) error {
	levels := src.MipmapLevels()
	if len(mipOutputViews) < levels {
		abort("GenerateMipmapCS needs [%d] output views, got [%d]", levels, len(mipOutputViews))
	}

	var name string
	slices := uint32(1)
	groupSize := gmath.Extent3u32{X: generateMipThreadGroupSize, Y: generateMipThreadGroupSize, Z: 1}
	switch src.Type() {
	case platform.TextureType2D:
		name = "generate2DMipmaps"
	case platform.TextureType2DArray:
		name = "generate2DArrayMipmaps"
		slices = uint32(src.ArrayLength())
	case platform.TextureTypeCube:
		name = "generateCubeMipmaps"
		slices = 6
	case platform.TextureType3D:
		name = "generate3DMipmaps"
		groupSize.Z = generateMipThreadGroupSize
	default:
		abort("GenerateMipmapCS does not support texture type %s", src.Type().String())
	}

	pipeline, err := ctx.computePipeline(name, name, nil)
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}
	enc.SetComputePipelineState(pipeline)
	enc.SetTexture(src, 0)

	for level := 0; level < levels-1; {
		n := min(maxMipmapsPerGenerateDispatch, levels-1-level)
		uniforms := mipmapUniforms{srcLevel: uint32(level), numMipmapsToGenerate: uint32(n)}
		enc.SetBytes(util.Bytes(&uniforms), 0)
		for i := 0; i < n; i++ {
			enc.SetTextureForWrite(mipOutputViews[level+1+i], 1+i)
		}

		size := src.Size(level + 1)
		grid := gmath.Extent3u32{X: uint32(size.X), Y: uint32(size.Y), Z: uint32(size.Z)}
		if src.Type() != platform.TextureType3D {
			grid.Z = slices
		}
		dispatchCompute3D(enc, grid, groupSize)
		level += n
	}
	return nil
}

type CopyPixelsCommonParams struct {
	Buffer            *Buffer
	BufferStartOffset uint32
	BufferRowPitch    uint32
	Texture           *Texture
}

type CopyPixelsFromBufferParams struct {
	CopyPixelsCommonParams
	BufferDepthPitch uint32
	TextureOrigin    gmath.Vector3i32
	TextureSize      gmath.Extent3i32
}

type CopyPixelsToBufferParams struct {
	CopyPixelsCommonParams
	TextureArea            gmath.Recti32
	TextureLevel           uint32
	TextureSliceOrDepth    uint32
	ReverseTextureRowOrder bool
}

type copyPixelsUniforms struct {
	bufferStartOffset      uint32
	pixelSize              uint32
	bufferRowPitch         uint32
	bufferDepthPitch       uint32
	textureOffset          [3]int32
	textureLevel           uint32
	copySize               [3]uint32
	textureLayer           uint32
	reverseTextureRowOrder uint32
	_                      [3]uint32
}

// CopyPixelsUtils converts pixels between a buffer holding format data and a texture.
type CopyPixelsUtils struct {
	readShaderName  string
	writeShaderName string
}

func (u *CopyPixelsUtils) pipeline(ctx *Context, format platform.PixelFormat, tex *Texture, bufferWrite bool) (platform.ComputePipelineState, error) {
	name := u.readShaderName
	if bufferWrite {
		name = u.writeShaderName
	}
	texType := shaderTextureType(tex.Type())
	return ctx.computePipeline(genID(name, format, texType), name,
		platform.FunctionConstants{"kCopyFormatType": uint32(format), "kCopyTextureType": uint32(texType)})
}

func (u *CopyPixelsUtils) UnpackPixelsFromBufferToTexture(ctx *Context, srcFormat platform.PixelFormat, params CopyPixelsFromBufferParams) error {
	pipeline, err := u.pipeline(ctx, srcFormat, params.Texture, false)
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	uniforms := copyPixelsUniforms{
		bufferStartOffset: params.BufferStartOffset,
		pixelSize:         uint32(PixelFormatBytesPerPixel(srcFormat)),
		bufferRowPitch:    params.BufferRowPitch,
		bufferDepthPitch:  params.BufferDepthPitch,
		textureOffset:     [3]int32{params.TextureOrigin.X, params.TextureOrigin.Y, params.TextureOrigin.Z},
		copySize:          [3]uint32{uint32(params.TextureSize.X), uint32(params.TextureSize.Y), uint32(params.TextureSize.Z)},
	}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBuffer(params.Buffer, 0, 1)
	enc.SetTextureForWrite(params.Texture, 0)
	dispatchCompute3D(enc, gmath.Extent3u32{X: uniforms.copySize[0], Y: uniforms.copySize[1], Z: uniforms.copySize[2]},
		gmath.Extent3u32{X: copyPixelsThreadGroupSize, Y: copyPixelsThreadGroupSize, Z: 1})
	return nil
}

func (u *CopyPixelsUtils) PackPixelsFromTextureToBuffer(ctx *Context, dstFormat platform.PixelFormat, params CopyPixelsToBufferParams) error {
	pipeline, err := u.pipeline(ctx, dstFormat, params.Texture, true)
	if err != nil {
		return err
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}

	uniforms := copyPixelsUniforms{
		bufferStartOffset:      params.BufferStartOffset,
		pixelSize:              uint32(PixelFormatBytesPerPixel(dstFormat)),
		bufferRowPitch:         params.BufferRowPitch,
		textureOffset:          [3]int32{params.TextureArea.X, params.TextureArea.Y, 0},
		textureLevel:           params.TextureLevel,
		copySize:               [3]uint32{uint32(params.TextureArea.W), uint32(params.TextureArea.H), 1},
		textureLayer:           params.TextureSliceOrDepth,
		reverseTextureRowOrder: boolConstant(params.ReverseTextureRowOrder),
	}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBufferForWrite(params.Buffer, 0, 1)
	enc.SetTexture(params.Texture, 0)
	dispatchCompute3D(enc, gmath.Extent3u32{X: uniforms.copySize[0], Y: uniforms.copySize[1], Z: 1},
		gmath.Extent3u32{X: copyPixelsThreadGroupSize, Y: copyPixelsThreadGroupSize, Z: 1})
	return nil
}

type VertexFormatConvertParams struct {
	SrcBuffer            *Buffer
	SrcBufferStartOffset uint32
	SrcStride            uint32
	// SrcDefaultAlphaData is the bit pattern used for a missing alpha component.
	SrcDefaultAlphaData uint32

	DstBuffer            *Buffer
	DstBufferStartOffset uint32
	DstStride            uint32
	DstComponents        uint32

	VertexCount uint32
}

type vertexConversionUniforms struct {
	srcBufferStartOffset uint32
	srcStride            uint32
	srcComponentBytes    uint32
	srcComponents        uint32
	srcDefaultAlphaData  uint32
	dstBufferStartOffset uint32
	dstStride            uint32
	dstComponents        uint32
	vertexCount          uint32
	_                    [3]uint32
}

func makeVertexConversionUniforms(srcFormat platform.VertexFormat, params VertexFormatConvertParams) vertexConversionUniforms {
	info := lookupVertexFormat(srcFormat)
	return vertexConversionUniforms{
		srcBufferStartOffset: params.SrcBufferStartOffset,
		srcStride:            params.SrcStride,
		srcComponentBytes:    uint32(info.componentSize),
		srcComponents:        uint32(info.components),
		srcDefaultAlphaData:  params.SrcDefaultAlphaData,
		dstBufferStartOffset: params.DstBufferStartOffset,
		dstStride:            params.DstStride,
		dstComponents:        params.DstComponents,
		vertexCount:          params.VertexCount,
	}
}

// VertexFormatConversionUtils rewrites vertex data Metal cannot fetch directly.
type VertexFormatConversionUtils struct{}

// ConvertVertexFormatToFloat converts every component to a 32 bit float.
func (VertexFormatConversionUtils) ConvertVertexFormatToFloat(ctx *Context, srcFormat platform.VertexFormat, params VertexFormatConvertParams) error {
	pipeline, err := ctx.computePipeline(genID("convertToFloatVertexFormat", uint8(srcFormat)), "convertToFloatVertexFormat",
		platform.FunctionConstants{"kCopyFormatType": uint32(srcFormat)})
	if err != nil {
		return err
	}
	return dispatchVertexConversion(ctx, pipeline, makeVertexConversionUniforms(srcFormat, params), params)
}

// ExpandVertexFormatComponents copies components to a layout with a different stride, offset
// or component count.
func (VertexFormatConversionUtils) ExpandVertexFormatComponents(ctx *Context, srcFormat platform.VertexFormat, params VertexFormatConvertParams) error {
	pipeline, err := ctx.computePipeline("expandVertexFormatComponents", "expandVertexFormatComponents", nil)
	if err != nil {
		return err
	}
	return dispatchVertexConversion(ctx, pipeline, makeVertexConversionUniforms(srcFormat, params), params)
}

func dispatchVertexConversion(ctx *Context, pipeline platform.ComputePipelineState, uniforms vertexConversionUniforms, params VertexFormatConvertParams) error {
	if params.VertexCount == 0 {
		return nil
	}
	enc, err := ctx.ComputeCommandEncoder()
	if err != nil {
		return err
	}
	enc.SetComputePipelineState(pipeline)
	enc.SetBytes(util.Bytes(&uniforms), 0)
	enc.SetBuffer(params.SrcBuffer, 0, 1)
	enc.SetBufferForWrite(params.DstBuffer, 0, 2)
	dispatchCompute(enc, pipeline, int(params.VertexCount))
	return nil
}

func (u *RenderUtils) ConvertIndexBuffer(ctx *Context, srcType ElementType, indexCount uint32, src *Buffer, srcOffset uint32, dst *Buffer, dstOffset uint32) error {
	return u.indexGenerator.ConvertIndexBuffer(ctx, srcType, indexCount, src, srcOffset, dst, dstOffset)
}

func (u *RenderUtils) GenerateTriFanBufferFromArrays(ctx *Context, params TriFanFromArrayParams) error {
	return u.indexGenerator.GenerateTriFanBufferFromArrays(ctx, params)
}

func (u *RenderUtils) GenerateTriFanBufferFromElementsArray(ctx *Context, params IndexGenerationParams) error {
	return u.indexGenerator.GenerateTriFanBufferFromElementsArray(ctx, params)
}

func (u *RenderUtils) GenerateLineLoopLastSegment(ctx *Context, firstVertex, lastVertex uint32, dst *Buffer, dstOffset uint32) error {
	return u.indexGenerator.GenerateLineLoopLastSegment(ctx, firstVertex, lastVertex, dst, dstOffset)
}

func (u *RenderUtils) GenerateLineLoopLastSegmentFromElementsArray(ctx *Context, params IndexGenerationParams) error {
	return u.indexGenerator.GenerateLineLoopLastSegmentFromElementsArray(ctx, params)
}

func (u *RenderUtils) CombineVisibilityResult(ctx *Context, keepOldValue bool, offsets []int, renderPassResults, finalResult *Buffer) error {
	return u.visibility.CombineVisibilityResult(ctx, keepOldValue, offsets, renderPassResults, finalResult)
}

func (u *RenderUtils) GenerateMipmapCS(ctx *Context, src *Texture, mipOutputViews []*Texture) error {
	return u.mipmap.GenerateMipmapCS(ctx, src, mipOutputViews)
}

// UnpackPixelsFromBufferToTexture picks the shader variant from the texture's component type.
func (u *RenderUtils) UnpackPixelsFromBufferToTexture(ctx *Context, srcFormat platform.PixelFormat, params CopyPixelsFromBufferParams) error {
	return u.copyPixels[PixelFormatType(params.Texture.PixelFormat())].UnpackPixelsFromBufferToTexture(ctx, srcFormat, params)
}

func (u *RenderUtils) PackPixelsFromTextureToBuffer(ctx *Context, dstFormat platform.PixelFormat, params CopyPixelsToBufferParams) error {
	return u.copyPixels[PixelFormatType(params.Texture.PixelFormat())].PackPixelsFromTextureToBuffer(ctx, dstFormat, params)
}

func (u *RenderUtils) ConvertVertexFormatToFloat(ctx *Context, srcFormat platform.VertexFormat, params VertexFormatConvertParams) error {
	return u.vertexConversion.ConvertVertexFormatToFloat(ctx, srcFormat, params)
}

func (u *RenderUtils) ExpandVertexFormatComponents(ctx *Context, srcFormat platform.VertexFormat, params VertexFormatConvertParams) error {
	return u.vertexConversion.ExpandVertexFormatComponents(ctx, srcFormat, params)
}
