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
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/platform"
)

// cached holds the last value sent to the platform encoder.
type cached[T comparable] struct {
	value T
	set   bool
}

// update returns false if v equals the cached value.
func (c *cached[T]) update(v T) bool {
	if c.set && c.value == v {
		return false
	}
	c.value = v
	c.set = true
	return true
}

type depthBias struct {
	bias, slopeScale, clamp float32
}

type stencilRefs struct {
	front, back uint32
}

type blendColor struct {
	r, g, b, a float32
}

type visibilityMode struct {
	mode   platform.VisibilityResultMode
	offset int
}

type bufferBinding struct {
	buffer platform.Buffer
	offset int
}

type samplerBinding struct {
	state                    platform.SamplerState
	lodMinClamp, lodMaxClamp float32
}

type stageBindings struct {
	buffers  [MaxShaderBuffers]cached[bufferBinding]
	textures [MaxShaderTextures]cached[platform.Texture]
	samplers [MaxShaderSamplers]cached[samplerBinding]
}

type renderEncoderState struct {
	pipeline          cached[platform.RenderPipelineState]
	fillMode          cached[platform.TriangleFillMode]
	winding           cached[platform.Winding]
	cullMode          cached[platform.CullMode]
	depthStencilState cached[platform.DepthStencilState]
	depthBias         cached[depthBias]
	stencilRefs       cached[stencilRefs]
	viewport          cached[platform.Viewport]
	scissor           cached[gmath.Recti32]
	blendColor        cached[blendColor]
	visibility        cached[visibilityMode]

	stages [2]stageBindings
}

/*
RenderCommandEncoder encodes a single render pass. Every setter drops calls that would not
change the platform encoder's state, so callers can re-apply full state before each draw.
*/
type RenderCommandEncoder struct {
	commandEncoder
	enc   platform.RenderCommandEncoder
	desc  RenderPassDesc
	state renderEncoderState

	numDraws int
}

// BeginRenderPass starts a render encoder for desc, ending any other active encoder. Every
// attachment is recorded as written by this command buffer.
func (cb *CommandBuffer) BeginRenderPass(desc RenderPassDesc) *RenderCommandEncoder {
	cb.setActiveEncoder(&cb.render)
	e := &cb.render
	e.desc = desc
	e.state = renderEncoderState{}
	e.numDraws = 0
	desc.attachments(func(t *Texture) {
		cb.setWriteDependency(t)
	})
	if desc.VisibilityResultBuffer != nil {
		cb.setWriteDependency(desc.VisibilityResultBuffer)
	}
	e.enc = cb.renderCommandEncoder(desc)
	e.active = true
	return e
}

func (e *RenderCommandEncoder) endEncoding() {
	e.checkActive("End")
	e.enc.EndEncoding()
	e.enc = nil
	e.active = false
	e.cmdBuffer.clearActiveEncoder(e)
}

func (e *RenderCommandEncoder) End() {
	e.endEncoding()
}

// Desc returns the descriptor the pass was started with, including store action updates.
func (e *RenderCommandEncoder) Desc() RenderPassDesc {
	return e.desc
}

// NumDraws returns the number of draw calls encoded since the pass began.
func (e *RenderCommandEncoder) NumDraws() int {
	return e.numDraws
}

func (e *RenderCommandEncoder) SetRenderPipelineState(state platform.RenderPipelineState) {
	e.checkActive("SetRenderPipelineState")
	if e.state.pipeline.update(state) {
		e.enc.SetRenderPipelineState(state)
	}
}

func (e *RenderCommandEncoder) SetTriangleFillMode(mode platform.TriangleFillMode) {
	e.checkActive("SetTriangleFillMode")
	if e.state.fillMode.update(mode) {
		e.enc.SetTriangleFillMode(mode)
	}
}

func (e *RenderCommandEncoder) SetFrontFacingWinding(winding platform.Winding) {
	e.checkActive("SetFrontFacingWinding")
	if e.state.winding.update(winding) {
		e.enc.SetFrontFacingWinding(winding)
	}
}

func (e *RenderCommandEncoder) SetCullMode(mode platform.CullMode) {
	e.checkActive("SetCullMode")
	if e.state.cullMode.update(mode) {
		e.enc.SetCullMode(mode)
	}
}

func (e *RenderCommandEncoder) SetDepthStencilState(state platform.DepthStencilState) {
	e.checkActive("SetDepthStencilState")
	if e.state.depthStencilState.update(state) {
		e.enc.SetDepthStencilState(state)
	}
}

func (e *RenderCommandEncoder) SetDepthBias(bias, slopeScale, clamp float32) {
	e.checkActive("SetDepthBias")
	if e.state.depthBias.update(depthBias{bias, slopeScale, clamp}) {
		e.enc.SetDepthBias(bias, slopeScale, clamp)
	}
}

func (e *RenderCommandEncoder) SetStencilReferenceValues(front, back uint32) {
	e.checkActive("SetStencilReferenceValues")
	if e.state.stencilRefs.update(stencilRefs{front, back}) {
		e.enc.SetStencilReferenceValues(front, back)
	}
}

func (e *RenderCommandEncoder) SetStencilReferenceValue(ref uint32) {
	e.SetStencilReferenceValues(ref, ref)
}

func (e *RenderCommandEncoder) SetViewport(viewport platform.Viewport) {
	e.checkActive("SetViewport")
	if e.state.viewport.update(viewport) {
		e.enc.SetViewport(viewport)
	}
}

func (e *RenderCommandEncoder) SetScissorRect(rect gmath.Recti32) {
	e.checkActive("SetScissorRect")
	if e.state.scissor.update(rect) {
		e.enc.SetScissorRect(rect)
	}
}

func (e *RenderCommandEncoder) SetBlendColor(r, g, b, a float32) {
	e.checkActive("SetBlendColor")
	if e.state.blendColor.update(blendColor{r, g, b, a}) {
		e.enc.SetBlendColor(r, g, b, a)
	}
}

// SetVisibilityResultMode directs occlusion results to offset in the pass's visibility buffer.
func (e *RenderCommandEncoder) SetVisibilityResultMode(mode platform.VisibilityResultMode, offset int) {
	e.checkActive("SetVisibilityResultMode")
	if mode != platform.VisibilityResultModeDisabled {
		if e.desc.VisibilityResultBuffer == nil {
			abort("SetVisibilityResultMode called on render pass without a visibility result buffer")
		}
		checkBufferRange("SetVisibilityResultMode", e.desc.VisibilityResultBuffer, offset, occlusionQueryResultSize)
		if offset%occlusionQueryResultSize != 0 {
			abort("Visibility result offset [%d] must be a multiple of %d", offset, occlusionQueryResultSize)
		}
	}
	if e.state.visibility.update(visibilityMode{mode, offset}) {
		e.enc.SetVisibilityResultMode(mode, offset)
	}
}

func (e *RenderCommandEncoder) stage(stage ShaderStage) *stageBindings {
	return &e.state.stages[stage]
}

// SetBuffer binds b for reading by the given stage.
func (e *RenderCommandEncoder) SetBuffer(stage ShaderStage, b *Buffer, offset, index int) {
	e.checkActive("SetBuffer")
	checkBindingIndex("SetBuffer", index, MaxShaderBuffers)
	checkBufferRange("SetBuffer", b, offset, 0)
	e.cmdBuffer.setReadDependency(b)
	if !e.stage(stage).buffers[index].update(bufferBinding{b.buffer, offset}) {
		return
	}
	if stage == ShaderStageVertex {
		e.enc.SetVertexBuffer(b.buffer, offset, index)
	} else {
		e.enc.SetFragmentBuffer(b.buffer, offset, index)
	}
}

// SetBytes always reaches the platform encoder, the data is copied inline.
func (e *RenderCommandEncoder) SetBytes(stage ShaderStage, data []byte, index int) {
	e.checkActive("SetBytes")
	checkBindingIndex("SetBytes", index, MaxShaderBuffers)
	e.stage(stage).buffers[index] = cached[bufferBinding]{}
	if stage == ShaderStageVertex {
		e.enc.SetVertexBytes(data, index)
	} else {
		e.enc.SetFragmentBytes(data, index)
	}
}

func (e *RenderCommandEncoder) SetSamplerState(stage ShaderStage, state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.checkActive("SetSamplerState")
	checkBindingIndex("SetSamplerState", index, MaxShaderSamplers)
	if !e.stage(stage).samplers[index].update(samplerBinding{state, lodMinClamp, lodMaxClamp}) {
		return
	}
	if stage == ShaderStageVertex {
		e.enc.SetVertexSamplerState(state, lodMinClamp, lodMaxClamp, index)
	} else {
		e.enc.SetFragmentSamplerState(state, lodMinClamp, lodMaxClamp, index)
	}
}

func (e *RenderCommandEncoder) SetTexture(stage ShaderStage, t *Texture, index int) {
	e.checkActive("SetTexture")
	checkBindingIndex("SetTexture", index, MaxShaderTextures)
	t.noCopy.check()
	e.cmdBuffer.setReadDependency(t)
	if !e.stage(stage).textures[index].update(t.texture) {
		return
	}
	if stage == ShaderStageVertex {
		e.enc.SetVertexTexture(t.texture, index)
	} else {
		e.enc.SetFragmentTexture(t.texture, index)
	}
}

func (e *RenderCommandEncoder) SetVertexBuffer(b *Buffer, offset, index int) {
	e.SetBuffer(ShaderStageVertex, b, offset, index)
}

func (e *RenderCommandEncoder) SetVertexBytes(data []byte, index int) {
	e.SetBytes(ShaderStageVertex, data, index)
}

func (e *RenderCommandEncoder) SetVertexSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.SetSamplerState(ShaderStageVertex, state, lodMinClamp, lodMaxClamp, index)
}

func (e *RenderCommandEncoder) SetVertexTexture(t *Texture, index int) {
	e.SetTexture(ShaderStageVertex, t, index)
}

func (e *RenderCommandEncoder) SetFragmentBuffer(b *Buffer, offset, index int) {
	e.SetBuffer(ShaderStageFragment, b, offset, index)
}

func (e *RenderCommandEncoder) SetFragmentBytes(data []byte, index int) {
	e.SetBytes(ShaderStageFragment, data, index)
}

func (e *RenderCommandEncoder) SetFragmentSamplerState(state platform.SamplerState, lodMinClamp, lodMaxClamp float32, index int) {
	e.SetSamplerState(ShaderStageFragment, state, lodMinClamp, lodMaxClamp, index)
}

func (e *RenderCommandEncoder) SetFragmentTexture(t *Texture, index int) {
	e.SetTexture(ShaderStageFragment, t, index)
}

func (e *RenderCommandEncoder) checkDraw(op string) {
	e.checkActive(op)
	if !e.state.pipeline.set || e.state.pipeline.value == nil {
		abort("%s called without a render pipeline state", op)
	}
}

func (e *RenderCommandEncoder) Draw(primitive platform.PrimitiveType, vertexStart, vertexCount int) {
	e.DrawInstanced(primitive, vertexStart, vertexCount, 1)
}

func (e *RenderCommandEncoder) DrawInstanced(primitive platform.PrimitiveType, vertexStart, vertexCount, instanceCount int) {
	e.checkDraw("DrawInstanced")
	if vertexStart < 0 || vertexCount < 0 || instanceCount < 0 {
		abort("DrawInstanced called with negative counts: start [%d] count [%d] instances [%d]", vertexStart, vertexCount, instanceCount)
	}
	if vertexCount == 0 || instanceCount == 0 {
		return
	}
	e.numDraws++
	e.enc.DrawPrimitives(primitive, vertexStart, vertexCount, instanceCount)
}

func (e *RenderCommandEncoder) DrawIndexed(primitive platform.PrimitiveType, indexCount int, indexType platform.IndexType, indexBuffer *Buffer, offset int) {
	e.DrawIndexedInstanced(primitive, indexCount, indexType, indexBuffer, offset, 1)
}

func (e *RenderCommandEncoder) DrawIndexedInstanced(primitive platform.PrimitiveType, indexCount int, indexType platform.IndexType,
	indexBuffer *Buffer, offset, instanceCount int,
) {
	e.checkDraw("DrawIndexedInstanced")
	if offset%indexType.Size() != 0 {
		abort("Index buffer offset [%d] is not aligned to index size [%d]", offset, indexType.Size())
	}
	checkBufferRange("DrawIndexedInstanced", indexBuffer, offset, indexCount*indexType.Size())
	e.cmdBuffer.setReadDependency(indexBuffer)
	if indexCount == 0 || instanceCount <= 0 {
		return
	}
	e.numDraws++
	e.enc.DrawIndexedPrimitives(primitive, indexCount, indexType, indexBuffer.buffer, offset, instanceCount)
}

func (e *RenderCommandEncoder) SetColorStoreAction(action platform.StoreAction, index int) {
	e.checkActive("SetColorStoreAction")
	if !gmath.InRange(index, 0, e.desc.NumColorAttachments-1) {
		abort("Color attachment [%d] is out of range [0, %d)", index, e.desc.NumColorAttachments)
	}
	if e.desc.ColorAttachments[index].StoreAction == action {
		return
	}
	e.desc.ColorAttachments[index].StoreAction = action
	e.enc.SetColorStoreAction(action, index)
}

func (e *RenderCommandEncoder) SetDepthStoreAction(action platform.StoreAction) {
	e.checkActive("SetDepthStoreAction")
	if e.desc.DepthAttachment.StoreAction == action {
		return
	}
	e.desc.DepthAttachment.StoreAction = action
	e.enc.SetDepthStoreAction(action)
}

func (e *RenderCommandEncoder) SetStencilStoreAction(action platform.StoreAction) {
	e.checkActive("SetStencilStoreAction")
	if e.desc.StencilAttachment.StoreAction == action {
		return
	}
	e.desc.StencilAttachment.StoreAction = action
	e.enc.SetStencilStoreAction(action)
}
