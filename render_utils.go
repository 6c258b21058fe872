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
	"bytes"
	"fmt"
	"math"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/internal/util"
	"goarrg.com/rhi/mtl/platform"
)

/*
RenderUtils groups the internal draw and compute pipelines used to emulate operations Metal
has no direct command for. Pipelines are built on first use from the context's library and
dropped with the rest of the caches on device loss.
*/
type RenderUtils struct {
	clear            [pixelTypeCount]ClearUtils
	colorBlit        [pixelTypeCount]ColorBlitUtils
	depthStencilBlit DepthStencilBlitUtils
	indexGenerator   IndexGeneratorUtils
	visibility       VisibilityResultUtils
	mipmap           MipmapUtils
	copyPixels       [pixelTypeCount]CopyPixelsUtils
	vertexConversion VertexFormatConversionUtils
}

func newRenderUtils(ctx *Context) *RenderUtils {
	u := &RenderUtils{}
	for t := PixelType(0); t < pixelTypeCount; t++ {
		u.clear[t] = ClearUtils{fragmentShaderName: "clear" + t.String() + "FS"}
		u.colorBlit[t] = ColorBlitUtils{fragmentShaderName: "blit" + t.String() + "FS"}
		u.copyPixels[t] = CopyPixelsUtils{
			readShaderName:  "readFromBufferTo" + t.String() + "Texture",
			writeShaderName: "writeFrom" + t.String() + "TextureToBuffer",
		}
	}
	return u
}

func (u *RenderUtils) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	for t := PixelType(0); t < pixelTypeCount; t++ {
		buff.WriteString(fmt.Sprintf("\"clear%s\": %d,", t.String(), countPipelines(u.clear[t].caches[:])))
		n := 0
		for i := range u.colorBlit[t].caches {
			for j := range u.colorBlit[t].caches[i] {
				n += countPipelines(u.colorBlit[t].caches[i][j][:])
			}
		}
		buff.WriteString(fmt.Sprintf("\"colorBlit%s\": %d,", t.String(), n))
	}
	{
		n := countPipelines(u.depthStencilBlit.depth[:]) + countPipelines(u.depthStencilBlit.stencil[:])
		for i := range u.depthStencilBlit.depthStencil {
			n += countPipelines(u.depthStencilBlit.depthStencil[i][:])
		}
		buff.WriteString(fmt.Sprintf("\"depthStencilBlit\": %d,", n))
	}

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}

func countPipelines(caches []*RenderPipelineCache) int {
	n := 0
	for _, c := range caches {
		if c != nil {
			n += c.Len()
		}
	}
	return n
}

func (u *RenderUtils) forEachRenderPipelineCache(f func(c *RenderPipelineCache)) {
	run := func(caches []*RenderPipelineCache) {
		for _, c := range caches {
			if c != nil {
				f(c)
			}
		}
	}
	for t := range u.clear {
		run(u.clear[t].caches[:])
		for i := range u.colorBlit[t].caches {
			for j := range u.colorBlit[t].caches[i] {
				run(u.colorBlit[t].caches[i][j][:])
			}
		}
	}
	run(u.depthStencilBlit.depth[:])
	run(u.depthStencilBlit.stencil[:])
	for i := range u.depthStencilBlit.depthStencil {
		run(u.depthStencilBlit.depthStencil[i][:])
	}
}

// clearPipelines drops compiled pipelines but keeps the shaders, compute pipelines live
// in the context's compute pipeline cache.
func (u *RenderUtils) clearPipelines() {
	u.forEachRenderPipelineCache(func(c *RenderPipelineCache) {
		c.Clear()
	})
}

func (u *RenderUtils) destroy() {
	u.forEachRenderPipelineCache(func(c *RenderPipelineCache) {
		c.Clear()
		c.noCopy.close()
	})
	*u = RenderUtils{}
}

func (ctx *Context) function(name string, constants platform.FunctionConstants) (platform.Function, error) {
	fn, err := ctx.library.NewFunction(name, constants)
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorShaderCompile{}, "Failed to load function %q: %v", name, err)
	}
	return fn, nil
}

// renderPipelineCache returns *cache, creating it with the given shaders on first use.
func renderPipelineCache(ctx *Context, cache **RenderPipelineCache, label, vs, fs string, constants platform.FunctionConstants) (*RenderPipelineCache, error) {
	if *cache != nil {
		return *cache, nil
	}
	vertex, err := ctx.function(vs, constants)
	if err != nil {
		return nil, err
	}
	fragment, err := ctx.function(fs, constants)
	if err != nil {
		return nil, err
	}
	c := newRenderPipelineCache(ctx.device, label, nil)
	c.SetVertexShader(vertex)
	c.SetFragmentShader(fragment)
	*cache = c
	return c, nil
}

func boolConstant(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func setupDrawCommonStates(enc *RenderCommandEncoder) {
	enc.SetCullMode(platform.CullModeNone)
	enc.SetTriangleFillMode(platform.TriangleFillModeFill)
	enc.SetDepthBias(0, 0, 0)
}

func flipRectY(r gmath.Recti32, height int32) gmath.Recti32 {
	r.Y = height - r.Y - r.H
	return r
}

func viewportFromRect(r gmath.Recti32) platform.Viewport {
	return platform.Viewport{
		OriginX: float64(r.X), OriginY: float64(r.Y),
		Width: float64(r.W), Height: float64(r.H),
		ZNear: 0, ZFar: 1,
	}
}

// pipelineDescForPass returns a descriptor matching the encoder's attachments, color
// attachments not in enabledBuffers get an empty write mask.
func pipelineDescForPass(enc *RenderCommandEncoder, blend BlendDesc, enabledBuffers uint8) RenderPipelineDesc {
	desc := NewRenderPipelineDesc()
	desc.InputPrimitiveTopology = platform.PrimitiveTopologyClassTriangle
	desc.OutputDescriptor = enc.Desc().PopulateRenderPipelineOutputDesc(blend)
	for i := 0; i < int(desc.OutputDescriptor.NumColorAttachments); i++ {
		if enabledBuffers&(1<<i) == 0 {
			desc.OutputDescriptor.ColorAttachments[i].WriteMask = platform.ColorWriteMaskNone
		}
	}
	return desc
}

type ClearRectParams struct {
	// nil fields are not cleared.
	ClearColor   *platform.ClearColor
	ClearDepth   *float32
	ClearStencil *uint32

	ColorFormat    platform.PixelFormat
	DstTextureSize gmath.Extent3i32
	EnabledBuffers uint8
	ClearArea      gmath.Recti32
	FlipY          bool
}

type clearUniforms struct {
	color [4]uint32
	depth float32
	_     [3]uint32
}

// ClearUtils clears parts of the render targets by drawing a quad, one pipeline cache per
// number of color outputs.
type ClearUtils struct {
	fragmentShaderName string
	caches             [MaxRenderTargets + 1]*RenderPipelineCache
}

func (u *ClearUtils) ClearWithDraw(ctx *Context, enc *RenderCommandEncoder, params ClearRectParams) error {
	if params.ClearColor == nil && params.ClearDepth == nil && params.ClearStencil == nil {
		return nil
	}

	blend := BlendDesc{}
	blend.Reset()
	enabled := params.EnabledBuffers
	if params.ClearColor == nil {
		enabled = 0
	}
	pipelineDesc := pipelineDescForPass(enc, blend, enabled)
	numOutputs := int(pipelineDesc.OutputDescriptor.NumColorAttachments)

	cache, err := renderPipelineCache(ctx, &u.caches[numOutputs], genID("clear", u.fragmentShaderName, numOutputs),
		"clearVS", u.fragmentShaderName, platform.FunctionConstants{"kNumColorOutputs": uint32(numOutputs)})
	if err != nil {
		return err
	}
	pipeline, err := cache.RenderPipelineState(pipelineDesc)
	if err != nil {
		return err
	}

	dsDesc := NewDepthStencilDesc()
	dsDesc.DepthWriteEnabled = params.ClearDepth != nil
	if params.ClearStencil != nil {
		for _, s := range []*StencilDesc{&dsDesc.FrontFaceStencil, &dsDesc.BackFaceStencil} {
			s.DepthStencilPassOperation = platform.StencilOperationReplace
			s.WriteMask = 0xFF
		}
	}
	dsState, err := ctx.stateCache.DepthStencilState(dsDesc)
	if err != nil {
		return err
	}

	setupDrawCommonStates(enc)
	enc.SetRenderPipelineState(pipeline)
	enc.SetDepthStencilState(dsState)
	if params.ClearStencil != nil {
		enc.SetStencilReferenceValue(*params.ClearStencil)
	}

	var full gmath.Recti32
	full.W, full.H = params.DstTextureSize.X, params.DstTextureSize.Y
	enc.SetViewport(viewportFromRect(full))
	scissor := params.ClearArea
	if params.FlipY {
		scissor = flipRectY(scissor, params.DstTextureSize.Y)
	}
	enc.SetScissorRect(scissor)

	uniforms := clearUniforms{}
	if c := params.ClearColor; c != nil {
		rgba := [4]float64{c.Red, c.Green, c.Blue, c.Alpha}
		for i, v := range rgba {
			switch PixelFormatType(params.ColorFormat) {
			case PixelTypeInt:
				uniforms.color[i] = uint32(int32(v))
			case PixelTypeUInt:
				uniforms.color[i] = uint32(v)
			default:
				uniforms.color[i] = math.Float32bits(float32(v))
			}
		}
	}
	if params.ClearDepth != nil {
		uniforms.depth = *params.ClearDepth
	}
	enc.SetVertexBytes(util.Bytes(&uniforms), 0)
	enc.SetFragmentBytes(util.Bytes(&uniforms), 0)

	enc.Draw(platform.PrimitiveTypeTriangle, 0, 6)
	return nil
}

type BlitParams struct {
	DstTextureSize gmath.Extent3i32
	DstRect        gmath.Recti32
	DstScissorRect gmath.Recti32
	DstFlipX       bool
	DstFlipY       bool

	Src      *Texture
	SrcLevel int
	SrcLayer int
	SrcRect  gmath.Recti32
	// SrcYFlipped means the source data is stored upside down.
	SrcYFlipped bool
	UnpackFlipX bool
	UnpackFlipY bool
}

type ColorBlitParams struct {
	BlitParams
	BlitColorMask          platform.ColorWriteMask
	EnabledBuffers         uint8
	Filter                 platform.SamplerMinMagFilter
	UnpackPremultiplyAlpha bool
	UnpackUnmultiplyAlpha  bool
	DstLuminance           bool
}

type DepthStencilBlitParams struct {
	BlitParams
	SrcStencil      *Texture
	SrcStencilLevel int
	SrcStencilLayer int
}

type blitUniforms struct {
	srcTexCoords [3][2]float32
	srcLevel     int32
	srcLayer     int32
	dstFlipX     uint8
	dstFlipY     uint8
	dstLuminance uint8
	_            uint8
}

// blitTexCoords covers the destination with one large triangle, so the coordinates of the
// second and third vertex are extrapolated past the source rectangle.
func blitTexCoords(params BlitParams) [3][2]float32 {
	src := params.Src
	w, h := float32(src.Width(params.SrcLevel)), float32(src.Height(params.SrcLevel))
	x0, x1 := float32(params.SrcRect.X)/w, float32(params.SrcRect.X+params.SrcRect.W)/w
	y0, y1 := float32(params.SrcRect.Y)/h, float32(params.SrcRect.Y+params.SrcRect.H)/h
	if params.SrcYFlipped {
		y0, y1 = 1-y0, 1-y1
	}
	if params.UnpackFlipX {
		x0, x1 = x1, x0
	}
	if params.UnpackFlipY {
		y0, y1 = y1, y0
	}
	return [3][2]float32{
		{x0, y0},
		{x0 + 2*(x1-x0), y0},
		{x0, y0 + 2*(y1-y0)},
	}
}

func setupBlitWithDraw(enc *RenderCommandEncoder, params BlitParams, dstLuminance bool) {
	setupDrawCommonStates(enc)

	viewport := params.DstRect
	if params.DstFlipY {
		viewport = flipRectY(viewport, params.DstTextureSize.Y)
	}
	enc.SetViewport(viewportFromRect(viewport))
	scissor := params.DstScissorRect
	if params.DstFlipY {
		scissor = flipRectY(scissor, params.DstTextureSize.Y)
	}
	enc.SetScissorRect(scissor)

	uniforms := blitUniforms{
		srcTexCoords: blitTexCoords(params),
		srcLevel:     int32(params.SrcLevel),
		srcLayer:     int32(params.SrcLayer),
		dstFlipX:     uint8(boolConstant(params.DstFlipX)),
		dstFlipY:     uint8(boolConstant(params.DstFlipY)),
		dstLuminance: uint8(boolConstant(dstLuminance)),
	}
	enc.SetVertexBytes(util.Bytes(&uniforms), 0)
	enc.SetFragmentBytes(util.Bytes(&uniforms), 0)
}

func blitSamplerState(ctx *Context, filter platform.SamplerMinMagFilter) (platform.SamplerState, error) {
	desc := SamplerDesc{}
	desc.Reset()
	desc.MinFilter = filter
	desc.MagFilter = filter
	return ctx.stateCache.SamplerState(desc)
}

type colorBlitVariant uint8

const (
	colorBlitPlain colorBlitVariant = iota
	colorBlitPremultiplyAlpha
	colorBlitUnmultiplyAlpha
	colorBlitVariantCount
)

// ColorBlitUtils copies a texture region into the color attachments by drawing, caches are
// indexed by variant, number of outputs and source texture type.
type ColorBlitUtils struct {
	fragmentShaderName string
	caches             [colorBlitVariantCount][MaxRenderTargets][shaderTextureTypeCount]*RenderPipelineCache
}

func (u *ColorBlitUtils) BlitColorWithDraw(ctx *Context, enc *RenderCommandEncoder, params ColorBlitParams) error {
	if params.Src == nil {
		abort("BlitColorWithDraw called without a source texture")
	}

	variant := colorBlitPlain
	switch {
	case params.UnpackPremultiplyAlpha && params.UnpackUnmultiplyAlpha:
		// the two cancel out
	case params.UnpackPremultiplyAlpha:
		variant = colorBlitPremultiplyAlpha
	case params.UnpackUnmultiplyAlpha:
		variant = colorBlitUnmultiplyAlpha
	}

	blend := BlendDesc{}
	blend.ResetWithWriteMask(params.BlitColorMask)
	pipelineDesc := pipelineDescForPass(enc, blend, params.EnabledBuffers)
	numOutputs := int(pipelineDesc.OutputDescriptor.NumColorAttachments)
	if numOutputs == 0 {
		abort("BlitColorWithDraw called on a render pass without color attachments")
	}
	texType := shaderTextureType(params.Src.Type())

	cache, err := renderPipelineCache(ctx, &u.caches[variant][numOutputs-1][texType],
		genID("colorBlit", u.fragmentShaderName, uint8(variant), numOutputs, texType), "blitVS", u.fragmentShaderName,
		platform.FunctionConstants{
			"kNumColorOutputs":   uint32(numOutputs),
			"kSourceTextureType": uint32(texType),
			"kPremultiplyAlpha":  boolConstant(variant == colorBlitPremultiplyAlpha),
			"kUnmultiplyAlpha":   boolConstant(variant == colorBlitUnmultiplyAlpha),
		})
	if err != nil {
		return err
	}
	pipeline, err := cache.RenderPipelineState(pipelineDesc)
	if err != nil {
		return err
	}
	dsState, err := ctx.stateCache.NullDepthStencilState()
	if err != nil {
		return err
	}
	sampler, err := blitSamplerState(ctx, params.Filter)
	if err != nil {
		return err
	}

	enc.SetRenderPipelineState(pipeline)
	enc.SetDepthStencilState(dsState)
	setupBlitWithDraw(enc, params.BlitParams, params.DstLuminance)
	enc.SetFragmentTexture(params.Src, 0)
	enc.SetFragmentSamplerState(sampler, float32(params.SrcLevel), float32(params.SrcLevel+1), 0)

	enc.Draw(platform.PrimitiveTypeTriangle, 0, 3)
	return nil
}

// DepthStencilBlitUtils copies depth and/or stencil by drawing, stencil is written through
// the fragment shader's stencil output.
type DepthStencilBlitUtils struct {
	depth        [shaderTextureTypeCount]*RenderPipelineCache
	stencil      [shaderTextureTypeCount]*RenderPipelineCache
	depthStencil [shaderTextureTypeCount][shaderTextureTypeCount]*RenderPipelineCache
}

func (u *DepthStencilBlitUtils) BlitDepthStencilWithDraw(ctx *Context, enc *RenderCommandEncoder, params DepthStencilBlitParams) error {
	if params.Src == nil && params.SrcStencil == nil {
		return nil
	}

	blend := BlendDesc{}
	blend.ResetWithWriteMask(platform.ColorWriteMaskNone)
	pipelineDesc := pipelineDescForPass(enc, blend, 0)

	var cache *RenderPipelineCache
	var err error
	switch {
	case params.Src != nil && params.SrcStencil != nil:
		t, s := shaderTextureType(params.Src.Type()), shaderTextureType(params.SrcStencil.Type())
		cache, err = renderPipelineCache(ctx, &u.depthStencil[t][s], genID("depthStencilBlit", t, s), "blitVS", "blitDepthStencilFS",
			platform.FunctionConstants{"kSourceTextureType": uint32(t), "kSourceTexture2Type": uint32(s)})
	case params.Src != nil:
		t := shaderTextureType(params.Src.Type())
		cache, err = renderPipelineCache(ctx, &u.depth[t], genID("depthBlit", t), "blitVS", "blitDepthFS",
			platform.FunctionConstants{"kSourceTextureType": uint32(t)})
	default:
		s := shaderTextureType(params.SrcStencil.Type())
		cache, err = renderPipelineCache(ctx, &u.stencil[s], genID("stencilBlit", s), "blitVS", "blitStencilFS",
			platform.FunctionConstants{"kSourceTexture2Type": uint32(s)})
	}
	if err != nil {
		return err
	}
	pipeline, err := cache.RenderPipelineState(pipelineDesc)
	if err != nil {
		return err
	}

	dsDesc := NewDepthStencilDesc()
	dsDesc.DepthWriteEnabled = params.Src != nil
	if params.SrcStencil != nil {
		for _, s := range []*StencilDesc{&dsDesc.FrontFaceStencil, &dsDesc.BackFaceStencil} {
			s.DepthStencilPassOperation = platform.StencilOperationReplace
		}
	}
	dsState, err := ctx.stateCache.DepthStencilState(dsDesc)
	if err != nil {
		return err
	}
	sampler, err := blitSamplerState(ctx, platform.SamplerMinMagFilterNearest)
	if err != nil {
		return err
	}

	enc.SetRenderPipelineState(pipeline)
	enc.SetDepthStencilState(dsState)
	base := params.BlitParams
	if base.Src == nil {
		base.Src = params.SrcStencil
	}
	setupBlitWithDraw(enc, base, false)
	if params.Src != nil {
		enc.SetFragmentTexture(params.Src, 0)
	}
	if params.SrcStencil != nil {
		enc.SetFragmentTexture(params.SrcStencil, 1)
	}
	enc.SetFragmentSamplerState(sampler, 0, math.MaxFloat32, 0)

	enc.Draw(platform.PrimitiveTypeTriangle, 0, 3)
	return nil
}

// ClearWithDraw picks the clear pipeline matching the color format's component type.
func (u *RenderUtils) ClearWithDraw(ctx *Context, enc *RenderCommandEncoder, params ClearRectParams) error {
	t := PixelTypeFloat
	if params.ColorFormat != platform.PixelFormatInvalid {
		t = PixelFormatType(params.ColorFormat)
	}
	return u.clear[t].ClearWithDraw(ctx, enc, params)
}

func (u *RenderUtils) BlitColorWithDraw(ctx *Context, enc *RenderCommandEncoder, params ColorBlitParams) error {
	if params.Src == nil {
		abort("BlitColorWithDraw called without a source texture")
	}
	return u.colorBlit[PixelFormatType(params.Src.PixelFormat())].BlitColorWithDraw(ctx, enc, params)
}

func (u *RenderUtils) BlitDepthStencilWithDraw(ctx *Context, enc *RenderCommandEncoder, params DepthStencilBlitParams) error {
	return u.depthStencilBlit.BlitDepthStencilWithDraw(ctx, enc, params)
}
