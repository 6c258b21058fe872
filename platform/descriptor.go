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

package platform

type StencilDescriptor struct {
	StencilFailureOperation   StencilOperation
	DepthFailureOperation     StencilOperation
	DepthStencilPassOperation StencilOperation
	StencilCompareFunction    CompareFunction
	ReadMask                  uint32
	WriteMask                 uint32
}

type DepthStencilDescriptor struct {
	DepthCompareFunction CompareFunction
	DepthWriteEnabled    bool
	FrontFaceStencil     StencilDescriptor
	BackFaceStencil      StencilDescriptor
}

type SamplerDescriptor struct {
	RAddressMode    SamplerAddressMode
	SAddressMode    SamplerAddressMode
	TAddressMode    SamplerAddressMode
	MinFilter       SamplerMinMagFilter
	MagFilter       SamplerMinMagFilter
	MipFilter       SamplerMipFilter
	MaxAnisotropy   int
	CompareFunction CompareFunction
}

type TextureDescriptor struct {
	TextureType      TextureType
	PixelFormat      PixelFormat
	Width            int
	Height           int
	Depth            int
	MipmapLevelCount int
	ArrayLength      int
	SampleCount      int
	Usage            TextureUsage
	StorageMode      StorageMode
}

type VertexAttributeDescriptor struct {
	Format      VertexFormat
	Offset      int
	BufferIndex int
}

type VertexBufferLayoutDescriptor struct {
	Stride       int
	StepFunction VertexStepFunction
	StepRate     int
}

type VertexDescriptor struct {
	Attributes []VertexAttributeDescriptor
	Layouts    []VertexBufferLayoutDescriptor
}

type RenderPipelineColorAttachmentDescriptor struct {
	PixelFormat                 PixelFormat
	WriteMask                   ColorWriteMask
	BlendingEnabled             bool
	SourceRGBBlendFactor        BlendFactor
	SourceAlphaBlendFactor      BlendFactor
	DestinationRGBBlendFactor   BlendFactor
	DestinationAlphaBlendFactor BlendFactor
	RGBBlendOperation           BlendOperation
	AlphaBlendOperation         BlendOperation
}

type RenderPipelineDescriptor struct {
	VertexFunction   Function
	FragmentFunction Function
	VertexDescriptor VertexDescriptor

	ColorAttachments             []RenderPipelineColorAttachmentDescriptor
	DepthAttachmentPixelFormat   PixelFormat
	StencilAttachmentPixelFormat PixelFormat
	SampleCount                  int

	InputPrimitiveTopology PrimitiveTopologyClass
	AlphaToCoverageEnabled bool
	RasterizationEnabled   bool
}

type ClearColor struct {
	Red   float64
	Green float64
	Blue  float64
	Alpha float64
}

type Viewport struct {
	OriginX float64
	OriginY float64
	Width   float64
	Height  float64
	ZNear   float64
	ZFar    float64
}

type RenderPassAttachmentDescriptor struct {
	Texture        Texture
	Level          int
	Slice          int
	DepthPlane     int
	ResolveTexture Texture
	ResolveLevel   int
	ResolveSlice   int
	LoadAction     LoadAction
	StoreAction    StoreAction
}

type RenderPassColorAttachmentDescriptor struct {
	RenderPassAttachmentDescriptor
	ClearColor ClearColor
}

type RenderPassDepthAttachmentDescriptor struct {
	RenderPassAttachmentDescriptor
	ClearDepth float64
}

type RenderPassStencilAttachmentDescriptor struct {
	RenderPassAttachmentDescriptor
	ClearStencil uint32
}

type RenderPassDescriptor struct {
	ColorAttachments       []RenderPassColorAttachmentDescriptor
	DepthAttachment        RenderPassDepthAttachmentDescriptor
	StencilAttachment      RenderPassStencilAttachmentDescriptor
	VisibilityResultBuffer Buffer
	RenderTargetArrayLen   int
	DefaultRasterSamples   int
}
