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

import "fmt"

type StorageMode uint8

const (
	StorageModeShared StorageMode = iota
	StorageModeManaged
	StorageModePrivate
)

func (m StorageMode) String() string {
	switch m {
	case StorageModeShared:
		return "Shared"
	case StorageModeManaged:
		return "Managed"
	case StorageModePrivate:
		return "Private"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(m))
	}
}

type CompareFunction uint8

const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

type StencilOperation uint8

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationInvert
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

type SamplerAddressMode uint8

const (
	SamplerAddressModeClampToEdge SamplerAddressMode = iota
	SamplerAddressModeMirrorClampToEdge
	SamplerAddressModeRepeat
	SamplerAddressModeMirrorRepeat
	SamplerAddressModeClampToZero
	SamplerAddressModeClampToBorderColor
)

type SamplerMinMagFilter uint8

const (
	SamplerMinMagFilterNearest SamplerMinMagFilter = iota
	SamplerMinMagFilterLinear
)

type SamplerMipFilter uint8

const (
	SamplerMipFilterNotMipmapped SamplerMipFilter = iota
	SamplerMipFilterNearest
	SamplerMipFilterLinear
)

type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSourceColor
	BlendFactorOneMinusSourceColor
	BlendFactorSourceAlpha
	BlendFactorOneMinusSourceAlpha
	BlendFactorDestinationColor
	BlendFactorOneMinusDestinationColor
	BlendFactorDestinationAlpha
	BlendFactorOneMinusDestinationAlpha
	BlendFactorSourceAlphaSaturated
	BlendFactorBlendColor
	BlendFactorOneMinusBlendColor
	BlendFactorBlendAlpha
	BlendFactorOneMinusBlendAlpha
)

type BlendOperation uint8

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

type ColorWriteMask uint8

const (
	ColorWriteMaskNone  ColorWriteMask = 0x0
	ColorWriteMaskAlpha ColorWriteMask = 0x1
	ColorWriteMaskBlue  ColorWriteMask = 0x2
	ColorWriteMaskGreen ColorWriteMask = 0x4
	ColorWriteMaskRed   ColorWriteMask = 0x8
	ColorWriteMaskAll   ColorWriteMask = 0xF
)

type VertexFormat uint8

const (
	VertexFormatInvalid VertexFormat = iota
	VertexFormatUChar2
	VertexFormatUChar3
	VertexFormatUChar4
	VertexFormatChar2
	VertexFormatChar3
	VertexFormatChar4
	VertexFormatUChar2Normalized
	VertexFormatUChar3Normalized
	VertexFormatUChar4Normalized
	VertexFormatChar2Normalized
	VertexFormatChar3Normalized
	VertexFormatChar4Normalized
	VertexFormatUShort2
	VertexFormatUShort3
	VertexFormatUShort4
	VertexFormatShort2
	VertexFormatShort3
	VertexFormatShort4
	VertexFormatUShort2Normalized
	VertexFormatUShort3Normalized
	VertexFormatUShort4Normalized
	VertexFormatShort2Normalized
	VertexFormatShort3Normalized
	VertexFormatShort4Normalized
	VertexFormatHalf2
	VertexFormatHalf3
	VertexFormatHalf4
	VertexFormatFloat
	VertexFormatFloat2
	VertexFormatFloat3
	VertexFormatFloat4
	VertexFormatInt
	VertexFormatInt2
	VertexFormatInt3
	VertexFormatInt4
	VertexFormatUInt
	VertexFormatUInt2
	VertexFormatUInt3
	VertexFormatUInt4
)

type VertexStepFunction uint8

const (
	VertexStepFunctionConstant VertexStepFunction = iota
	VertexStepFunctionPerVertex
	VertexStepFunctionPerInstance
)

type PrimitiveType uint8

const (
	PrimitiveTypePoint PrimitiveType = iota
	PrimitiveTypeLine
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangle
	PrimitiveTypeTriangleStrip
)

type PrimitiveTopologyClass uint8

const (
	PrimitiveTopologyClassUnspecified PrimitiveTopologyClass = iota
	PrimitiveTopologyClassPoint
	PrimitiveTopologyClassLine
	PrimitiveTopologyClassTriangle
)

type IndexType uint8

const (
	IndexTypeUInt16 IndexType = iota
	IndexTypeUInt32
)

func (t IndexType) Size() int {
	if t == IndexTypeUInt32 {
		return 4
	}
	return 2
}

type LoadAction uint8

const (
	LoadActionDontCare LoadAction = iota
	LoadActionLoad
	LoadActionClear
)

type StoreAction uint8

const (
	StoreActionDontCare StoreAction = iota
	StoreActionStore
	StoreActionMultisampleResolve
	StoreActionStoreAndMultisampleResolve
	StoreActionUnknown
)

type TriangleFillMode uint8

const (
	TriangleFillModeFill TriangleFillMode = iota
	TriangleFillModeLines
)

type Winding uint8

const (
	WindingClockwise Winding = iota
	WindingCounterClockwise
)

type CullMode uint8

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

type VisibilityResultMode uint8

const (
	VisibilityResultModeDisabled VisibilityResultMode = iota
	VisibilityResultModeBoolean
	VisibilityResultModeCounting
)

type TextureType uint8

const (
	TextureType1D TextureType = iota
	TextureType1DArray
	TextureType2D
	TextureType2DArray
	TextureType2DMultisample
	TextureTypeCube
	TextureTypeCubeArray
	TextureType3D
)

func (t TextureType) String() string {
	switch t {
	case TextureType1D:
		return "1D"
	case TextureType1DArray:
		return "1DArray"
	case TextureType2D:
		return "2D"
	case TextureType2DArray:
		return "2DArray"
	case TextureType2DMultisample:
		return "2DMultisample"
	case TextureTypeCube:
		return "Cube"
	case TextureTypeCubeArray:
		return "CubeArray"
	case TextureType3D:
		return "3D"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(t))
	}
}

type TextureUsage uint8

const (
	TextureUsageShaderRead TextureUsage = 1 << iota
	TextureUsageShaderWrite
	TextureUsageRenderTarget
	TextureUsagePixelFormatView
)

type CommandBufferStatus uint8

const (
	CommandBufferStatusNotEnqueued CommandBufferStatus = iota
	CommandBufferStatusEnqueued
	CommandBufferStatusCommitted
	CommandBufferStatusScheduled
	CommandBufferStatusCompleted
	CommandBufferStatusError
)

func (s CommandBufferStatus) String() string {
	switch s {
	case CommandBufferStatusNotEnqueued:
		return "NotEnqueued"
	case CommandBufferStatusEnqueued:
		return "Enqueued"
	case CommandBufferStatusCommitted:
		return "Committed"
	case CommandBufferStatusScheduled:
		return "Scheduled"
	case CommandBufferStatusCompleted:
		return "Completed"
	case CommandBufferStatusError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(s))
	}
}
