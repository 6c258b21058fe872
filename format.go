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

	"goarrg.com/rhi/mtl/platform"
)

// PixelType is the shader visible component type of a color format.
type PixelType uint8

const (
	PixelTypeFloat PixelType = iota
	PixelTypeInt
	PixelTypeUInt
	pixelTypeCount
)

func (t PixelType) String() string {
	switch t {
	case PixelTypeFloat:
		return "Float"
	case PixelTypeInt:
		return "Int"
	case PixelTypeUInt:
		return "UInt"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(t))
	}
}

type formatInfo struct {
	bytesPerPixel int
	components    int
	pixelType     PixelType
	depth         bool
	stencil       bool
	srgb          bool
}

var formatTable = map[platform.PixelFormat]formatInfo{
	platform.PixelFormatA8Unorm:              {bytesPerPixel: 1, components: 1},
	platform.PixelFormatR8Unorm:              {bytesPerPixel: 1, components: 1},
	platform.PixelFormatR8Snorm:              {bytesPerPixel: 1, components: 1},
	platform.PixelFormatR8Uint:               {bytesPerPixel: 1, components: 1, pixelType: PixelTypeUInt},
	platform.PixelFormatR8Sint:               {bytesPerPixel: 1, components: 1, pixelType: PixelTypeInt},
	platform.PixelFormatR16Unorm:             {bytesPerPixel: 2, components: 1},
	platform.PixelFormatR16Uint:              {bytesPerPixel: 2, components: 1, pixelType: PixelTypeUInt},
	platform.PixelFormatR16Sint:              {bytesPerPixel: 2, components: 1, pixelType: PixelTypeInt},
	platform.PixelFormatR16Float:             {bytesPerPixel: 2, components: 1},
	platform.PixelFormatRG8Unorm:             {bytesPerPixel: 2, components: 2},
	platform.PixelFormatRG8Uint:              {bytesPerPixel: 2, components: 2, pixelType: PixelTypeUInt},
	platform.PixelFormatRG8Sint:              {bytesPerPixel: 2, components: 2, pixelType: PixelTypeInt},
	platform.PixelFormatR32Uint:              {bytesPerPixel: 4, components: 1, pixelType: PixelTypeUInt},
	platform.PixelFormatR32Sint:              {bytesPerPixel: 4, components: 1, pixelType: PixelTypeInt},
	platform.PixelFormatR32Float:             {bytesPerPixel: 4, components: 1},
	platform.PixelFormatRG16Float:            {bytesPerPixel: 4, components: 2},
	platform.PixelFormatRGBA8Unorm:           {bytesPerPixel: 4, components: 4},
	platform.PixelFormatRGBA8UnormSRGB:       {bytesPerPixel: 4, components: 4, srgb: true},
	platform.PixelFormatRGBA8Uint:            {bytesPerPixel: 4, components: 4, pixelType: PixelTypeUInt},
	platform.PixelFormatRGBA8Sint:            {bytesPerPixel: 4, components: 4, pixelType: PixelTypeInt},
	platform.PixelFormatBGRA8Unorm:           {bytesPerPixel: 4, components: 4},
	platform.PixelFormatBGRA8UnormSRGB:       {bytesPerPixel: 4, components: 4, srgb: true},
	platform.PixelFormatRGB10A2Unorm:         {bytesPerPixel: 4, components: 4},
	platform.PixelFormatRG32Float:            {bytesPerPixel: 8, components: 2},
	platform.PixelFormatRGBA16Unorm:          {bytesPerPixel: 8, components: 4},
	platform.PixelFormatRGBA16Uint:           {bytesPerPixel: 8, components: 4, pixelType: PixelTypeUInt},
	platform.PixelFormatRGBA16Sint:           {bytesPerPixel: 8, components: 4, pixelType: PixelTypeInt},
	platform.PixelFormatRGBA16Float:          {bytesPerPixel: 8, components: 4},
	platform.PixelFormatRGBA32Uint:           {bytesPerPixel: 16, components: 4, pixelType: PixelTypeUInt},
	platform.PixelFormatRGBA32Sint:           {bytesPerPixel: 16, components: 4, pixelType: PixelTypeInt},
	platform.PixelFormatRGBA32Float:          {bytesPerPixel: 16, components: 4},
	platform.PixelFormatDepth16Unorm:         {bytesPerPixel: 2, components: 1, depth: true},
	platform.PixelFormatDepth32Float:         {bytesPerPixel: 4, components: 1, depth: true},
	platform.PixelFormatStencil8:             {bytesPerPixel: 1, components: 1, pixelType: PixelTypeUInt, stencil: true},
	platform.PixelFormatDepth24UnormStencil8: {bytesPerPixel: 4, components: 2, depth: true, stencil: true},
	platform.PixelFormatDepth32FloatStencil8: {bytesPerPixel: 8, components: 2, depth: true, stencil: true},
}

func lookupFormat(f platform.PixelFormat) formatInfo {
	info, ok := formatTable[f]
	if !ok {
		abort("Unknown/Unhandled pixel format: %s", f.String())
	}
	return info
}

func PixelFormatBytesPerPixel(f platform.PixelFormat) int {
	return lookupFormat(f).bytesPerPixel
}

func PixelFormatType(f platform.PixelFormat) PixelType {
	return lookupFormat(f).pixelType
}

func IsDepthFormat(f platform.PixelFormat) bool {
	if f == platform.PixelFormatInvalid {
		return false
	}
	return lookupFormat(f).depth
}

func IsStencilFormat(f platform.PixelFormat) bool {
	if f == platform.PixelFormatInvalid {
		return false
	}
	return lookupFormat(f).stencil
}

// Shader side texture type indices used to select internal pipelines.
const (
	shaderTextureType2D = iota
	shaderTextureType2DMultisample
	shaderTextureType2DArray
	shaderTextureTypeCube
	shaderTextureType3D
	shaderTextureTypeCount
)

func shaderTextureType(t platform.TextureType) int {
	switch t {
	case platform.TextureType2D:
		return shaderTextureType2D
	case platform.TextureType2DMultisample:
		return shaderTextureType2DMultisample
	case platform.TextureType2DArray:
		return shaderTextureType2DArray
	case platform.TextureTypeCube:
		return shaderTextureTypeCube
	case platform.TextureType3D:
		return shaderTextureType3D
	}
	abort("Texture type %s has no internal shader variant", t.String())
	return 0
}

// Vertex format source component description used by vertex conversion.
type vertexFormatInfo struct {
	components    int
	componentSize int
	normalized    bool
	signed        bool
	float         bool
}

var vertexFormatTable = map[platform.VertexFormat]vertexFormatInfo{
	platform.VertexFormatUChar2:            {components: 2, componentSize: 1},
	platform.VertexFormatUChar3:            {components: 3, componentSize: 1},
	platform.VertexFormatUChar4:            {components: 4, componentSize: 1},
	platform.VertexFormatChar2:             {components: 2, componentSize: 1, signed: true},
	platform.VertexFormatChar3:             {components: 3, componentSize: 1, signed: true},
	platform.VertexFormatChar4:             {components: 4, componentSize: 1, signed: true},
	platform.VertexFormatUChar2Normalized:  {components: 2, componentSize: 1, normalized: true},
	platform.VertexFormatUChar3Normalized:  {components: 3, componentSize: 1, normalized: true},
	platform.VertexFormatUChar4Normalized:  {components: 4, componentSize: 1, normalized: true},
	platform.VertexFormatChar2Normalized:   {components: 2, componentSize: 1, normalized: true, signed: true},
	platform.VertexFormatChar3Normalized:   {components: 3, componentSize: 1, normalized: true, signed: true},
	platform.VertexFormatChar4Normalized:   {components: 4, componentSize: 1, normalized: true, signed: true},
	platform.VertexFormatUShort2:           {components: 2, componentSize: 2},
	platform.VertexFormatUShort3:           {components: 3, componentSize: 2},
	platform.VertexFormatUShort4:           {components: 4, componentSize: 2},
	platform.VertexFormatShort2:            {components: 2, componentSize: 2, signed: true},
	platform.VertexFormatShort3:            {components: 3, componentSize: 2, signed: true},
	platform.VertexFormatShort4:            {components: 4, componentSize: 2, signed: true},
	platform.VertexFormatUShort2Normalized: {components: 2, componentSize: 2, normalized: true},
	platform.VertexFormatUShort3Normalized: {components: 3, componentSize: 2, normalized: true},
	platform.VertexFormatUShort4Normalized: {components: 4, componentSize: 2, normalized: true},
	platform.VertexFormatShort2Normalized:  {components: 2, componentSize: 2, normalized: true, signed: true},
	platform.VertexFormatShort3Normalized:  {components: 3, componentSize: 2, normalized: true, signed: true},
	platform.VertexFormatShort4Normalized:  {components: 4, componentSize: 2, normalized: true, signed: true},
	platform.VertexFormatHalf2:             {components: 2, componentSize: 2, signed: true, float: true},
	platform.VertexFormatHalf3:             {components: 3, componentSize: 2, signed: true, float: true},
	platform.VertexFormatHalf4:             {components: 4, componentSize: 2, signed: true, float: true},
	platform.VertexFormatFloat:             {components: 1, componentSize: 4, signed: true, float: true},
	platform.VertexFormatFloat2:            {components: 2, componentSize: 4, signed: true, float: true},
	platform.VertexFormatFloat3:            {components: 3, componentSize: 4, signed: true, float: true},
	platform.VertexFormatFloat4:            {components: 4, componentSize: 4, signed: true, float: true},
	platform.VertexFormatInt:               {components: 1, componentSize: 4, signed: true},
	platform.VertexFormatInt2:              {components: 2, componentSize: 4, signed: true},
	platform.VertexFormatInt3:              {components: 3, componentSize: 4, signed: true},
	platform.VertexFormatInt4:              {components: 4, componentSize: 4, signed: true},
	platform.VertexFormatUInt:              {components: 1, componentSize: 4},
	platform.VertexFormatUInt2:             {components: 2, componentSize: 4},
	platform.VertexFormatUInt3:             {components: 3, componentSize: 4},
	platform.VertexFormatUInt4:             {components: 4, componentSize: 4},
}

func lookupVertexFormat(f platform.VertexFormat) vertexFormatInfo {
	info, ok := vertexFormatTable[f]
	if !ok {
		abort("Unknown/Unhandled vertex format: %d", uint8(f))
	}
	return info
}

func (v vertexFormatInfo) size() int {
	return v.components * v.componentSize
}
