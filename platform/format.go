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

type PixelFormat uint16

const (
	PixelFormatInvalid              PixelFormat = 0
	PixelFormatA8Unorm              PixelFormat = 1
	PixelFormatR8Unorm              PixelFormat = 10
	PixelFormatR8Snorm              PixelFormat = 12
	PixelFormatR8Uint               PixelFormat = 13
	PixelFormatR8Sint               PixelFormat = 14
	PixelFormatR16Unorm             PixelFormat = 20
	PixelFormatR16Uint              PixelFormat = 23
	PixelFormatR16Sint              PixelFormat = 24
	PixelFormatR16Float             PixelFormat = 25
	PixelFormatRG8Unorm             PixelFormat = 30
	PixelFormatRG8Uint              PixelFormat = 33
	PixelFormatRG8Sint              PixelFormat = 34
	PixelFormatR32Uint              PixelFormat = 53
	PixelFormatR32Sint              PixelFormat = 54
	PixelFormatR32Float             PixelFormat = 55
	PixelFormatRG16Float            PixelFormat = 65
	PixelFormatRGBA8Unorm           PixelFormat = 70
	PixelFormatRGBA8UnormSRGB       PixelFormat = 71
	PixelFormatRGBA8Uint            PixelFormat = 73
	PixelFormatRGBA8Sint            PixelFormat = 74
	PixelFormatBGRA8Unorm           PixelFormat = 80
	PixelFormatBGRA8UnormSRGB       PixelFormat = 81
	PixelFormatRGB10A2Unorm         PixelFormat = 90
	PixelFormatRG32Float            PixelFormat = 105
	PixelFormatRGBA16Unorm          PixelFormat = 110
	PixelFormatRGBA16Uint           PixelFormat = 113
	PixelFormatRGBA16Sint           PixelFormat = 114
	PixelFormatRGBA16Float          PixelFormat = 115
	PixelFormatRGBA32Uint           PixelFormat = 123
	PixelFormatRGBA32Sint           PixelFormat = 124
	PixelFormatRGBA32Float          PixelFormat = 125
	PixelFormatDepth16Unorm         PixelFormat = 250
	PixelFormatDepth32Float         PixelFormat = 252
	PixelFormatStencil8             PixelFormat = 253
	PixelFormatDepth24UnormStencil8 PixelFormat = 255
	PixelFormatDepth32FloatStencil8 PixelFormat = 260
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatInvalid:
		return "Invalid"
	case PixelFormatA8Unorm:
		return "A8Unorm"
	case PixelFormatR8Unorm:
		return "R8Unorm"
	case PixelFormatR8Snorm:
		return "R8Snorm"
	case PixelFormatR8Uint:
		return "R8Uint"
	case PixelFormatR8Sint:
		return "R8Sint"
	case PixelFormatR16Unorm:
		return "R16Unorm"
	case PixelFormatR16Uint:
		return "R16Uint"
	case PixelFormatR16Sint:
		return "R16Sint"
	case PixelFormatR16Float:
		return "R16Float"
	case PixelFormatRG8Unorm:
		return "RG8Unorm"
	case PixelFormatRG8Uint:
		return "RG8Uint"
	case PixelFormatRG8Sint:
		return "RG8Sint"
	case PixelFormatR32Uint:
		return "R32Uint"
	case PixelFormatR32Sint:
		return "R32Sint"
	case PixelFormatR32Float:
		return "R32Float"
	case PixelFormatRG16Float:
		return "RG16Float"
	case PixelFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case PixelFormatRGBA8UnormSRGB:
		return "RGBA8Unorm_sRGB"
	case PixelFormatRGBA8Uint:
		return "RGBA8Uint"
	case PixelFormatRGBA8Sint:
		return "RGBA8Sint"
	case PixelFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case PixelFormatBGRA8UnormSRGB:
		return "BGRA8Unorm_sRGB"
	case PixelFormatRGB10A2Unorm:
		return "RGB10A2Unorm"
	case PixelFormatRG32Float:
		return "RG32Float"
	case PixelFormatRGBA16Unorm:
		return "RGBA16Unorm"
	case PixelFormatRGBA16Uint:
		return "RGBA16Uint"
	case PixelFormatRGBA16Sint:
		return "RGBA16Sint"
	case PixelFormatRGBA16Float:
		return "RGBA16Float"
	case PixelFormatRGBA32Uint:
		return "RGBA32Uint"
	case PixelFormatRGBA32Sint:
		return "RGBA32Sint"
	case PixelFormatRGBA32Float:
		return "RGBA32Float"
	case PixelFormatDepth16Unorm:
		return "Depth16Unorm"
	case PixelFormatDepth32Float:
		return "Depth32Float"
	case PixelFormatStencil8:
		return "Stencil8"
	case PixelFormatDepth24UnormStencil8:
		return "Depth24Unorm_Stencil8"
	case PixelFormatDepth32FloatStencil8:
		return "Depth32Float_Stencil8"
	default:
		return fmt.Sprintf("Unknown: %d", uint16(f))
	}
}
