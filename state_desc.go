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

	"github.com/cespare/xxhash/v2"
	"goarrg.com/rhi/mtl/platform"
)

func hashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxhash.Sum64(b[:])
}

/*
StencilDesc packs into 28 bits:

	[0, 3)   StencilFailureOperation
	[3, 6)   DepthFailureOperation
	[6, 9)   DepthStencilPassOperation
	[9, 12)  StencilCompareFunction
	[12, 20) ReadMask
	[20, 28) WriteMask

Masks wider than 8 bits are truncated as the hardware only has 8 stencil bits.
*/
type StencilDesc struct {
	StencilFailureOperation   platform.StencilOperation
	DepthFailureOperation     platform.StencilOperation
	DepthStencilPassOperation platform.StencilOperation
	StencilCompareFunction    platform.CompareFunction
	ReadMask                  uint32
	WriteMask                 uint32
}

func (d *StencilDesc) Reset() {
	d.StencilFailureOperation = platform.StencilOperationKeep
	d.DepthFailureOperation = platform.StencilOperationKeep
	d.DepthStencilPassOperation = platform.StencilOperationKeep
	d.StencilCompareFunction = platform.CompareFunctionAlways
	d.ReadMask = 0xFF
	d.WriteMask = 0xFF
}

func (d StencilDesc) key() uint64 {
	return uint64(d.StencilFailureOperation&0x7) |
		uint64(d.DepthFailureOperation&0x7)<<3 |
		uint64(d.DepthStencilPassOperation&0x7)<<6 |
		uint64(d.StencilCompareFunction&0x7)<<9 |
		uint64(d.ReadMask&0xFF)<<12 |
		uint64(d.WriteMask&0xFF)<<20
}

func (d StencilDesc) Equal(other StencilDesc) bool {
	return d.key() == other.key()
}

func (d StencilDesc) platform() platform.StencilDescriptor {
	return platform.StencilDescriptor{
		StencilFailureOperation:   d.StencilFailureOperation,
		DepthFailureOperation:     d.DepthFailureOperation,
		DepthStencilPassOperation: d.DepthStencilPassOperation,
		StencilCompareFunction:    d.StencilCompareFunction,
		ReadMask:                  d.ReadMask & 0xFF,
		WriteMask:                 d.WriteMask & 0xFF,
	}
}

/*
DepthStencilDesc packs into 60 bits:

	[0, 28)  FrontFaceStencil
	[28, 56) BackFaceStencil
	[56, 59) DepthCompareFunction
	[59]     DepthWriteEnabled
*/
type DepthStencilDesc struct {
	BackFaceStencil      StencilDesc
	FrontFaceStencil     StencilDesc
	DepthCompareFunction platform.CompareFunction
	DepthWriteEnabled    bool
}

// NewDepthStencilDesc returns a reset descriptor.
func NewDepthStencilDesc() DepthStencilDesc {
	d := DepthStencilDesc{}
	d.Reset()
	return d
}

func (d *DepthStencilDesc) Reset() {
	d.FrontFaceStencil.Reset()
	d.BackFaceStencil.Reset()
	d.DepthCompareFunction = platform.CompareFunctionAlways
	d.DepthWriteEnabled = true
}

func (d DepthStencilDesc) key() uint64 {
	k := d.FrontFaceStencil.key() | d.BackFaceStencil.key()<<28 | uint64(d.DepthCompareFunction&0x7)<<56
	if d.DepthWriteEnabled {
		k |= 1 << 59
	}
	return k
}

func (d DepthStencilDesc) Equal(other DepthStencilDesc) bool {
	return d.key() == other.key()
}

func (d DepthStencilDesc) Hash() uint64 {
	return hashUint64(d.key())
}

func (d DepthStencilDesc) platform() platform.DepthStencilDescriptor {
	return platform.DepthStencilDescriptor{
		DepthCompareFunction: d.DepthCompareFunction,
		DepthWriteEnabled:    d.DepthWriteEnabled,
		FrontFaceStencil:     d.FrontFaceStencil.platform(),
		BackFaceStencil:      d.BackFaceStencil.platform(),
	}
}

// DepthStencilState is the frontend's view of depth and stencil testing.
type DepthStencilState struct {
	DepthTest bool
	DepthFunc platform.CompareFunction
	DepthMask bool

	StencilTest bool

	StencilFunc          platform.CompareFunction
	StencilMask          uint32
	StencilFail          platform.StencilOperation
	StencilPassDepthFail platform.StencilOperation
	StencilPassDepthPass platform.StencilOperation
	StencilWritemask     uint32

	StencilBackFunc          platform.CompareFunction
	StencilBackMask          uint32
	StencilBackFail          platform.StencilOperation
	StencilBackPassDepthFail platform.StencilOperation
	StencilBackPassDepthPass platform.StencilOperation
	StencilBackWritemask     uint32
}

func (d *DepthStencilDesc) UpdateDepthTestEnabled(s DepthStencilState) {
	if !s.DepthTest {
		d.DepthCompareFunction = platform.CompareFunctionAlways
		d.DepthWriteEnabled = false
	} else {
		d.UpdateDepthCompareFunc(s)
		d.UpdateDepthWriteEnabled(s)
	}
}

func (d *DepthStencilDesc) UpdateDepthWriteEnabled(s DepthStencilState) {
	d.DepthWriteEnabled = s.DepthTest && s.DepthMask
}

func (d *DepthStencilDesc) UpdateDepthCompareFunc(s DepthStencilState) {
	if !s.DepthTest {
		return
	}
	d.DepthCompareFunction = s.DepthFunc
}

func (d *DepthStencilDesc) UpdateStencilTestEnabled(s DepthStencilState) {
	if !s.StencilTest {
		for _, stencil := range []*StencilDesc{&d.FrontFaceStencil, &d.BackFaceStencil} {
			stencil.StencilCompareFunction = platform.CompareFunctionAlways
			stencil.StencilFailureOperation = platform.StencilOperationKeep
			stencil.DepthFailureOperation = platform.StencilOperationKeep
			stencil.DepthStencilPassOperation = platform.StencilOperationKeep
			stencil.WriteMask = 0
		}
		return
	}

	d.UpdateStencilFrontFuncs(s)
	d.UpdateStencilFrontOps(s)
	d.UpdateStencilFrontWriteMask(s)
	d.UpdateStencilBackFuncs(s)
	d.UpdateStencilBackOps(s)
	d.UpdateStencilBackWriteMask(s)
}

func (d *DepthStencilDesc) UpdateStencilFrontOps(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.FrontFaceStencil.StencilFailureOperation = s.StencilFail
	d.FrontFaceStencil.DepthFailureOperation = s.StencilPassDepthFail
	d.FrontFaceStencil.DepthStencilPassOperation = s.StencilPassDepthPass
}

func (d *DepthStencilDesc) UpdateStencilBackOps(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.BackFaceStencil.StencilFailureOperation = s.StencilBackFail
	d.BackFaceStencil.DepthFailureOperation = s.StencilBackPassDepthFail
	d.BackFaceStencil.DepthStencilPassOperation = s.StencilBackPassDepthPass
}

func (d *DepthStencilDesc) UpdateStencilFrontFuncs(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.FrontFaceStencil.StencilCompareFunction = s.StencilFunc
	d.FrontFaceStencil.ReadMask = s.StencilMask
}

func (d *DepthStencilDesc) UpdateStencilBackFuncs(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.BackFaceStencil.StencilCompareFunction = s.StencilBackFunc
	d.BackFaceStencil.ReadMask = s.StencilBackMask
}

func (d *DepthStencilDesc) UpdateStencilFrontWriteMask(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.FrontFaceStencil.WriteMask = s.StencilWritemask
}

func (d *DepthStencilDesc) UpdateStencilBackWriteMask(s DepthStencilState) {
	if !s.StencilTest {
		return
	}
	d.BackFaceStencil.WriteMask = s.StencilBackWritemask
}

/*
SamplerDesc packs into 21 bits:

	[0, 3)   RAddressMode
	[3, 6)   SAddressMode
	[6, 9)   TAddressMode
	[9]      MinFilter
	[10]     MagFilter
	[11, 13) MipFilter
	[13, 18) MaxAnisotropy
	[18, 21) CompareFunction
*/
type SamplerDesc struct {
	RAddressMode    platform.SamplerAddressMode
	SAddressMode    platform.SamplerAddressMode
	TAddressMode    platform.SamplerAddressMode
	MinFilter       platform.SamplerMinMagFilter
	MagFilter       platform.SamplerMinMagFilter
	MipFilter       platform.SamplerMipFilter
	MaxAnisotropy   uint8
	CompareFunction platform.CompareFunction
}

const maxSamplerAnisotropy = 16

func (d *SamplerDesc) Reset() {
	d.RAddressMode = platform.SamplerAddressModeClampToEdge
	d.SAddressMode = platform.SamplerAddressModeClampToEdge
	d.TAddressMode = platform.SamplerAddressModeClampToEdge
	d.MinFilter = platform.SamplerMinMagFilterNearest
	d.MagFilter = platform.SamplerMinMagFilterNearest
	d.MipFilter = platform.SamplerMipFilterNotMipmapped
	d.MaxAnisotropy = 1
	d.CompareFunction = platform.CompareFunctionNever
}

func (d SamplerDesc) key() uint64 {
	return uint64(d.RAddressMode&0x7) |
		uint64(d.SAddressMode&0x7)<<3 |
		uint64(d.TAddressMode&0x7)<<6 |
		uint64(d.MinFilter&0x1)<<9 |
		uint64(d.MagFilter&0x1)<<10 |
		uint64(d.MipFilter&0x3)<<11 |
		uint64(d.MaxAnisotropy&0x1F)<<13 |
		uint64(d.CompareFunction&0x7)<<18
}

func (d SamplerDesc) Equal(other SamplerDesc) bool {
	return d.key() == other.key()
}

func (d SamplerDesc) Hash() uint64 {
	return hashUint64(d.key())
}

func (d SamplerDesc) platform() platform.SamplerDescriptor {
	return platform.SamplerDescriptor{
		RAddressMode:    d.RAddressMode,
		SAddressMode:    d.SAddressMode,
		TAddressMode:    d.TAddressMode,
		MinFilter:       d.MinFilter,
		MagFilter:       d.MagFilter,
		MipFilter:       d.MipFilter,
		MaxAnisotropy:   int(d.MaxAnisotropy),
		CompareFunction: d.CompareFunction,
	}
}

// SamplerState is the frontend's view of a sampler object.
type SamplerState struct {
	MinFilter     platform.SamplerMinMagFilter
	MagFilter     platform.SamplerMinMagFilter
	MipFilter     platform.SamplerMipFilter
	WrapS         platform.SamplerAddressMode
	WrapT         platform.SamplerAddressMode
	WrapR         platform.SamplerAddressMode
	MaxAnisotropy float32
	CompareMode   bool
	CompareFunc   platform.CompareFunction
}

func NewSamplerDesc(s SamplerState) SamplerDesc {
	d := SamplerDesc{
		RAddressMode:    s.WrapR,
		SAddressMode:    s.WrapS,
		TAddressMode:    s.WrapT,
		MinFilter:       s.MinFilter,
		MagFilter:       s.MagFilter,
		MipFilter:       s.MipFilter,
		MaxAnisotropy:   uint8(min(max(s.MaxAnisotropy, 1), maxSamplerAnisotropy)),
		CompareFunction: platform.CompareFunctionNever,
	}
	if s.CompareMode {
		d.CompareFunction = s.CompareFunc
	}
	return d
}
