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
	"testing"

	"github.com/stretchr/testify/assert"
	"goarrg.com/rhi/mtl/platform"
)

func TestDepthStencilDescReset(t *testing.T) {
	d := DepthStencilDesc{}
	d.Reset()

	assert.True(t, d.DepthWriteEnabled)
	assert.Equal(t, platform.CompareFunctionAlways, d.DepthCompareFunction)
	for _, s := range []StencilDesc{d.FrontFaceStencil, d.BackFaceStencil} {
		assert.Equal(t, platform.StencilOperationKeep, s.StencilFailureOperation)
		assert.Equal(t, platform.StencilOperationKeep, s.DepthFailureOperation)
		assert.Equal(t, platform.StencilOperationKeep, s.DepthStencilPassOperation)
		assert.Equal(t, platform.CompareFunctionAlways, s.StencilCompareFunction)
		assert.Equal(t, uint32(0xFF), s.ReadMask)
		assert.Equal(t, uint32(0xFF), s.WriteMask)
	}
	assert.Equal(t, NewDepthStencilDesc(), d)
}

func TestDepthStencilDescEqualAndHash(t *testing.T) {
	a := NewDepthStencilDesc()
	b := NewDepthStencilDesc()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	b.BackFaceStencil.WriteMask = 0x0F
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())

	// only the low 8 bits of a stencil mask are significant
	b = NewDepthStencilDesc()
	b.FrontFaceStencil.ReadMask = 0xFFFF
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	b = NewDepthStencilDesc()
	b.DepthWriteEnabled = false
	assert.False(t, a.Equal(b))
}

func TestDepthStencilDescKeyFields(t *testing.T) {
	base := NewDepthStencilDesc()
	seen := map[uint64]string{base.key(): "reset"}

	for name, mutate := range map[string]func(d *DepthStencilDesc){
		"frontFail":    func(d *DepthStencilDesc) { d.FrontFaceStencil.StencilFailureOperation = platform.StencilOperationZero },
		"frontDepth":   func(d *DepthStencilDesc) { d.FrontFaceStencil.DepthFailureOperation = platform.StencilOperationZero },
		"frontPass":    func(d *DepthStencilDesc) { d.FrontFaceStencil.DepthStencilPassOperation = platform.StencilOperationZero },
		"frontCompare": func(d *DepthStencilDesc) { d.FrontFaceStencil.StencilCompareFunction = platform.CompareFunctionLess },
		"frontRead":    func(d *DepthStencilDesc) { d.FrontFaceStencil.ReadMask = 1 },
		"frontWrite":   func(d *DepthStencilDesc) { d.FrontFaceStencil.WriteMask = 1 },
		"backFail":     func(d *DepthStencilDesc) { d.BackFaceStencil.StencilFailureOperation = platform.StencilOperationZero },
		"backCompare":  func(d *DepthStencilDesc) { d.BackFaceStencil.StencilCompareFunction = platform.CompareFunctionLess },
		"backWrite":    func(d *DepthStencilDesc) { d.BackFaceStencil.WriteMask = 1 },
		"depthCompare": func(d *DepthStencilDesc) { d.DepthCompareFunction = platform.CompareFunctionLess },
		"depthWrite":   func(d *DepthStencilDesc) { d.DepthWriteEnabled = false },
	} {
		d := NewDepthStencilDesc()
		mutate(&d)
		if other, ok := seen[d.key()]; ok {
			t.Errorf("%s has the same key as %s", name, other)
		}
		seen[d.key()] = name
	}
}

func TestDepthStencilDescUpdateDepth(t *testing.T) {
	d := NewDepthStencilDesc()
	s := DepthStencilState{DepthTest: true, DepthFunc: platform.CompareFunctionLess, DepthMask: true}

	d.UpdateDepthTestEnabled(s)
	assert.Equal(t, platform.CompareFunctionLess, d.DepthCompareFunction)
	assert.True(t, d.DepthWriteEnabled)

	s.DepthMask = false
	d.UpdateDepthWriteEnabled(s)
	assert.False(t, d.DepthWriteEnabled)

	s.DepthTest = false
	s.DepthFunc = platform.CompareFunctionGreater
	d.UpdateDepthCompareFunc(s)
	assert.Equal(t, platform.CompareFunctionLess, d.DepthCompareFunction)
	d.UpdateDepthTestEnabled(s)
	assert.Equal(t, platform.CompareFunctionAlways, d.DepthCompareFunction)
	assert.False(t, d.DepthWriteEnabled)

	// depth writes require the depth test
	s.DepthMask = true
	d.UpdateDepthWriteEnabled(s)
	assert.False(t, d.DepthWriteEnabled)
}

func TestDepthStencilDescUpdateStencil(t *testing.T) {
	s := DepthStencilState{
		StencilTest:          true,
		StencilFunc:          platform.CompareFunctionEqual,
		StencilMask:          0x0F,
		StencilFail:          platform.StencilOperationZero,
		StencilPassDepthFail: platform.StencilOperationReplace,
		StencilPassDepthPass: platform.StencilOperationInvert,
		StencilWritemask:     0x3,

		StencilBackFunc:          platform.CompareFunctionNotEqual,
		StencilBackMask:          0xF0,
		StencilBackFail:          platform.StencilOperationIncrementWrap,
		StencilBackPassDepthFail: platform.StencilOperationDecrementWrap,
		StencilBackPassDepthPass: platform.StencilOperationIncrementClamp,
		StencilBackWritemask:     0xC,
	}

	d := NewDepthStencilDesc()
	d.UpdateStencilTestEnabled(s)
	assert.Equal(t, StencilDesc{
		StencilFailureOperation:   platform.StencilOperationZero,
		DepthFailureOperation:     platform.StencilOperationReplace,
		DepthStencilPassOperation: platform.StencilOperationInvert,
		StencilCompareFunction:    platform.CompareFunctionEqual,
		ReadMask:                  0x0F,
		WriteMask:                 0x3,
	}, d.FrontFaceStencil)
	assert.Equal(t, StencilDesc{
		StencilFailureOperation:   platform.StencilOperationIncrementWrap,
		DepthFailureOperation:     platform.StencilOperationDecrementWrap,
		DepthStencilPassOperation: platform.StencilOperationIncrementClamp,
		StencilCompareFunction:    platform.CompareFunctionNotEqual,
		ReadMask:                  0xF0,
		WriteMask:                 0xC,
	}, d.BackFaceStencil)

	s.StencilTest = false
	s.StencilWritemask = 0xFF
	d.UpdateStencilFrontWriteMask(s)
	assert.Equal(t, uint32(0x3), d.FrontFaceStencil.WriteMask)

	d.UpdateStencilTestEnabled(s)
	for _, stencil := range []StencilDesc{d.FrontFaceStencil, d.BackFaceStencil} {
		assert.Equal(t, platform.CompareFunctionAlways, stencil.StencilCompareFunction)
		assert.Equal(t, platform.StencilOperationKeep, stencil.StencilFailureOperation)
		assert.Zero(t, stencil.WriteMask)
	}
}

func TestSamplerDesc(t *testing.T) {
	a := SamplerDesc{}
	a.Reset()
	assert.Equal(t, platform.SamplerAddressModeClampToEdge, a.SAddressMode)
	assert.Equal(t, platform.SamplerMipFilterNotMipmapped, a.MipFilter)
	assert.Equal(t, uint8(1), a.MaxAnisotropy)
	assert.Equal(t, platform.CompareFunctionNever, a.CompareFunction)

	b := a
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	b.MagFilter = platform.SamplerMinMagFilterLinear
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestNewSamplerDesc(t *testing.T) {
	s := SamplerState{
		MinFilter:     platform.SamplerMinMagFilterLinear,
		MagFilter:     platform.SamplerMinMagFilterLinear,
		MipFilter:     platform.SamplerMipFilterLinear,
		WrapS:         platform.SamplerAddressModeRepeat,
		WrapT:         platform.SamplerAddressModeMirrorRepeat,
		WrapR:         platform.SamplerAddressModeClampToZero,
		MaxAnisotropy: 64,
		CompareFunc:   platform.CompareFunctionLess,
	}

	d := NewSamplerDesc(s)
	assert.Equal(t, platform.SamplerAddressModeRepeat, d.SAddressMode)
	assert.Equal(t, platform.SamplerAddressModeMirrorRepeat, d.TAddressMode)
	assert.Equal(t, platform.SamplerAddressModeClampToZero, d.RAddressMode)
	assert.Equal(t, uint8(maxSamplerAnisotropy), d.MaxAnisotropy)
	// compare function is ignored unless compare mode is on
	assert.Equal(t, platform.CompareFunctionNever, d.CompareFunction)

	s.CompareMode = true
	s.MaxAnisotropy = 0
	d = NewSamplerDesc(s)
	assert.Equal(t, platform.CompareFunctionLess, d.CompareFunction)
	assert.Equal(t, uint8(1), d.MaxAnisotropy)
}
