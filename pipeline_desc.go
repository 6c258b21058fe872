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
	"fmt"

	"goarrg.com/rhi/mtl/platform"
)

const (
	MaxRenderTargets   = 4
	MaxVertexAttribs   = 16
	MaxVertexBuffers   = 16
	MaxShaderBuffers   = 31
	MaxShaderSamplers  = 16
	MaxShaderTextures  = MaxShaderSamplers
	maxComputeBindings = MaxShaderBuffers
)

type BlendDesc struct {
	WriteMask                   platform.ColorWriteMask
	BlendingEnabled             bool
	SourceRGBBlendFactor        platform.BlendFactor
	SourceAlphaBlendFactor      platform.BlendFactor
	DestinationRGBBlendFactor   platform.BlendFactor
	DestinationAlphaBlendFactor platform.BlendFactor
	RGBBlendOperation           platform.BlendOperation
	AlphaBlendOperation         platform.BlendOperation
}

func (d *BlendDesc) Reset() {
	d.ResetWithWriteMask(platform.ColorWriteMaskAll)
}

func (d *BlendDesc) ResetWithWriteMask(mask platform.ColorWriteMask) {
	d.WriteMask = mask
	d.BlendingEnabled = false
	d.SourceRGBBlendFactor = platform.BlendFactorOne
	d.SourceAlphaBlendFactor = platform.BlendFactorOne
	d.DestinationRGBBlendFactor = platform.BlendFactorZero
	d.DestinationAlphaBlendFactor = platform.BlendFactorZero
	d.RGBBlendOperation = platform.BlendOperationAdd
	d.AlphaBlendOperation = platform.BlendOperationAdd
}

// UpdateWriteMask sets the mask from per channel flags.
func (d *BlendDesc) UpdateWriteMask(r, g, b, a bool) {
	d.WriteMask = platform.ColorWriteMaskNone
	if r {
		d.WriteMask |= platform.ColorWriteMaskRed
	}
	if g {
		d.WriteMask |= platform.ColorWriteMaskGreen
	}
	if b {
		d.WriteMask |= platform.ColorWriteMaskBlue
	}
	if a {
		d.WriteMask |= platform.ColorWriteMaskAlpha
	}
}

/*
BlendDesc packs into 4 bytes:

	byte 0: [0, 4) WriteMask, [4] BlendingEnabled
	byte 1: [0, 4) SourceRGBBlendFactor, [4, 8) SourceAlphaBlendFactor
	byte 2: [0, 4) DestinationRGBBlendFactor, [4, 8) DestinationAlphaBlendFactor
	byte 3: [0, 3) RGBBlendOperation, [3, 6) AlphaBlendOperation
*/
func (d BlendDesc) pack(b []byte) []byte {
	enabled := byte(0)
	if d.BlendingEnabled {
		enabled = 1
	}
	return append(b,
		byte(d.WriteMask&0xF)|enabled<<4,
		byte(d.SourceRGBBlendFactor&0xF)|byte(d.SourceAlphaBlendFactor&0xF)<<4,
		byte(d.DestinationRGBBlendFactor&0xF)|byte(d.DestinationAlphaBlendFactor&0xF)<<4,
		byte(d.RGBBlendOperation&0x7)|byte(d.AlphaBlendOperation&0x7)<<3,
	)
}

func (d BlendDesc) Equal(other BlendDesc) bool {
	return string(d.pack(nil)) == string(other.pack(nil))
}

type RenderPipelineColorAttachmentDesc struct {
	BlendDesc
	PixelFormat platform.PixelFormat
}

func (d *RenderPipelineColorAttachmentDesc) Reset() {
	d.ResetWithFormat(platform.PixelFormatInvalid)
}

func (d *RenderPipelineColorAttachmentDesc) ResetWithFormat(format platform.PixelFormat) {
	d.PixelFormat = format
	d.BlendDesc.Reset()
}

func (d RenderPipelineColorAttachmentDesc) pack(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(d.PixelFormat))
	return d.BlendDesc.pack(b)
}

func (d RenderPipelineColorAttachmentDesc) platform() platform.RenderPipelineColorAttachmentDescriptor {
	return platform.RenderPipelineColorAttachmentDescriptor{
		PixelFormat:                 d.PixelFormat,
		WriteMask:                   d.WriteMask,
		BlendingEnabled:             d.BlendingEnabled,
		SourceRGBBlendFactor:        d.SourceRGBBlendFactor,
		SourceAlphaBlendFactor:      d.SourceAlphaBlendFactor,
		DestinationRGBBlendFactor:   d.DestinationRGBBlendFactor,
		DestinationAlphaBlendFactor: d.DestinationAlphaBlendFactor,
		RGBBlendOperation:           d.RGBBlendOperation,
		AlphaBlendOperation:         d.AlphaBlendOperation,
	}
}

type RenderPipelineOutputDesc struct {
	ColorAttachments             [MaxRenderTargets]RenderPipelineColorAttachmentDesc
	DepthAttachmentPixelFormat   platform.PixelFormat
	StencilAttachmentPixelFormat platform.PixelFormat
	NumColorAttachments          uint8
	SampleCount                  uint8
}

func (d *RenderPipelineOutputDesc) Reset() {
	for i := range d.ColorAttachments {
		d.ColorAttachments[i].Reset()
	}
	d.DepthAttachmentPixelFormat = platform.PixelFormatInvalid
	d.StencilAttachmentPixelFormat = platform.PixelFormatInvalid
	d.NumColorAttachments = 0
	d.SampleCount = 1
}

// pack only encodes the first NumColorAttachments attachments.
func (d RenderPipelineOutputDesc) pack(b []byte) []byte {
	if d.NumColorAttachments > MaxRenderTargets {
		abort("RenderPipelineOutputDesc.NumColorAttachments [%d] is larger than %d", d.NumColorAttachments, MaxRenderTargets)
	}
	b = append(b, d.NumColorAttachments, d.SampleCount)
	for i := 0; i < MaxRenderTargets; i++ {
		if i < int(d.NumColorAttachments) {
			b = d.ColorAttachments[i].pack(b)
		} else {
			b = append(b, 0, 0, 0, 0, 0, 0)
		}
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(d.DepthAttachmentPixelFormat))
	return binary.LittleEndian.AppendUint16(b, uint16(d.StencilAttachmentPixelFormat))
}

type VertexAttributeDesc struct {
	Format      platform.VertexFormat
	Offset      uint16
	BufferIndex uint8
}

type VertexBufferLayoutDesc struct {
	Stride       uint32
	StepFunction platform.VertexStepFunction
	StepRate     uint32
}

type VertexDesc struct {
	NumAttribs       uint8
	NumBufferLayouts uint8
	Attributes       [MaxVertexAttribs]VertexAttributeDesc
	Layouts          [MaxVertexBuffers]VertexBufferLayoutDesc
}

func (d *VertexDesc) Reset() {
	*d = VertexDesc{}
}

func (d VertexDesc) pack(b []byte) []byte {
	if d.NumAttribs > MaxVertexAttribs || d.NumBufferLayouts > MaxVertexBuffers {
		abort("VertexDesc has [%d] attributes and [%d] layouts, limits are %d and %d",
			d.NumAttribs, d.NumBufferLayouts, MaxVertexAttribs, MaxVertexBuffers)
	}
	b = append(b, d.NumAttribs, d.NumBufferLayouts)
	for i := 0; i < MaxVertexAttribs; i++ {
		a := VertexAttributeDesc{}
		if i < int(d.NumAttribs) {
			a = d.Attributes[i]
		}
		b = append(b, byte(a.Format))
		b = binary.LittleEndian.AppendUint16(b, a.Offset)
		b = append(b, a.BufferIndex)
	}
	for i := 0; i < MaxVertexBuffers; i++ {
		l := VertexBufferLayoutDesc{}
		if i < int(d.NumBufferLayouts) {
			l = d.Layouts[i]
		}
		b = binary.LittleEndian.AppendUint32(b, l.Stride)
		b = append(b, byte(l.StepFunction))
		b = binary.LittleEndian.AppendUint32(b, l.StepRate)
	}
	return b
}

func (d VertexDesc) platform() platform.VertexDescriptor {
	desc := platform.VertexDescriptor{
		Attributes: make([]platform.VertexAttributeDescriptor, d.NumAttribs),
		Layouts:    make([]platform.VertexBufferLayoutDescriptor, d.NumBufferLayouts),
	}
	for i := range desc.Attributes {
		a := d.Attributes[i]
		desc.Attributes[i] = platform.VertexAttributeDescriptor{Format: a.Format, Offset: int(a.Offset), BufferIndex: int(a.BufferIndex)}
	}
	for i := range desc.Layouts {
		l := d.Layouts[i]
		desc.Layouts[i] = platform.VertexBufferLayoutDescriptor{Stride: int(l.Stride), StepFunction: l.StepFunction, StepRate: int(l.StepRate)}
	}
	return desc
}

type RenderPipelineRasterization uint8

const (
	RenderPipelineRasterizationDisabled RenderPipelineRasterization = iota
	RenderPipelineRasterizationEnabled
	// EmulatedDiscard rasterizes but the fragment shader discards everything, used when
	// transform feedback like output is wanted without color writes.
	RenderPipelineRasterizationEmulatedDiscard
)

func (r RenderPipelineRasterization) String() string {
	switch r {
	case RenderPipelineRasterizationDisabled:
		return "Disabled"
	case RenderPipelineRasterizationEnabled:
		return "Enabled"
	case RenderPipelineRasterizationEmulatedDiscard:
		return "EmulatedDiscard"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(r))
	}
}

type RenderPipelineDesc struct {
	VertexDescriptor       VertexDesc
	OutputDescriptor       RenderPipelineOutputDesc
	InputPrimitiveTopology platform.PrimitiveTopologyClass
	AlphaToCoverageEnabled bool
	RasterizationType      RenderPipelineRasterization
	EmulateCoverageMask    bool
}

/*
renderPipelineKeySize is the packed size of a RenderPipelineDesc:

	VertexDesc               2 + 16*4 + 16*9
	RenderPipelineOutputDesc 2 + 4*6 + 2 + 2
	misc                     1: [0, 2) topology, [2] alphaToCoverage, [3, 5) rasterization, [5] emulateCoverageMask
*/
const renderPipelineKeySize = (2 + MaxVertexAttribs*4 + MaxVertexBuffers*9) + (2 + MaxRenderTargets*6 + 4) + 1

type renderPipelineKey [renderPipelineKeySize]byte

func NewRenderPipelineDesc() RenderPipelineDesc {
	d := RenderPipelineDesc{}
	d.Reset()
	return d
}

func (d *RenderPipelineDesc) Reset() {
	d.VertexDescriptor.Reset()
	d.OutputDescriptor.Reset()
	d.InputPrimitiveTopology = platform.PrimitiveTopologyClassUnspecified
	d.AlphaToCoverageEnabled = false
	d.RasterizationType = RenderPipelineRasterizationEnabled
	d.EmulateCoverageMask = false
}

func (d RenderPipelineDesc) RasterizationEnabled() bool {
	return d.RasterizationType != RenderPipelineRasterizationDisabled
}

func (d RenderPipelineDesc) key() renderPipelineKey {
	var k renderPipelineKey
	b := d.VertexDescriptor.pack(k[:0])
	b = d.OutputDescriptor.pack(b)
	misc := byte(d.InputPrimitiveTopology&0x3) | byte(d.RasterizationType&0x3)<<3
	if d.AlphaToCoverageEnabled {
		misc |= 1 << 2
	}
	if d.EmulateCoverageMask {
		misc |= 1 << 5
	}
	b = append(b, misc)
	if len(b) != renderPipelineKeySize {
		abort("RenderPipelineDesc packed to [%d] bytes, expected %d", len(b), renderPipelineKeySize)
	}
	return k
}

func (d RenderPipelineDesc) Equal(other RenderPipelineDesc) bool {
	return d.key() == other.key()
}

func (d RenderPipelineDesc) Hash() uint64 {
	return hashKey(d.key())
}

func (d RenderPipelineDesc) platform(vertex, fragment platform.Function) platform.RenderPipelineDescriptor {
	desc := platform.RenderPipelineDescriptor{
		VertexFunction:               vertex,
		VertexDescriptor:             d.VertexDescriptor.platform(),
		ColorAttachments:             make([]platform.RenderPipelineColorAttachmentDescriptor, d.OutputDescriptor.NumColorAttachments),
		DepthAttachmentPixelFormat:   d.OutputDescriptor.DepthAttachmentPixelFormat,
		StencilAttachmentPixelFormat: d.OutputDescriptor.StencilAttachmentPixelFormat,
		SampleCount:                  max(1, int(d.OutputDescriptor.SampleCount)),
		InputPrimitiveTopology:       d.InputPrimitiveTopology,
		AlphaToCoverageEnabled:       d.AlphaToCoverageEnabled,
		RasterizationEnabled:         d.RasterizationEnabled(),
	}
	if desc.RasterizationEnabled {
		desc.FragmentFunction = fragment
	}
	for i := range desc.ColorAttachments {
		desc.ColorAttachments[i] = d.OutputDescriptor.ColorAttachments[i].platform()
	}
	return desc
}
