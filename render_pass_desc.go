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

import "goarrg.com/rhi/mtl/platform"

type RenderPassAttachmentDesc struct {
	Texture      *Texture
	Level        uint32
	SliceOrDepth uint32

	ResolveTexture      *Texture
	ResolveLevel        uint32
	ResolveSliceOrDepth uint32

	LoadAction  platform.LoadAction
	StoreAction platform.StoreAction
}

func (d *RenderPassAttachmentDesc) Reset() {
	*d = RenderPassAttachmentDesc{
		LoadAction:  platform.LoadActionLoad,
		StoreAction: platform.StoreActionStore,
	}
}

func (d RenderPassAttachmentDesc) Equal(other RenderPassAttachmentDesc) bool {
	return d == other
}

func (d RenderPassAttachmentDesc) platform() platform.RenderPassAttachmentDescriptor {
	desc := platform.RenderPassAttachmentDescriptor{
		Level:       int(d.Level),
		LoadAction:  d.LoadAction,
		StoreAction: d.StoreAction,
	}
	if d.Texture != nil {
		desc.Texture = d.Texture.Platform()
		if d.Texture.Type() == platform.TextureType3D {
			desc.DepthPlane = int(d.SliceOrDepth)
		} else {
			desc.Slice = int(d.SliceOrDepth)
		}
	}
	if d.ResolveTexture != nil {
		desc.ResolveTexture = d.ResolveTexture.Platform()
		desc.ResolveLevel = int(d.ResolveLevel)
		desc.ResolveSlice = int(d.ResolveSliceOrDepth)
	}
	return desc
}

type RenderPassColorAttachmentDesc struct {
	RenderPassAttachmentDesc
	ClearColor platform.ClearColor
}

type RenderPassDepthAttachmentDesc struct {
	RenderPassAttachmentDesc
	ClearDepth float64
}

type RenderPassStencilAttachmentDesc struct {
	RenderPassAttachmentDesc
	ClearStencil uint32
}

type RenderPassDesc struct {
	ColorAttachments    [MaxRenderTargets]RenderPassColorAttachmentDesc
	NumColorAttachments int
	DepthAttachment     RenderPassDepthAttachmentDesc
	StencilAttachment   RenderPassStencilAttachmentDesc
	SampleCount         int

	// VisibilityResultBuffer is filled in from the occlusion query pool when queries are active.
	VisibilityResultBuffer *Buffer
}

func NewRenderPassDesc() RenderPassDesc {
	d := RenderPassDesc{}
	d.Reset()
	return d
}

func (d *RenderPassDesc) Reset() {
	for i := range d.ColorAttachments {
		d.ColorAttachments[i].Reset()
		d.ColorAttachments[i].ClearColor = platform.ClearColor{}
	}
	d.NumColorAttachments = 0
	d.DepthAttachment.Reset()
	d.DepthAttachment.ClearDepth = 1
	d.StencilAttachment.Reset()
	d.StencilAttachment.ClearStencil = 0
	d.SampleCount = 1
	d.VisibilityResultBuffer = nil
}

// Equal compares only the first NumColorAttachments color attachments.
func (d RenderPassDesc) Equal(other RenderPassDesc) bool {
	if d.NumColorAttachments != other.NumColorAttachments || d.SampleCount != other.SampleCount ||
		d.DepthAttachment != other.DepthAttachment || d.StencilAttachment != other.StencilAttachment ||
		d.VisibilityResultBuffer != other.VisibilityResultBuffer {
		return false
	}
	for i := 0; i < d.NumColorAttachments; i++ {
		if d.ColorAttachments[i] != other.ColorAttachments[i] {
			return false
		}
	}
	return true
}

// PopulateRenderPipelineOutputDesc fills the attachment formats, write masks are the
// blend's mask limited to what each texture allows.
func (d RenderPassDesc) PopulateRenderPipelineOutputDesc(blend BlendDesc) RenderPipelineOutputDesc {
	out := RenderPipelineOutputDesc{}
	out.Reset()
	out.NumColorAttachments = uint8(d.NumColorAttachments)
	out.SampleCount = uint8(max(1, d.SampleCount))

	for i := 0; i < d.NumColorAttachments; i++ {
		a := &out.ColorAttachments[i]
		a.BlendDesc = blend
		if tex := d.ColorAttachments[i].Texture; tex != nil {
			a.PixelFormat = tex.PixelFormat()
			a.WriteMask &= tex.ColorWritableMask()
		} else {
			a.PixelFormat = platform.PixelFormatInvalid
			a.WriteMask = platform.ColorWriteMaskNone
		}
	}
	if tex := d.DepthAttachment.Texture; tex != nil {
		out.DepthAttachmentPixelFormat = tex.PixelFormat()
	}
	if tex := d.StencilAttachment.Texture; tex != nil {
		out.StencilAttachmentPixelFormat = tex.PixelFormat()
	}
	return out
}

func (d RenderPassDesc) platform() platform.RenderPassDescriptor {
	desc := platform.RenderPassDescriptor{
		ColorAttachments:     make([]platform.RenderPassColorAttachmentDescriptor, d.NumColorAttachments),
		DefaultRasterSamples: max(1, d.SampleCount),
	}
	for i := range desc.ColorAttachments {
		desc.ColorAttachments[i] = platform.RenderPassColorAttachmentDescriptor{
			RenderPassAttachmentDescriptor: d.ColorAttachments[i].platform(),
			ClearColor:                     d.ColorAttachments[i].ClearColor,
		}
	}
	desc.DepthAttachment = platform.RenderPassDepthAttachmentDescriptor{
		RenderPassAttachmentDescriptor: d.DepthAttachment.platform(),
		ClearDepth:                     d.DepthAttachment.ClearDepth,
	}
	desc.StencilAttachment = platform.RenderPassStencilAttachmentDescriptor{
		RenderPassAttachmentDescriptor: d.StencilAttachment.platform(),
		ClearStencil:                   d.StencilAttachment.ClearStencil,
	}
	if d.VisibilityResultBuffer != nil {
		desc.VisibilityResultBuffer = d.VisibilityResultBuffer.Platform()
	}
	return desc
}

// attachments calls f for every attached texture including resolve targets.
func (d RenderPassDesc) attachments(f func(t *Texture)) {
	for i := 0; i < d.NumColorAttachments; i++ {
		if t := d.ColorAttachments[i].Texture; t != nil {
			f(t)
		}
		if t := d.ColorAttachments[i].ResolveTexture; t != nil {
			f(t)
		}
	}
	for _, a := range []RenderPassAttachmentDesc{d.DepthAttachment.RenderPassAttachmentDesc, d.StencilAttachment.RenderPassAttachmentDesc} {
		if a.Texture != nil {
			f(a.Texture)
		}
		if a.ResolveTexture != nil {
			f(a.ResolveTexture)
		}
	}
}
