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
	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/platform"
)

type Texture struct {
	Resource
	noCopy  noCopy
	label   string
	storage platform.StorageMode
	texture platform.Texture

	// shared with views so a mask set on any of them applies to all
	colorWritableMask *platform.ColorWriteMask
}

var _ interface {
	GPUResource
	Destroyer
} = (*Texture)(nil)

type TextureOptions struct {
	RenderTargetOnly bool
	AllowFormatViews bool
	ShaderWrite      bool
	Storage          platform.StorageMode
}

func (o TextureOptions) usage() platform.TextureUsage {
	usage := platform.TextureUsageRenderTarget
	if !o.RenderTargetOnly {
		usage |= platform.TextureUsageShaderRead
	}
	if o.AllowFormatViews {
		usage |= platform.TextureUsagePixelFormatView
	}
	if o.ShaderWrite {
		usage |= platform.TextureUsageShaderWrite
	}
	return usage
}

func validateTextureCreation(ctx *Context, desc platform.TextureDescriptor) error {
	if desc.PixelFormat == platform.PixelFormatInvalid {
		return debug.Errorf("Invalid pixel format")
	}
	_ = lookupFormat(desc.PixelFormat)

	if desc.Width <= 0 || desc.Height <= 0 || desc.Depth <= 0 || desc.MipmapLevelCount <= 0 || desc.ArrayLength <= 0 {
		return debug.Errorf("Texture dimensions must be > 0: %dx%dx%d, mips: %d, layers: %d",
			desc.Width, desc.Height, desc.Depth, desc.MipmapLevelCount, desc.ArrayLength)
	}

	limits := ctx.properties.Limits
	maxDim := int(limits.MaxTextureDimension2D)
	if desc.TextureType == platform.TextureType3D {
		maxDim = int(limits.MaxTextureDimension3D)
	}
	if maxDim > 0 && (desc.Width > maxDim || desc.Height > maxDim || desc.Depth > maxDim) {
		return debug.Errorf("Texture size %dx%dx%d is larger than device limit [%d]", desc.Width, desc.Height, desc.Depth, maxDim)
	}
	if limits.MaxTextureArrayLayers > 0 && desc.ArrayLength > int(limits.MaxTextureArrayLayers) {
		return debug.Errorf("Texture array length [%d] is larger than device limit [%d]", desc.ArrayLength, limits.MaxTextureArrayLayers)
	}

	maxMips := 1
	for s := max(desc.Width, desc.Height, desc.Depth); s > 1; s >>= 1 {
		maxMips++
	}
	if desc.MipmapLevelCount > maxMips {
		return debug.Errorf("Texture mip count [%d] is larger than the maximum [%d] for its size", desc.MipmapLevelCount, maxMips)
	}
	return nil
}

func makeTexture(ctx *Context, label string, desc platform.TextureDescriptor) (*Texture, error) {
	ctx.noCopy.check()
	if err := validateTextureCreation(ctx, desc); err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create texture %q: %v", label, err)
	}
	tex, err := ctx.device.NewTexture(label, desc)
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create texture %q: %v", label, err)
	}

	t := Texture{
		Resource:          newResource(),
		label:             label,
		storage:           desc.StorageMode,
		texture:           tex,
		colorWritableMask: new(platform.ColorWriteMask),
	}
	*t.colorWritableMask = platform.ColorWriteMaskAll
	t.noCopy.init("Texture")
	return &t, nil
}

func Make2DTexture(ctx *Context, label string, format platform.PixelFormat, width, height, mips int, opts TextureOptions) (*Texture, error) {
	return makeTexture(ctx, label, platform.TextureDescriptor{
		TextureType: platform.TextureType2D, PixelFormat: format,
		Width: width, Height: height, Depth: 1, MipmapLevelCount: mips, ArrayLength: 1, SampleCount: 1,
		Usage: opts.usage(), StorageMode: opts.Storage,
	})
}

func MakeCubeTexture(ctx *Context, label string, format platform.PixelFormat, size, mips int, opts TextureOptions) (*Texture, error) {
	return makeTexture(ctx, label, platform.TextureDescriptor{
		TextureType: platform.TextureTypeCube, PixelFormat: format,
		Width: size, Height: size, Depth: 1, MipmapLevelCount: mips, ArrayLength: 1, SampleCount: 1,
		Usage: opts.usage(), StorageMode: opts.Storage,
	})
}

func Make2DArrayTexture(ctx *Context, label string, format platform.PixelFormat, width, height, mips, arrayLength int, opts TextureOptions) (*Texture, error) {
	return makeTexture(ctx, label, platform.TextureDescriptor{
		TextureType: platform.TextureType2DArray, PixelFormat: format,
		Width: width, Height: height, Depth: 1, MipmapLevelCount: mips, ArrayLength: arrayLength, SampleCount: 1,
		Usage: opts.usage(), StorageMode: opts.Storage,
	})
}

func Make3DTexture(ctx *Context, label string, format platform.PixelFormat, width, height, depth, mips int, opts TextureOptions) (*Texture, error) {
	return makeTexture(ctx, label, platform.TextureDescriptor{
		TextureType: platform.TextureType3D, PixelFormat: format,
		Width: width, Height: height, Depth: depth, MipmapLevelCount: mips, ArrayLength: 1, SampleCount: 1,
		Usage: opts.usage(), StorageMode: opts.Storage,
	})
}

func Make2DMSTexture(ctx *Context, label string, format platform.PixelFormat, width, height, samples int, opts TextureOptions) (*Texture, error) {
	if samples <= 1 {
		abort("Make2DMSTexture called with sample count [%d]", samples)
	}
	opts.Storage = platform.StorageModePrivate
	return makeTexture(ctx, label, platform.TextureDescriptor{
		TextureType: platform.TextureType2DMultisample, PixelFormat: format,
		Width: width, Height: height, Depth: 1, MipmapLevelCount: 1, ArrayLength: 1, SampleCount: samples,
		Usage: opts.usage(), StorageMode: opts.Storage,
	})
}

// MakeTextureFromPlatform wraps a texture created outside of the context, like a drawable's.
func MakeTextureFromPlatform(label string, tex platform.Texture) *Texture {
	t := Texture{
		Resource:          newResource(),
		label:             label,
		storage:           platform.StorageModePrivate,
		texture:           tex,
		colorWritableMask: new(platform.ColorWriteMask),
	}
	*t.colorWritableMask = platform.ColorWriteMaskAll
	t.noCopy.init("Texture")
	return &t
}

func (t *Texture) newView(suffix string, format platform.PixelFormat, textureType platform.TextureType, levels, slices platform.Range) (*Texture, error) {
	t.noCopy.check()
	tex, err := t.texture.NewTextureView(format, textureType, levels, slices)
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create view of texture %q: %v", t.label, err)
	}
	v := Texture{
		label:             t.label + suffix,
		storage:           t.storage,
		texture:           tex,
		colorWritableMask: t.colorWritableMask,
	}
	v.shareUsage(&t.Resource)
	v.noCopy.init("Texture")
	return &v, nil
}

// NewFaceView returns a 2D view of one cube face, the view shares usage tracking with t.
func (t *Texture) NewFaceView(face int) (*Texture, error) {
	t.noCopy.check()
	if t.texture.TextureType() != platform.TextureTypeCube {
		abort("NewFaceView called on non cube texture %q", t.label)
	}
	if !gmath.InRange(face, 0, 5) {
		abort("Cube face [%d] is out of range", face)
	}
	return t.newView("_face", t.texture.PixelFormat(), platform.TextureType2D,
		platform.Range{Location: 0, Length: t.texture.MipmapLevelCount()},
		platform.Range{Location: face, Length: 1})
}

// NewSliceView returns a 2D view of one array slice.
func (t *Texture) NewSliceView(slice int) (*Texture, error) {
	t.noCopy.check()
	if !gmath.InRange(slice, 0, t.texture.ArrayLength()-1) {
		abort("Array slice [%d] is out of range", slice)
	}
	return t.newView("_slice", t.texture.PixelFormat(), platform.TextureType2D,
		platform.Range{Location: 0, Length: t.texture.MipmapLevelCount()},
		platform.Range{Location: slice, Length: 1})
}

// NewMipView returns a view of a single mip level with all slices.
func (t *Texture) NewMipView(level int) (*Texture, error) {
	t.noCopy.check()
	if !gmath.InRange(level, 0, t.texture.MipmapLevelCount()-1) {
		abort("Mip level [%d] is out of range", level)
	}
	return t.newView("_mip", t.texture.PixelFormat(), t.texture.TextureType(),
		platform.Range{Location: level, Length: 1},
		platform.Range{Location: 0, Length: t.sliceCount()})
}

func (t *Texture) NewFormatView(format platform.PixelFormat) (*Texture, error) {
	t.noCopy.check()
	return t.newView("_"+format.String(), format, t.texture.TextureType(),
		platform.Range{Location: 0, Length: t.texture.MipmapLevelCount()},
		platform.Range{Location: 0, Length: t.sliceCount()})
}

func (t *Texture) sliceCount() int {
	if t.texture.TextureType() == platform.TextureTypeCube {
		return 6
	}
	return t.texture.ArrayLength()
}

func (t *Texture) checkRegion(region platform.Region, level, slice int) {
	if !gmath.InRange(level, 0, t.texture.MipmapLevelCount()-1) {
		abort("Mip level [%d] is out of range for texture %q", level, t.label)
	}
	if !gmath.InRange(slice, 0, t.sliceCount()-1) {
		abort("Slice [%d] is out of range for texture %q", slice, t.label)
	}
	if region.Origin.X < 0 || region.Origin.Y < 0 || region.Origin.Z < 0 ||
		int(region.Origin.X+region.Size.X) > t.Width(level) ||
		int(region.Origin.Y+region.Size.Y) > t.Height(level) ||
		int(region.Origin.Z+region.Size.Z) > t.Depth(level) {
		abort("Region %+v is out of bounds for level [%d] of texture %q", region, level, t.label)
	}
}

// ReplaceRegion waits for the GPU to finish using t then uploads data from the CPU.
func (t *Texture) ReplaceRegion(ctx *Context, region platform.Region, level, slice int, data []byte, bytesPerRow int) error {
	t.noCopy.check()
	if t.storage == platform.StorageModePrivate {
		abort("Texture %q with private storage cannot be written from the CPU", t.label)
	}
	t.checkRegion(region, level, slice)
	bytesPerImage := bytesPerRow * int(region.Size.Y)
	if len(data) < bytesPerImage*int(region.Size.Z) {
		abort("ReplaceRegion data of [%d] bytes is smaller than the region [%d]", len(data), bytesPerImage*int(region.Size.Z))
	}
	if err := ctx.EnsureResourceReadyForCPU(t); err != nil {
		return err
	}
	t.texture.ReplaceRegion(region, level, slice, data, bytesPerRow, bytesPerImage)
	return nil
}

// GetBytes reads back a region, synchronizing managed storage first if the GPU wrote to it.
func (t *Texture) GetBytes(ctx *Context, dst []byte, bytesPerRow int, region platform.Region, level, slice int) error {
	t.noCopy.check()
	if t.storage == platform.StorageModePrivate {
		abort("Texture %q with private storage cannot be read from the CPU", t.label)
	}
	t.checkRegion(region, level, slice)
	bytesPerImage := bytesPerRow * int(region.Size.Y)
	if len(dst) < bytesPerImage*int(region.Size.Z) {
		abort("GetBytes destination of [%d] bytes is smaller than the region [%d]", len(dst), bytesPerImage*int(region.Size.Z))
	}

	if t.storage == platform.StorageModeManaged && t.IsCPUReadMemDirty() {
		blit, err := ctx.BlitCommandEncoder()
		if err != nil {
			return err
		}
		blit.SynchronizeTexture(t)
	}
	if err := ctx.EnsureResourceReadyForCPU(t); err != nil {
		return err
	}
	t.ResetCPUReadMemDirty()
	t.texture.GetBytes(dst, bytesPerRow, bytesPerImage, region, level, slice)
	return nil
}

func (t *Texture) Type() platform.TextureType {
	t.noCopy.check()
	return t.texture.TextureType()
}

func (t *Texture) PixelFormat() platform.PixelFormat {
	t.noCopy.check()
	return t.texture.PixelFormat()
}

func (t *Texture) Width(level int) int {
	t.noCopy.check()
	return max(1, t.texture.Width()>>level)
}

func (t *Texture) Height(level int) int {
	t.noCopy.check()
	return max(1, t.texture.Height()>>level)
}

func (t *Texture) Depth(level int) int {
	t.noCopy.check()
	if t.texture.TextureType() != platform.TextureType3D {
		return 1
	}
	return max(1, t.texture.Depth()>>level)
}

func (t *Texture) Size(level int) gmath.Extent3i32 {
	return gmath.Extent3i32{X: int32(t.Width(level)), Y: int32(t.Height(level)), Z: int32(t.Depth(level))}
}

func (t *Texture) MipmapLevels() int {
	t.noCopy.check()
	return t.texture.MipmapLevelCount()
}

func (t *Texture) ArrayLength() int {
	t.noCopy.check()
	return t.texture.ArrayLength()
}

func (t *Texture) SampleCount() int {
	t.noCopy.check()
	return max(1, t.texture.SampleCount())
}

// ColorWritableMask is the set of channels render passes may write, formats emulated with
// extra channels exclude them.
func (t *Texture) ColorWritableMask() platform.ColorWriteMask {
	t.noCopy.check()
	return *t.colorWritableMask
}

func (t *Texture) SetColorWritableMask(mask platform.ColorWriteMask) {
	t.noCopy.check()
	*t.colorWritableMask = mask
}

func (t *Texture) Label() string {
	t.noCopy.check()
	return t.label
}

func (t *Texture) Platform() platform.Texture {
	t.noCopy.check()
	return t.texture
}

func (t *Texture) Destroy() {
	t.noCopy.check()
	t.texture = nil
	t.noCopy.close()
}
