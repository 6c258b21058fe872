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

package fakegpu

import (
	"sync"

	"goarrg.com/rhi/mtl/platform"
)

type Range struct {
	Offset int
	Length int
}

type Buffer struct {
	Label string

	mtx      sync.Mutex
	storage  platform.StorageMode
	data     []byte
	modified []Range
}

var _ platform.Buffer = (*Buffer)(nil)

func (b *Buffer) Length() int {
	return len(b.data)
}

func (b *Buffer) StorageMode() platform.StorageMode {
	return b.storage
}

func (b *Buffer) Contents() []byte {
	if b.storage == platform.StorageModePrivate {
		return nil
	}
	return b.data
}

// Data returns the buffer's memory regardless of storage mode.
func (b *Buffer) Data() []byte {
	return b.data
}

func (b *Buffer) DidModifyRange(offset, length int) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.modified = append(b.modified, Range{offset, length})
}

// ModifiedRanges returns every range passed to DidModifyRange.
func (b *Buffer) ModifiedRanges() []Range {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]Range(nil), b.modified...)
}

/*
Texture keeps one byte slice per level and slice, 4 bytes per texel. ReplaceRegion and
GetBytes only support regions starting at the origin.
*/
type Texture struct {
	Label  string
	Desc   platform.TextureDescriptor
	Parent *Texture

	mtx    sync.Mutex
	images map[[2]int][]byte
}

var _ platform.Texture = (*Texture)(nil)

func NewTexture(label string, desc platform.TextureDescriptor) *Texture {
	if desc.MipmapLevelCount == 0 {
		desc.MipmapLevelCount = 1
	}
	if desc.ArrayLength == 0 {
		desc.ArrayLength = 1
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	if desc.Depth == 0 {
		desc.Depth = 1
	}
	return &Texture{Label: label, Desc: desc, images: map[[2]int][]byte{}}
}

func (t *Texture) TextureType() platform.TextureType { return t.Desc.TextureType }
func (t *Texture) PixelFormat() platform.PixelFormat { return t.Desc.PixelFormat }
func (t *Texture) Width() int                        { return t.Desc.Width }
func (t *Texture) Height() int                       { return t.Desc.Height }
func (t *Texture) Depth() int                        { return t.Desc.Depth }
func (t *Texture) MipmapLevelCount() int             { return t.Desc.MipmapLevelCount }
func (t *Texture) ArrayLength() int                  { return t.Desc.ArrayLength }
func (t *Texture) SampleCount() int                  { return t.Desc.SampleCount }

func (t *Texture) NewTextureView(format platform.PixelFormat, textureType platform.TextureType, levels, slices platform.Range) (platform.Texture, error) {
	desc := t.Desc
	desc.PixelFormat = format
	desc.TextureType = textureType
	desc.Width = max(1, t.Desc.Width>>levels.Location)
	desc.Height = max(1, t.Desc.Height>>levels.Location)
	desc.MipmapLevelCount = levels.Length
	desc.ArrayLength = slices.Length
	if textureType == platform.TextureTypeCube {
		desc.ArrayLength = 1
	}
	v := NewTexture(t.Label+"View", desc)
	v.Parent = t
	return v, nil
}

func (t *Texture) ReplaceRegion(region platform.Region, level, slice int, data []byte, bytesPerRow, bytesPerImage int) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.images[[2]int{level, slice}] = append([]byte(nil), data...)
}

func (t *Texture) GetBytes(dst []byte, bytesPerRow, bytesPerImage int, region platform.Region, level, slice int) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	copy(dst, t.images[[2]int{level, slice}])
}

type Drawable struct {
	Tex *Texture
}

func (d *Drawable) Texture() platform.Texture {
	return d.Tex
}
