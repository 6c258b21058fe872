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
	"goarrg.com/rhi/mtl/internal/util"
	"goarrg.com/rhi/mtl/platform"
)

type Buffer struct {
	Resource
	noCopy  noCopy
	label   string
	storage platform.StorageMode
	buffer  platform.Buffer

	mapped     bool
	dirtyBegin int
	dirtyEnd   int
}

var _ interface {
	GPUResource
	util.HostWriter
	Destroyer
} = (*Buffer)(nil)

// MakeBuffer creates a CPU visible buffer of size bytes, data may be nil or at most size bytes.
func MakeBuffer(ctx *Context, label string, size int, data []byte) (*Buffer, error) {
	return MakeBufferWithStorage(ctx, label, platform.StorageModeShared, size, data)
}

func MakeBufferWithStorage(ctx *Context, label string, storage platform.StorageMode, size int, data []byte) (*Buffer, error) {
	ctx.noCopy.check()
	b := Buffer{label: label, storage: storage}
	b.noCopy.init("Buffer")
	if err := b.Reset(ctx, size, data); err != nil {
		b.noCopy.close()
		return nil, err
	}
	return &b, nil
}

func validateBufferCreation(ctx *Context, size int, data []byte) error {
	if size <= 0 {
		return debug.Errorf("Buffer size must be > 0, got [%d]", size)
	}
	if limit := ctx.properties.Limits.MaxBufferLength; limit > 0 && uint64(size) > limit {
		return debug.Errorf("Buffer size [%d] is larger than Properties.Limits.MaxBufferLength [%d]", size, limit)
	}
	if len(data) > size {
		return debug.Errorf("Initial data of [%d] bytes does not fit in buffer of size [%d]", len(data), size)
	}
	return nil
}

// Reset replaces the backing storage. Command buffers still referencing the old storage
// keep it alive, the buffer starts with a fresh usage record.
func (b *Buffer) Reset(ctx *Context, size int, data []byte) error {
	b.noCopy.check()
	if b.mapped {
		abort("Buffer %q reset while mapped", b.label)
	}
	if err := validateBufferCreation(ctx, size, data); err != nil {
		return debug.ErrorWrapf(ErrorAllocation{}, "Failed to create buffer %q: %v", b.label, err)
	}
	if data != nil && b.storage == platform.StorageModePrivate {
		abort("Buffer %q with private storage cannot be initialized from the CPU", b.label)
	}

	buffer, err := ctx.device.NewBuffer(b.label, size, b.storage)
	if err != nil {
		return debug.ErrorWrapf(ErrorAllocation{}, "Failed to create buffer %q of size [%d]: %v", b.label, size, err)
	}
	b.buffer = buffer
	b.Resource = newResource()

	if data != nil {
		copy(buffer.Contents(), data)
		buffer.DidModifyRange(0, len(data))
	}
	return nil
}

// Map waits until the GPU is done with the buffer then returns its contents.
func (b *Buffer) Map(ctx *Context) ([]byte, error) {
	return b.MapWithOpt(ctx, false, false)
}

// MapWithOpt returns the buffer's contents, noSync skips waiting for the GPU and should
// only be used to write regions the GPU is known not to be reading. Managed buffers the
// GPU wrote to are synchronized first.
func (b *Buffer) MapWithOpt(ctx *Context, readonly, noSync bool) ([]byte, error) {
	b.noCopy.check()
	if b.storage == platform.StorageModePrivate {
		abort("Buffer %q with private storage cannot be mapped", b.label)
	}
	if b.mapped {
		abort("Buffer %q is already mapped", b.label)
	}

	if !noSync {
		if b.storage == platform.StorageModeManaged && b.IsCPUReadMemDirty() {
			blit, err := ctx.BlitCommandEncoder()
			if err != nil {
				return nil, err
			}
			blit.SynchronizeBuffer(b)
		}
		if err := ctx.EnsureResourceReadyForCPU(b); err != nil {
			return nil, err
		}
		b.ResetCPUReadMemDirty()
	}
	if readonly {
		b.dirtyBegin, b.dirtyEnd = 0, 0
	} else {
		b.dirtyBegin, b.dirtyEnd = 0, b.buffer.Length()
	}

	b.mapped = true
	return b.buffer.Contents(), nil
}

func (b *Buffer) Unmap(ctx *Context) {
	b.noCopy.check()
	if !b.mapped {
		abort("Buffer %q is not mapped", b.label)
	}
	if b.dirtyEnd > b.dirtyBegin {
		b.buffer.DidModifyRange(b.dirtyBegin, b.dirtyEnd-b.dirtyBegin)
	}
	b.mapped = false
}

// UnmapAndFlushSubset is like Unmap but only flushes [offset, offset+size) of a managed buffer.
func (b *Buffer) UnmapAndFlushSubset(ctx *Context, offset, size int) {
	b.noCopy.check()
	if !b.mapped {
		abort("Buffer %q is not mapped", b.label)
	}
	b.dirtyBegin, b.dirtyEnd = offset, offset+size
	b.Unmap(ctx)
}

// HostWrite copies data into the buffer without waiting for the GPU.
func (b *Buffer) HostWrite(offset uintptr, data []byte) {
	b.noCopy.check()
	if b.storage == platform.StorageModePrivate {
		abort("Buffer %q with private storage cannot be written from the CPU", b.label)
	}
	util.CopyAt(b.buffer.Contents(), int(offset), data)
	if !b.mapped {
		b.buffer.DidModifyRange(int(offset), len(data))
	}
}

func (b *Buffer) Size() int {
	b.noCopy.check()
	return b.buffer.Length()
}

func (b *Buffer) Label() string {
	b.noCopy.check()
	return b.label
}

func (b *Buffer) StorageMode() platform.StorageMode {
	b.noCopy.check()
	return b.storage
}

func (b *Buffer) Platform() platform.Buffer {
	b.noCopy.check()
	return b.buffer
}

func (b *Buffer) Destroy() {
	b.noCopy.check()
	b.buffer = nil
	b.noCopy.close()
}
