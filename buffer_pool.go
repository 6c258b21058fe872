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

	"goarrg.com/rhi/mtl/internal/container"
	"goarrg.com/rhi/mtl/internal/util"
)

/*
BufferPool sub-allocates CPU written data such as converted indices or uniforms from a set
of buffers. Allocations are linear within the current buffer, a buffer that fills up goes
in flight and is only handed out again once the GPU is done with it. At most maxBuffers
exist at once, hitting the limit waits for the oldest buffer in flight.
*/
type BufferPool struct {
	noCopy     noCopy
	label      string
	size       int
	alignment  int
	maxBuffers int

	current         *Buffer
	nextOffset      int
	lastFlushOffset int

	inFlight container.Deque[*Buffer]
	free     container.Stack[*Buffer]
	total    int
}

// NewBufferPool creates a pool sized from the context's Config.
func NewBufferPool(ctx *Context, label string) *BufferPool {
	return NewBufferPoolWithOpt(ctx, label, int(ctx.config.BufferPoolInitialSize), int(ctx.config.BufferPoolAlignment), int(ctx.config.BufferPoolMaxBuffers))
}

func NewBufferPoolWithOpt(ctx *Context, label string, initialSize, alignment, maxBuffers int) *BufferPool {
	ctx.noCopy.check()
	if initialSize <= 0 || alignment <= 0 || maxBuffers <= 0 {
		abort("BufferPool %q needs positive size [%d], alignment [%d] and max buffers [%d]", label, initialSize, alignment, maxBuffers)
	}
	p := BufferPool{
		label:      label,
		size:       initialSize,
		alignment:  alignment,
		maxBuffers: maxBuffers,
	}
	p.noCopy.init("BufferPool")
	return &p
}

func (p *BufferPool) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"Label": %q, "Size": %d, "Alignment": %d, "MaxBuffers": %d, "Total": %d, "InFlight": %d, "Free": %d}`,
		p.label, p.size, p.alignment, p.maxBuffers, p.total, p.inFlight.Len(), p.free.Len())), nil
}

// Allocate returns size bytes of CPU writable memory at offset in buffer. Writes must be
// made before the next Commit.
func (p *BufferPool) Allocate(ctx *Context, size int) (buffer *Buffer, offset int, data []byte, err error) {
	p.noCopy.check()
	if size <= 0 {
		abort("BufferPool %q allocation size must be > 0, got [%d]", p.label, size)
	}

	offset = util.AlignUp(p.nextOffset, p.alignment)
	if p.current == nil || offset+size > p.current.Size() {
		if err := p.nextBuffer(ctx, size); err != nil {
			return nil, 0, nil, err
		}
		offset = 0
	}

	p.nextOffset = offset + size
	return p.current, offset, p.current.Platform().Contents()[offset : offset+size], nil
}

// Commit makes every allocation since the last Commit visible to the GPU.
func (p *BufferPool) Commit() {
	p.noCopy.check()
	if p.current != nil && p.nextOffset > p.lastFlushOffset {
		p.current.Platform().DidModifyRange(p.lastFlushOffset, p.nextOffset-p.lastFlushOffset)
		p.lastFlushOffset = p.nextOffset
	}
}

func (p *BufferPool) nextBuffer(ctx *Context, minSize int) error {
	if p.current != nil {
		p.Commit()
		p.inFlight.PushBack(p.current)
		p.current = nil
	}
	if minSize > p.size {
		instance.logger.VPrintf("Growing BufferPool %q from [%d] to [%d] bytes", p.label, p.size, minSize)
		p.size = minSize
		p.dropSmallFreeBuffers()
	}

	p.ReleaseInFlightBuffers(ctx)
	if p.free.Empty() && p.total >= p.maxBuffers {
		for !p.inFlight.Empty() && p.free.Empty() {
			instance.logger.VPrintf("BufferPool %q reached [%d] buffers, waiting for the GPU", p.label, p.maxBuffers)
			if err := ctx.EnsureResourceReadyForCPU(p.inFlight.Front()); err != nil {
				return err
			}
			p.ReleaseInFlightBuffers(ctx)
		}
	}

	if !p.free.Empty() {
		p.current = p.free.Pop()
	} else {
		b, err := MakeBuffer(ctx, genID(p.label, p.total), p.size, nil)
		if err != nil {
			return err
		}
		p.current = b
		p.total++
	}
	p.nextOffset = 0
	p.lastFlushOffset = 0
	return nil
}

func (p *BufferPool) dropSmallFreeBuffers() {
	for {
		b, ok := p.free.PopFunc(func(b *Buffer) bool { return b.Size() < p.size })
		if !ok {
			return
		}
		b.Destroy()
		p.total--
	}
}

// ReleaseInFlightBuffers makes buffers the GPU is done with available again, buffers
// smaller than the current size are destroyed instead.
func (p *BufferPool) ReleaseInFlightBuffers(ctx *Context) {
	p.noCopy.check()
	for !p.inFlight.Empty() && !ctx.IsResourceBeingUsedByGPU(p.inFlight.Front()) {
		b := p.inFlight.PopFront()
		if b.Size() < p.size {
			b.Destroy()
			p.total--
			continue
		}
		p.free.Push(b)
	}
}

func (p *BufferPool) NumBuffers() int {
	p.noCopy.check()
	return p.total
}

func (p *BufferPool) NumInFlightBuffers() int {
	p.noCopy.check()
	return p.inFlight.Len()
}

func (p *BufferPool) NumFreeBuffers() int {
	p.noCopy.check()
	return p.free.Len()
}

func (p *BufferPool) Size() int {
	p.noCopy.check()
	return p.size
}

// Destroy releases every buffer, buffers still used by the GPU are destroyed once their
// command buffer retires.
func (p *BufferPool) Destroy(ctx *Context) {
	p.noCopy.check()
	if p.current != nil {
		ctx.DestroyWhenUnused(p.current, p.current)
		p.current = nil
	}
	for !p.inFlight.Empty() {
		b := p.inFlight.PopFront()
		ctx.DestroyWhenUnused(b, b)
	}
	for !p.free.Empty() {
		p.free.Pop().Destroy()
	}
	p.total = 0
	p.noCopy.close()
}
