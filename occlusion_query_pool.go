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

	"goarrg.com/debug"
	"goarrg.com/rhi/mtl/platform"
)

/*
OcclusionQuery accumulates the visibility results of every render pass it was active in.
Each pass writes into a slot of the context's OcclusionQueryPool, slots are folded into the
query's own result buffer when the command buffer is flushed.
*/
type OcclusionQuery struct {
	noCopy noCopy
	label  string
	result *Buffer

	// offsets into the pool buffer allocated in the current command buffer
	offsets      []int
	resetPending bool
}

func NewOcclusionQuery(ctx *Context, label string) (*OcclusionQuery, error) {
	result, err := MakeBuffer(ctx, genID(label, "result"), occlusionQueryResultSize, make([]byte, occlusionQueryResultSize))
	if err != nil {
		return nil, err
	}
	q := OcclusionQuery{label: label, result: result}
	q.noCopy.init("OcclusionQuery")
	return &q, nil
}

func (q *OcclusionQuery) Label() string {
	q.noCopy.check()
	return q.label
}

func (q *OcclusionQuery) ResultBuffer() *Buffer {
	q.noCopy.check()
	return q.result
}

// Result waits for the GPU and returns the combined sample count, any nonzero value means
// at least one sample passed.
func (q *OcclusionQuery) Result(ctx *Context) (uint64, error) {
	q.noCopy.check()
	if len(q.offsets) > 0 {
		ctx.Flush()
	}
	data, err := q.result.MapWithOpt(ctx, true, false)
	if err != nil {
		return 0, err
	}
	defer q.result.Unmap(ctx)
	return binary.LittleEndian.Uint64(data), nil
}

// IsResultAvailable returns true if Result would not block.
func (q *OcclusionQuery) IsResultAvailable(ctx *Context) bool {
	q.noCopy.check()
	return len(q.offsets) == 0 && !ctx.IsResourceBeingUsedByGPU(q.result)
}

func (q *OcclusionQuery) Destroy(ctx *Context) {
	q.noCopy.check()
	ctx.queryPool.DeallocateQueryOffset(q)
	ctx.DestroyWhenUnused(q.result, q.result)
	q.result = nil
	q.noCopy.close()
}

/*
OcclusionQueryPool hands out 8 byte slots of the visibility result buffer that render
passes write to. Slots are only valid for the command buffer being recorded, Flush
resolves them into their queries and empties the pool.
*/
type OcclusionQueryPool struct {
	noCopy    noCopy
	buffer    *Buffer
	allocated []*OcclusionQuery
}

func newOcclusionQueryPool(ctx *Context) (*OcclusionQueryPool, error) {
	buffer, err := MakeBufferWithStorage(ctx, genID(ctx.config.Label, "visibilityResultPool"), platform.StorageModePrivate, int(ctx.config.VisibilityBufferSize), nil)
	if err != nil {
		return nil, err
	}
	p := OcclusionQueryPool{buffer: buffer}
	p.noCopy.init("OcclusionQueryPool")
	return &p, nil
}

func (p *OcclusionQueryPool) capacity() int {
	return p.buffer.Size() / occlusionQueryResultSize
}

// AllocateQueryOffset reserves a slot for q in the next render pass and returns its byte
// offset. clearOldValue discards the query's previous result when it is resolved.
func (p *OcclusionQueryPool) AllocateQueryOffset(ctx *Context, q *OcclusionQuery, clearOldValue bool) (int, error) {
	p.noCopy.check()
	q.noCopy.check()
	if len(p.allocated) >= p.capacity() {
		return 0, debug.ErrorWrapf(ErrorAllocation{}, "Occlusion query pool is full with [%d] queries, flush before allocating more", len(p.allocated))
	}
	offset := len(p.allocated) * occlusionQueryResultSize
	p.allocated = append(p.allocated, q)
	q.offsets = append(q.offsets, offset)
	if clearOldValue {
		q.resetPending = true
	}
	return offset, nil
}

// DeallocateQueryOffset releases every slot q holds, slots in the middle of the pool stay
// reserved until the pool is resolved.
func (p *OcclusionQueryPool) DeallocateQueryOffset(q *OcclusionQuery) {
	p.noCopy.check()
	if len(q.offsets) == 0 {
		return
	}
	for _, o := range q.offsets {
		p.allocated[o/occlusionQueryResultSize] = nil
	}
	q.offsets = q.offsets[:0]
	for len(p.allocated) > 0 && p.allocated[len(p.allocated)-1] == nil {
		p.allocated = p.allocated[:len(p.allocated)-1]
	}
}

// RenderPassVisibilityPoolBuffer returns the buffer to use as a render pass's visibility
// result buffer, or nil when no query is active.
func (p *OcclusionQueryPool) RenderPassVisibilityPoolBuffer() *Buffer {
	p.noCopy.check()
	if len(p.allocated) == 0 {
		return nil
	}
	return p.buffer
}

func (p *OcclusionQueryPool) NumRenderPassAllocatedQueries() int {
	p.noCopy.check()
	return len(p.allocated)
}

// ResolveVisibilityResults encodes the combination of every allocated slot into the owning
// queries and empties the pool.
func (p *OcclusionQueryPool) ResolveVisibilityResults(ctx *Context) error {
	p.noCopy.check()
	defer p.reset()

	for _, q := range p.allocated {
		if q == nil || len(q.offsets) == 0 {
			continue
		}
		err := ctx.utils.CombineVisibilityResult(ctx, !q.resetPending, q.offsets, p.buffer, q.result)
		if err != nil {
			return err
		}
		q.resetPending = false
		q.offsets = q.offsets[:0]
	}
	return nil
}

func (p *OcclusionQueryPool) reset() {
	for _, q := range p.allocated {
		if q != nil {
			q.offsets = q.offsets[:0]
		}
	}
	p.allocated = p.allocated[:0]
}

func (p *OcclusionQueryPool) destroy() {
	p.noCopy.check()
	p.reset()
	p.buffer.Destroy()
	p.noCopy.close()
}
