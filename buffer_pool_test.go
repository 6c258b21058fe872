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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/rhi/mtl/internal/fakegpu"
)

func TestBufferPoolAllocate(t *testing.T) {
	ctx := newTestContext(t)
	p := NewBufferPoolWithOpt(ctx.Context, "pool", 64, 16, 4)
	defer p.Destroy(ctx.Context)

	a, offset, data, err := p.Allocate(ctx.Context, 10)
	require.NoError(t, err)
	assert.Zero(t, offset)
	assert.Len(t, data, 10)
	data[0] = 0xAB

	b, offset, _, err := p.Allocate(ctx.Context, 10)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 16, offset)
	assert.Equal(t, byte(0xAB), a.Platform().Contents()[0])

	p.Commit()
	assert.Equal(t, []fakegpu.Range{{Offset: 0, Length: 26}}, a.Platform().(*fakegpu.Buffer).ModifiedRanges())
	// nothing new to flush
	p.Commit()
	assert.Len(t, a.Platform().(*fakegpu.Buffer).ModifiedRanges(), 1)

	// does not fit in what is left of the first buffer
	c, offset, _, err := p.Allocate(ctx.Context, 40)
	require.NoError(t, err)
	assert.Zero(t, offset)
	// a was never used by the GPU so it is recycled right away
	assert.Same(t, a, c)
	assert.Equal(t, 1, p.NumBuffers())
	assert.Zero(t, p.NumInFlightBuffers())
	assert.Zero(t, p.NumFreeBuffers())

	assert.Panics(t, func() { _, _, _, _ = p.Allocate(ctx.Context, 0) })
}

func TestBufferPoolWaitsAtMaxBuffers(t *testing.T) {
	ctx := newTestContext(t)
	ctx.gpu().SetAutoComplete(true)
	p := NewBufferPoolWithOpt(ctx.Context, "pool", 32, 4, 2)
	defer p.Destroy(ctx.Context)

	a, _, _, err := p.Allocate(ctx.Context, 32)
	require.NoError(t, err)
	markUsedByGPU(t, ctx, a)

	b, _, _, err := p.Allocate(ctx.Context, 32)
	require.NoError(t, err)
	markUsedByGPU(t, ctx, b)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, p.NumBuffers())
	assert.Equal(t, 1, p.NumInFlightBuffers())
	assert.False(t, ctx.last().Committed())

	// both buffers are busy and the pool is at its limit, the command buffer using them is
	// flushed and waited on
	c, _, _, err := p.Allocate(ctx.Context, 32)
	require.NoError(t, err)
	assert.True(t, ctx.last().Completed())
	assert.Equal(t, 2, p.NumBuffers())
	assert.Zero(t, p.NumInFlightBuffers())
	assert.Contains(t, []*Buffer{a, b}, c)
}

func TestBufferPoolGrows(t *testing.T) {
	ctx := newTestContext(t)
	p := NewBufferPoolWithOpt(ctx.Context, "pool", 16, 4, 4)
	defer p.Destroy(ctx.Context)

	small, _, _, err := p.Allocate(ctx.Context, 8)
	require.NoError(t, err)

	big, offset, data, err := p.Allocate(ctx.Context, 100)
	require.NoError(t, err)
	assert.Zero(t, offset)
	assert.Len(t, data, 100)
	assert.Equal(t, 100, p.Size())
	assert.Equal(t, 100, big.Size())
	// the smaller buffer is dropped instead of recycled
	assert.Equal(t, 1, p.NumBuffers())
	assert.Zero(t, p.NumFreeBuffers())
	assert.Panics(t, func() { small.Size() })
}

func TestNewBufferPool(t *testing.T) {
	config := DefaultConfig()
	config.BufferPoolInitialSize = 128
	config.BufferPoolAlignment = 32
	config.BufferPoolMaxBuffers = 3
	ctx := newTestContextWithConfig(t, fakegpu.DefaultProperties(), config)

	p := NewBufferPool(ctx.Context, "pool")
	defer p.Destroy(ctx.Context)
	assert.Equal(t, 128, p.Size())

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "pool", out["Label"])
	assert.EqualValues(t, 32, out["Alignment"])
	assert.EqualValues(t, 3, out["MaxBuffers"])

	assert.Panics(t, func() { NewBufferPoolWithOpt(ctx.Context, "bad", 0, 4, 1) })
}
