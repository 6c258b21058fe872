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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/rhi/mtl/internal/fakegpu"
	"goarrg.com/rhi/mtl/platform"
)

func TestMakeBuffer(t *testing.T) {
	ctx := newTestContext(t)

	b, err := MakeBuffer(ctx.Context, "b", 8, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 8, b.Size())
	assert.Equal(t, "b", b.Label())
	assert.Equal(t, platform.StorageModeShared, b.StorageMode())

	fake := b.Platform().(*fakegpu.Buffer)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, fake.Data())
	assert.Equal(t, []fakegpu.Range{{Offset: 0, Length: 3}}, fake.ModifiedRanges())
}

func TestMakeBufferInvalid(t *testing.T) {
	ctx := newTestContext(t)

	_, err := MakeBuffer(ctx.Context, "empty", 0, nil)
	assert.ErrorIs(t, err, ErrorAllocation{})
	_, err = MakeBuffer(ctx.Context, "small", 2, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrorAllocation{})
	_, err = MakeBuffer(ctx.Context, "huge", 1<<31, nil)
	assert.ErrorIs(t, err, ErrorAllocation{})

	ctx.device.Fail("NewBuffer", errors.New("out of memory"))
	_, err = MakeBuffer(ctx.Context, "fail", 16, nil)
	assert.ErrorIs(t, err, ErrorAllocation{})

	assert.Panics(t, func() {
		_, _ = MakeBufferWithStorage(ctx.Context, "private", platform.StorageModePrivate, 4, []byte{1})
	})
}

func TestBufferMapWaitsForGPU(t *testing.T) {
	ctx := newTestContext(t)
	ctx.gpu().SetAutoComplete(true)

	b, err := MakeBuffer(ctx.Context, "b", 16, nil)
	require.NoError(t, err)
	blit, err := ctx.BlitCommandEncoder()
	require.NoError(t, err)
	blit.FillBuffer(b, 0, 16, 7)

	data, err := b.Map(ctx.Context)
	require.NoError(t, err)
	assert.True(t, ctx.last().Committed())
	assert.Equal(t, byte(7), data[15])
	assert.Panics(t, func() { _, _ = b.Map(ctx.Context) })
	b.Unmap(ctx.Context)
	assert.Panics(t, func() { b.Unmap(ctx.Context) })
}

func TestBufferMapNoSync(t *testing.T) {
	ctx := newTestContext(t)

	b, err := MakeBuffer(ctx.Context, "b", 16, nil)
	require.NoError(t, err)
	blit, err := ctx.BlitCommandEncoder()
	require.NoError(t, err)
	blit.FillBuffer(b, 0, 16, 7)

	_, err = b.MapWithOpt(ctx.Context, false, true)
	require.NoError(t, err)
	assert.False(t, ctx.last().Committed())
	b.UnmapAndFlushSubset(ctx.Context, 4, 8)

	ranges := b.Platform().(*fakegpu.Buffer).ModifiedRanges()
	assert.Equal(t, fakegpu.Range{Offset: 4, Length: 8}, ranges[len(ranges)-1])
}

func TestBufferManagedSynchronize(t *testing.T) {
	ctx := newTestContext(t)
	ctx.gpu().SetAutoComplete(true)

	b, err := MakeBufferWithStorage(ctx.Context, "managed", platform.StorageModeManaged, 16, nil)
	require.NoError(t, err)
	blit, err := ctx.BlitCommandEncoder()
	require.NoError(t, err)
	blit.FillBuffer(b, 0, 16, 1)
	require.True(t, b.IsCPUReadMemDirty())

	_, err = b.MapWithOpt(ctx.Context, true, false)
	require.NoError(t, err)
	cb := ctx.last()
	assert.Equal(t, 1, cb.Count("SynchronizeBuffer"))
	assert.True(t, cb.Completed())
	assert.False(t, b.IsCPUReadMemDirty())
	b.Unmap(ctx.Context)

	// clean buffers skip the synchronize
	_, err = b.MapWithOpt(ctx.Context, true, false)
	require.NoError(t, err)
	b.Unmap(ctx.Context)
	assert.Same(t, cb, ctx.last())
}

func TestBufferReset(t *testing.T) {
	ctx := newTestContext(t)

	b, err := MakeBuffer(ctx.Context, "b", 16, nil)
	require.NoError(t, err)
	blit, err := ctx.BlitCommandEncoder()
	require.NoError(t, err)
	blit.FillBuffer(b, 0, 16, 1)
	require.True(t, ctx.IsResourceBeingUsedByGPU(b))

	require.NoError(t, b.Reset(ctx.Context, 32, []byte{1}))
	assert.Equal(t, 32, b.Size())
	assert.False(t, ctx.IsResourceBeingUsedByGPU(b))
	assert.Zero(t, b.LastQueueSerial())
}

func TestBufferHostWrite(t *testing.T) {
	ctx := newTestContext(t)

	b, err := MakeBuffer(ctx.Context, "b", 8, nil)
	require.NoError(t, err)
	b.HostWrite(4, []byte{9, 9})
	fake := b.Platform().(*fakegpu.Buffer)
	assert.Equal(t, []byte{0, 0, 0, 0, 9, 9, 0, 0}, fake.Data())
	assert.Equal(t, []fakegpu.Range{{Offset: 4, Length: 2}}, fake.ModifiedRanges())

	private, err := MakeBufferWithStorage(ctx.Context, "private", platform.StorageModePrivate, 8, nil)
	require.NoError(t, err)
	assert.Panics(t, func() { private.HostWrite(0, []byte{1}) })
	assert.Panics(t, func() { _, _ = private.Map(ctx.Context) })
}

func TestBufferDestroy(t *testing.T) {
	ctx := newTestContext(t)

	b, err := MakeBuffer(ctx.Context, "b", 8, nil)
	require.NoError(t, err)
	b.Destroy()
	assert.Panics(t, func() { b.Size() })
}
