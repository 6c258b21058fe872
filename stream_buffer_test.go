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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/rhi/mtl/internal/fakegpu"
	"goarrg.com/rhi/mtl/platform"
)

// markUsedByGPU records a read of r in the command buffer being recorded.
func markUsedByGPU(t *testing.T, ctx *testContext, r GPUResource) {
	t.Helper()
	cb, err := ctx.CommandBuffer()
	require.NoError(t, err)
	cb.setReadDependency(r)
}

func TestStreamBufferInitialize(t *testing.T) {
	ctx := newTestContext(t)

	s := NewStreamBuffer("stream", false)
	assert.False(t, s.Valid())
	assert.Panics(t, func() { s.CurrentBuffer() })

	require.NoError(t, s.Initialize(ctx.Context, 16, 0, []byte{1, 2}))
	assert.True(t, s.Valid())
	assert.Equal(t, int(DefaultConfig().StreamBufferQueueSize), s.QueueSize())
	assert.Equal(t, 16, s.Size())
	assert.Equal(t, []byte{1, 2}, s.CurrentBuffer().Platform().Contents()[:2])

	assert.Panics(t, func() { _ = s.Initialize(ctx.Context, 16, MaxStreamBufferQueueSize+1, nil) })
	assert.Panics(t, func() { _ = s.Initialize(ctx.Context, 1, 2, []byte{1, 2}) })

	// reinitializing replaces every version
	old := s.CurrentBuffer()
	require.NoError(t, s.Initialize(ctx.Context, 32, 3, nil))
	assert.Equal(t, 3, s.QueueSize())
	assert.NotSame(t, old, s.CurrentBuffer())
	assert.Panics(t, func() { old.Size() })

	s.Destroy(ctx.Context)
	assert.False(t, s.Valid())
}

func TestStreamBufferCommitRotates(t *testing.T) {
	ctx := newTestContext(t)

	s := NewStreamBuffer("stream", false)
	require.NoError(t, s.Initialize(ctx.Context, 8, 2, nil))

	a, err := s.CommitData(ctx.Context, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Same(t, a, s.CurrentBuffer())

	// Data starts from the previous version's contents
	data, err := s.Data(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, data)
	again, err := s.Data(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, data, again)
	data[0] = 9

	b, err := s.Commit(ctx.Context)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, []byte{9, 2, 3, 4, 0, 0, 0, 0}, b.Platform().Contents())
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, a.Platform().Contents())

	assert.Panics(t, func() { _, _ = s.CommitData(ctx.Context, make([]byte, 9)) })
	s.Destroy(ctx.Context)
}

func TestStreamBufferCurrentBufferIsCommitted(t *testing.T) {
	ctx := newTestContext(t)

	s := NewStreamBuffer("stream", false)
	require.NoError(t, s.Initialize(ctx.Context, 4, 2, nil))

	committed, err := s.CommitData(ctx.Context, []byte{1, 1, 1, 1})
	require.NoError(t, err)

	data, err := s.Data(ctx.Context)
	require.NoError(t, err)
	data[0] = 9
	// the mapped version stays private until Commit
	assert.Same(t, committed, s.CurrentBuffer())
	assert.Equal(t, []byte{1, 1, 1, 1}, s.CurrentBuffer().Platform().Contents())

	next, err := s.Commit(ctx.Context)
	require.NoError(t, err)
	assert.NotSame(t, committed, next)
	assert.Same(t, next, s.CurrentBuffer())
	assert.Equal(t, []byte{9, 1, 1, 1}, s.CurrentBuffer().Platform().Contents())

	// committing with nothing mapped keeps the current version
	again, err := s.Commit(ctx.Context)
	require.NoError(t, err)
	assert.Same(t, next, again)
	s.Destroy(ctx.Context)
}

func TestStreamBufferShadowCopy(t *testing.T) {
	ctx := newTestContext(t)

	s := NewStreamBuffer("stream", true)
	require.NoError(t, s.Initialize(ctx.Context, 4, 2, []byte{5}))
	assert.True(t, s.UseShadowCopy())

	shadow, err := s.Data(ctx.Context)
	require.NoError(t, err)
	shadow[1] = 6
	// nothing reaches a buffer until Commit
	assert.Equal(t, []byte{5, 0, 0, 0}, s.CurrentBuffer().Platform().Contents())

	b, err := s.Commit(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6, 0, 0}, b.Platform().Contents())
	assert.Equal(t, []fakegpu.Range{{Offset: 0, Length: 1}, {Offset: 0, Length: 4}}, b.Platform().(*fakegpu.Buffer).ModifiedRanges())

	same, err := s.Data(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, shadow, same)
	s.Destroy(ctx.Context)
}

func TestStreamBufferWaitsForGPU(t *testing.T) {
	config := DefaultConfig()
	config.WaitTimeout = 50 * time.Millisecond
	ctx := newTestContextWithConfig(t, fakegpu.DefaultProperties(), config)

	s := NewStreamBuffer("stream", false)
	require.NoError(t, s.Initialize(ctx.Context, 4, 2, nil))

	a, err := s.CommitData(ctx.Context, []byte{1})
	require.NoError(t, err)
	markUsedByGPU(t, ctx, a)
	ctx.Flush()

	b, err := s.CommitData(ctx.Context, []byte{2})
	require.NoError(t, err)
	markUsedByGPU(t, ctx, b)
	ctx.Flush()

	// the next version is still in use by a command buffer that never completes
	_, err = s.CommitData(ctx.Context, []byte{3})
	assert.ErrorIs(t, err, ErrorDeviceLost{})
	ctx.HandleDeviceLost()

	a, err = s.CommitData(ctx.Context, []byte{1})
	require.NoError(t, err)
	markUsedByGPU(t, ctx, a)
	ctx.Flush()
	first := ctx.last()
	b, err = s.CommitData(ctx.Context, []byte{2})
	require.NoError(t, err)
	markUsedByGPU(t, ctx, b)
	ctx.Flush()

	go first.Complete(platform.CommandBufferStatusCompleted)
	c, err := s.CommitData(ctx.Context, []byte{3})
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.True(t, first.Completed())
	s.Destroy(ctx.Context)
}

func TestStreamBufferSingleVersion(t *testing.T) {
	ctx := newTestContext(t)
	ctx.gpu().SetAutoComplete(true)

	s := NewStreamBuffer("stream", false)
	require.NoError(t, s.Initialize(ctx.Context, 4, 1, nil))

	a, err := s.CommitData(ctx.Context, []byte{1})
	require.NoError(t, err)
	markUsedByGPU(t, ctx, a)
	assert.False(t, ctx.last().Committed())

	// the only version is in use, committing again flushes and waits
	b, err := s.CommitData(ctx.Context, []byte{2})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, ctx.last().Completed())
	assert.Equal(t, byte(2), b.Platform().Contents()[0])
	s.Destroy(ctx.Context)
}
