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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/rhi/mtl/internal/fakegpu"
	"goarrg.com/rhi/mtl/platform"
)

func TestStateCacheDepthStencilState(t *testing.T) {
	ctx := newTestContext(t)
	cache := ctx.StateCache()

	a, err := cache.DepthStencilState(NewDepthStencilDesc())
	require.NoError(t, err)
	b, err := cache.DepthStencilState(NewDepthStencilDesc())
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, ctx.device.Calls("NewDepthStencilState"))

	desc := NewDepthStencilDesc()
	desc.DepthCompareFunction = platform.CompareFunctionLess
	c, err := cache.DepthStencilState(desc)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, cache.NumDepthStencilStates())
	assert.Equal(t, platform.CompareFunctionLess, c.(*fakegpu.DepthStencilState).Desc.DepthCompareFunction)
}

func TestStateCacheNullStates(t *testing.T) {
	ctx := newTestContext(t)
	cache := ctx.StateCache()

	ds, err := cache.NullDepthStencilState()
	require.NoError(t, err)
	again, err := cache.NullDepthStencilState()
	require.NoError(t, err)
	assert.Same(t, ds, again)
	assert.False(t, ds.(*fakegpu.DepthStencilState).Desc.DepthWriteEnabled)

	sampler, err := cache.NullSamplerState()
	require.NoError(t, err)
	desc := SamplerDesc{}
	desc.Reset()
	fromDesc, err := cache.SamplerState(desc)
	require.NoError(t, err)
	assert.Same(t, sampler, fromDesc)
	assert.Equal(t, 1, ctx.device.Calls("NewSamplerState"))
}

func TestStateCacheClear(t *testing.T) {
	ctx := newTestContext(t)
	cache := ctx.StateCache()

	a, err := cache.SamplerState(NewSamplerDesc(SamplerState{}))
	require.NoError(t, err)
	cache.Clear()
	assert.Zero(t, cache.NumSamplerStates())

	b, err := cache.SamplerState(NewSamplerDesc(SamplerState{}))
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, ctx.device.Calls("NewSamplerState"))
}

func TestStateCacheAllocationFailure(t *testing.T) {
	ctx := newTestContext(t)
	cache := ctx.StateCache()

	ctx.device.Fail("NewDepthStencilState", errors.New("out of memory"))
	_, err := cache.DepthStencilState(NewDepthStencilDesc())
	assert.ErrorIs(t, err, ErrorAllocation{})
	assert.Zero(t, cache.NumDepthStencilStates())

	// failures are not cached
	_, err = cache.DepthStencilState(NewDepthStencilDesc())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.NumDepthStencilStates())
}

func TestStateCacheMarshalJSON(t *testing.T) {
	ctx := newTestContext(t)
	cache := ctx.StateCache()

	_, err := cache.NullDepthStencilState()
	require.NoError(t, err)
	_, err = cache.NullSamplerState()
	require.NoError(t, err)

	data, err := cache.MarshalJSON()
	require.NoError(t, err)
	out := map[string]map[string]string{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out["depthStencilStates"], 1)
	assert.Len(t, out["samplerStates"], 1)
}
