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

type coverageMaskFactory struct {
	calls int
	err   error
}

func (f *coverageMaskFactory) HasSpecializedShader(stage ShaderStage, desc RenderPipelineDesc) bool {
	return stage == ShaderStageFragment && desc.EmulateCoverageMask
}

func (f *coverageMaskFactory) SpecializedShader(stage ShaderStage, desc RenderPipelineDesc) (platform.Function, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return fakegpu.NewFunction("fsCoverageMask"), nil
}

func newTestPipelineCache(t *testing.T, ctx *testContext, factory SpecializeShaderFactory) *RenderPipelineCache {
	t.Helper()
	c := NewRenderPipelineCache(ctx.Context, "test", factory)
	c.SetVertexShader(fakegpu.NewFunction("vs"))
	c.SetFragmentShader(fakegpu.NewFunction("fs"))
	return c
}

func TestRenderPipelineCacheDedup(t *testing.T) {
	ctx := newTestContext(t)
	c := newTestPipelineCache(t, ctx, nil)

	a, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)
	b, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, ctx.device.Calls("NewRenderPipelineState"))

	desc := NewRenderPipelineDesc()
	desc.OutputDescriptor.SampleCount = 4
	_, err = c.RenderPipelineState(desc)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	state := a.(*fakegpu.RenderPipelineState)
	assert.Equal(t, "vs", state.Desc.VertexFunction.Name())
	assert.Equal(t, "fs", state.Desc.FragmentFunction.Name())
}

func TestRenderPipelineCacheShaderChangeInvalidates(t *testing.T) {
	ctx := newTestContext(t)
	c := newTestPipelineCache(t, ctx, nil)

	a, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)

	// setting the same shader keeps the cache
	c.SetVertexShader(c.VertexShader())
	assert.Equal(t, 1, c.Len())

	c.SetVertexShader(fakegpu.NewFunction("vs2"))
	assert.Zero(t, c.Len())
	b, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, "vs2", b.(*fakegpu.RenderPipelineState).Desc.VertexFunction.Name())

	c.SetFragmentShader(nil)
	assert.Zero(t, c.Len())
	assert.Panics(t, func() { _, _ = c.RenderPipelineState(NewRenderPipelineDesc()) })

	// no fragment shader is needed without rasterization
	desc := NewRenderPipelineDesc()
	desc.RasterizationType = RenderPipelineRasterizationDisabled
	state, err := c.RenderPipelineState(desc)
	require.NoError(t, err)
	assert.Nil(t, state.(*fakegpu.RenderPipelineState).Desc.FragmentFunction)
}

func TestRenderPipelineCacheCompileError(t *testing.T) {
	ctx := newTestContext(t)
	c := newTestPipelineCache(t, ctx, nil)

	ctx.device.Fail("NewRenderPipelineState", errors.New("bad shader"))
	_, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
	assert.Zero(t, c.Len())

	_, err = c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.device.Calls("NewRenderPipelineState"))
}

func TestRenderPipelineCacheSpecializedShader(t *testing.T) {
	ctx := newTestContext(t)
	factory := &coverageMaskFactory{}
	c := newTestPipelineCache(t, ctx, factory)

	_, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)
	assert.Zero(t, factory.calls)

	desc := NewRenderPipelineDesc()
	desc.EmulateCoverageMask = true
	state, err := c.RenderPipelineState(desc)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.calls)
	assert.Equal(t, "fsCoverageMask", state.(*fakegpu.RenderPipelineState).Desc.FragmentFunction.Name())
	assert.Equal(t, "vs", state.(*fakegpu.RenderPipelineState).Desc.VertexFunction.Name())

	factory.err = errors.New("unsupported")
	desc.AlphaToCoverageEnabled = true
	_, err = c.RenderPipelineState(desc)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
}

func TestRenderPipelineCacheMarshalJSON(t *testing.T) {
	ctx := newTestContext(t)
	c := newTestPipelineCache(t, ctx, nil)
	_, err := c.RenderPipelineState(NewRenderPipelineDesc())
	require.NoError(t, err)

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "test", out["label"])
	assert.Equal(t, "vs", out["vertexShader"])
	assert.Len(t, out["cache"], 1)
}

func TestComputePipelineCache(t *testing.T) {
	ctx := newTestContext(t)

	a, err := ctx.computePipeline("kernel", "kernel", nil)
	require.NoError(t, err)
	b, err := ctx.computePipeline("kernel", "kernel", nil)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, ctx.library.Calls("kernel"))

	ctx.library.SetMissing("missing", true)
	_, err = ctx.computePipeline("missing", "missing", nil)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
	_, err = ctx.computePipeline("missing", "missing", nil)
	assert.ErrorIs(t, err, ErrorShaderCompile{})
	assert.Equal(t, 2, ctx.library.Calls("missing"))

	ctx.device.Fail("NewComputePipelineState", errors.New("bad kernel"))
	_, err = ctx.computePipeline("other", "kernel", platform.FunctionConstants{"kFoo": uint32(1)})
	assert.ErrorIs(t, err, ErrorShaderCompile{})

	ctx.HandleDeviceLost()
	c, err := ctx.computePipeline("kernel", "kernel", nil)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
