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
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"goarrg.com/debug"
	"goarrg.com/rhi/mtl/platform"
)

type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "Vertex"
	case ShaderStageFragment:
		return "Fragment"
	default:
		return fmt.Sprintf("Unknown: %d", uint8(s))
	}
}

// SpecializeShaderFactory lets the owner of a RenderPipelineCache substitute a shader variant
// specialized for a pipeline descriptor, e.g. one that emulates discard or coverage masks.
type SpecializeShaderFactory interface {
	HasSpecializedShader(stage ShaderStage, desc RenderPipelineDesc) bool
	SpecializedShader(stage ShaderStage, desc RenderPipelineDesc) (platform.Function, error)
}

/*
RenderPipelineCache maps RenderPipelineDescs to pipeline states for one vertex and fragment
shader pair. Changing either shader drops every cached pipeline. It is owned by a single
Context and is not safe for concurrent use.
*/
type RenderPipelineCache struct {
	noCopy  noCopy
	device  platform.Device
	label   string
	factory SpecializeShaderFactory

	vertexShader   platform.Function
	fragmentShader platform.Function

	cache map[renderPipelineKey]platform.RenderPipelineState
}

// NewRenderPipelineCache creates an empty cache, factory may be nil.
func NewRenderPipelineCache(ctx *Context, label string, factory SpecializeShaderFactory) *RenderPipelineCache {
	ctx.noCopy.check()
	return newRenderPipelineCache(ctx.device, label, factory)
}

func newRenderPipelineCache(device platform.Device, label string, factory SpecializeShaderFactory) *RenderPipelineCache {
	c := RenderPipelineCache{
		device:  device,
		label:   label,
		factory: factory,
		cache:   map[renderPipelineKey]platform.RenderPipelineState{},
	}
	c.noCopy.init("RenderPipelineCache")
	return &c
}

func (c *RenderPipelineCache) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"label\": %q,", c.label))
	for _, s := range []struct {
		name string
		fn   platform.Function
	}{
		{"vertexShader", c.vertexShader},
		{"fragmentShader", c.fragmentShader},
	} {
		if s.fn != nil {
			buff.WriteString(fmt.Sprintf("%q: %q,", s.name, s.fn.Name()))
		} else {
			buff.WriteString(fmt.Sprintf("%q: null,", s.name))
		}
	}

	{
		buff.WriteString("\"cache\": {")
		hashed := map[string]string{}
		for k, v := range c.cache {
			hashed[toHex(hashKey(k))] = v.Label()
		}
		err := mapRunFuncSorted(hashed, func(k string, v string) error {
			buff.WriteString(fmt.Sprintf("%q: %q,", k, v))
			return nil
		})
		if err == nil {
			buff.Truncate(buff.Len() - 1)
		}
		buff.WriteString("}")
	}

	buff.WriteString("}")
	return buff.Bytes(), nil
}

func hashKey(k renderPipelineKey) uint64 {
	return xxhash.Sum64(k[:])
}

func (c *RenderPipelineCache) SetVertexShader(shader platform.Function) {
	c.noCopy.check()
	if shader == c.vertexShader {
		return
	}
	c.Clear()
	c.vertexShader = shader
}

func (c *RenderPipelineCache) SetFragmentShader(shader platform.Function) {
	c.noCopy.check()
	if shader == c.fragmentShader {
		return
	}
	c.Clear()
	c.fragmentShader = shader
}

func (c *RenderPipelineCache) VertexShader() platform.Function {
	c.noCopy.check()
	return c.vertexShader
}

func (c *RenderPipelineCache) FragmentShader() platform.Function {
	c.noCopy.check()
	return c.fragmentShader
}

func (c *RenderPipelineCache) Len() int {
	c.noCopy.check()
	return len(c.cache)
}

func (c *RenderPipelineCache) shader(stage ShaderStage, desc RenderPipelineDesc) (platform.Function, error) {
	if c.factory != nil && c.factory.HasSpecializedShader(stage, desc) {
		fn, err := c.factory.SpecializedShader(stage, desc)
		if err != nil {
			return nil, debug.ErrorWrapf(ErrorShaderCompile{}, "Failed to specialize %s shader for %q: %v", stage.String(), c.label, err)
		}
		return fn, nil
	}
	if stage == ShaderStageVertex {
		return c.vertexShader, nil
	}
	return c.fragmentShader, nil
}

// RenderPipelineState returns the pipeline for desc, compiling it on a miss. A failed
// compile is returned as ErrorShaderCompile and is not cached.
func (c *RenderPipelineCache) RenderPipelineState(desc RenderPipelineDesc) (platform.RenderPipelineState, error) {
	c.noCopy.check()
	if c.vertexShader == nil {
		abort("RenderPipelineCache %q has no vertex shader", c.label)
	}
	if desc.RasterizationEnabled() && c.fragmentShader == nil {
		abort("RenderPipelineCache %q has no fragment shader and rasterization is enabled", c.label)
	}

	key := desc.key()
	if state, ok := c.cache[key]; ok {
		return state, nil
	}

	vertex, err := c.shader(ShaderStageVertex, desc)
	if err != nil {
		return nil, err
	}
	var fragment platform.Function
	if desc.RasterizationEnabled() {
		if fragment, err = c.shader(ShaderStageFragment, desc); err != nil {
			return nil, err
		}
	}

	label := c.label + "_" + toHex(hashKey(key))
	state, err := c.device.NewRenderPipelineState(label, desc.platform(vertex, fragment))
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorShaderCompile{}, "Failed to create render pipeline %s: %v", label, err)
	}
	instance.logger.VPrintf("Created render pipeline %s", label)
	c.cache[key] = state
	return state, nil
}

func (c *RenderPipelineCache) Clear() {
	c.noCopy.check()
	if len(c.cache) > 0 {
		instance.logger.VPrintf("Clearing %d pipelines from %q", len(c.cache), c.label)
	}
	clear(c.cache)
}

// computePipelineCache maps ids generated with genID to compute pipelines.
type computePipelineCache struct {
	device platform.Device
	cache  map[string]platform.ComputePipelineState
}

func newComputePipelineCache(device platform.Device) computePipelineCache {
	return computePipelineCache{device: device, cache: map[string]platform.ComputePipelineState{}}
}

func (c *computePipelineCache) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	err := mapRunFuncSorted(c.cache, func(k string, v platform.ComputePipelineState) error {
		buff.WriteString(fmt.Sprintf("%q: %q,", k, v.Label()))
		return nil
	})
	if err == nil {
		buff.Truncate(buff.Len() - 1)
	}

	buff.WriteString("}")
	return buff.Bytes(), nil
}

func (c *computePipelineCache) createOrRetrievePipeline(id string, shader func() (platform.Function, error)) (platform.ComputePipelineState, error) {
	if p, ok := c.cache[id]; ok {
		return p, nil
	}
	fn, err := shader()
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorShaderCompile{}, "Failed to load compute shader %s: %v", id, err)
	}
	p, err := c.device.NewComputePipelineState(id, fn)
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorShaderCompile{}, "Failed to create compute pipeline %s: %v", id, err)
	}
	instance.logger.VPrintf("Created compute pipeline %s", id)
	c.cache[id] = p
	return p, nil
}

func (c *computePipelineCache) clear() {
	clear(c.cache)
}
