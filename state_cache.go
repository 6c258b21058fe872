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

	"goarrg.com/debug"
	"goarrg.com/rhi/mtl/platform"
)

/*
StateCache deduplicates depth stencil and sampler state objects by descriptor. It is owned
by a single Context and is not safe for concurrent use.
*/
type StateCache struct {
	noCopy noCopy
	device platform.Device

	nullDepthStencilState platform.DepthStencilState
	nullSamplerState      platform.SamplerState

	depthStencilStates map[uint64]platform.DepthStencilState
	samplerStates      map[uint64]platform.SamplerState
}

func newStateCache(device platform.Device) *StateCache {
	c := StateCache{
		device:             device,
		depthStencilStates: map[uint64]platform.DepthStencilState{},
		samplerStates:      map[uint64]platform.SamplerState{},
	}
	c.noCopy.init("StateCache")
	return &c
}

func (c *StateCache) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	for _, m := range []struct {
		name string
		m    map[uint64]string
	}{
		{"depthStencilStates", labels(c.depthStencilStates)},
		{"samplerStates", labels(c.samplerStates)},
	} {
		buff.WriteString(fmt.Sprintf("%q: {", m.name))
		err := mapRunFuncSorted(m.m, func(k uint64, v string) error {
			buff.WriteString(fmt.Sprintf("%q: %q,", toHex(k), v))
			return nil
		})
		if err == nil {
			buff.Truncate(buff.Len() - 1)
		}
		buff.WriteString("},")
	}

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}

func labels[M ~map[K]V, K comparable, V interface{ Label() string }](m M) map[K]string {
	ret := make(map[K]string, len(m))
	for k, v := range m {
		ret[k] = v.Label()
	}
	return ret
}

// DepthStencilState returns the state object for desc, creating it on the first request.
func (c *StateCache) DepthStencilState(desc DepthStencilDesc) (platform.DepthStencilState, error) {
	c.noCopy.check()
	key := desc.key()
	if state, ok := c.depthStencilStates[key]; ok {
		return state, nil
	}

	label := "depthStencilState_" + toHex(key)
	state, err := c.device.NewDepthStencilState(label, desc.platform())
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create %s: %v", label, err)
	}
	instance.logger.VPrintf("Created %s", label)
	c.depthStencilStates[key] = state
	return state, nil
}

// NullDepthStencilState passes every fragment and writes nothing.
func (c *StateCache) NullDepthStencilState() (platform.DepthStencilState, error) {
	c.noCopy.check()
	if c.nullDepthStencilState == nil {
		desc := NewDepthStencilDesc()
		desc.DepthWriteEnabled = false
		state, err := c.DepthStencilState(desc)
		if err != nil {
			return nil, err
		}
		c.nullDepthStencilState = state
	}
	return c.nullDepthStencilState, nil
}

func (c *StateCache) SamplerState(desc SamplerDesc) (platform.SamplerState, error) {
	c.noCopy.check()
	key := desc.key()
	if state, ok := c.samplerStates[key]; ok {
		return state, nil
	}

	label := "samplerState_" + toHex(key)
	state, err := c.device.NewSamplerState(label, desc.platform())
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create %s: %v", label, err)
	}
	instance.logger.VPrintf("Created %s", label)
	c.samplerStates[key] = state
	return state, nil
}

// NullSamplerState is a reset SamplerDesc's state, bound to unused slots.
func (c *StateCache) NullSamplerState() (platform.SamplerState, error) {
	c.noCopy.check()
	if c.nullSamplerState == nil {
		desc := SamplerDesc{}
		desc.Reset()
		state, err := c.SamplerState(desc)
		if err != nil {
			return nil, err
		}
		c.nullSamplerState = state
	}
	return c.nullSamplerState, nil
}

func (c *StateCache) NumDepthStencilStates() int {
	c.noCopy.check()
	return len(c.depthStencilStates)
}

func (c *StateCache) NumSamplerStates() int {
	c.noCopy.check()
	return len(c.samplerStates)
}

// Clear drops every cached object, later requests create new ones.
func (c *StateCache) Clear() {
	c.noCopy.check()
	c.nullDepthStencilState = nil
	c.nullSamplerState = nil
	clear(c.depthStencilStates)
	clear(c.samplerStates)
}
