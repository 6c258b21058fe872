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

/*
Package fakegpu is an in memory implementation of the platform interfaces that records
every command it is given. Command buffers complete only when told to, or right on commit
with AutoComplete, which lets tests drive GPU progress deterministically.
*/
package fakegpu

import (
	"sync"

	"goarrg.com/debug"
	"goarrg.com/gmath"
	"goarrg.com/rhi/mtl/platform"
)

// DefaultProperties describes an Apple silicon class device.
func DefaultProperties() platform.Properties {
	p := platform.Properties{
		VendorID: platform.VendorApple,
		DeviceID: 1,
	}
	p.Limits.MaxBufferLength = 1 << 30
	p.Limits.MaxTextureDimension2D = 16384
	p.Limits.MaxTextureDimension3D = 2048
	p.Limits.MaxTextureArrayLayers = 2048
	p.Limits.MaxSamplerAnisotropy = 16
	p.Limits.MaxColorRenderTargets = 8
	p.Limits.MaxVertexBuffers = 31
	p.Limits.BufferOffsetAlignment = 4
	p.Limits.MaxVisibilityQueryOffset = 65528
	p.Limits.Compute.MaxThreadsPerThreadgroup = gmath.Extent3u32{X: 1024, Y: 1024, Z: 1024}
	p.Limits.Compute.MaxTotalThreadsPerThreadgroup = 1024
	p.Limits.Compute.MaxThreadgroupsPerGrid = gmath.Extent3u32{X: 65535, Y: 65535, Z: 65535}
	p.Features = platform.Features{
		NonUniformThreadgroups:   true,
		BaseVertexInstanceDraw:   true,
		ManagedStorage:           true,
		DepthClipMode:            true,
		Depth24Stencil8:          true,
		CountingVisibilityResult: true,
	}
	return p
}

/*
Device counts every object it creates and can be told to fail the next call of a given
method with Fail. It is safe for concurrent use.
*/
type Device struct {
	mtx        sync.Mutex
	name       string
	properties platform.Properties
	calls      map[string]int
	failures   map[string]error
	queues     []*CommandQueue
}

var _ platform.Device = (*Device)(nil)

func NewDevice(properties platform.Properties) *Device {
	return &Device{
		name:       "fakegpu",
		properties: properties,
		calls:      map[string]int{},
		failures:   map[string]error{},
	}
}

// Fail makes the next call to method return err.
func (d *Device) Fail(method string, err error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.failures[method] = err
}

// Calls returns how many times method was called, including failed calls.
func (d *Device) Calls(method string) int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.calls[method]
}

func (d *Device) record(method string) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.calls[method]++
	if err, ok := d.failures[method]; ok {
		delete(d.failures, method)
		return err
	}
	return nil
}

// Queue returns the most recently created command queue.
func (d *Device) Queue() *CommandQueue {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if len(d.queues) == 0 {
		return nil
	}
	return d.queues[len(d.queues)-1]
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Properties() platform.Properties {
	return d.properties
}

func (d *Device) NewCommandQueue() (platform.CommandQueue, error) {
	if err := d.record("NewCommandQueue"); err != nil {
		return nil, err
	}
	q := &CommandQueue{device: d}
	d.mtx.Lock()
	d.queues = append(d.queues, q)
	d.mtx.Unlock()
	return q, nil
}

func (d *Device) NewBuffer(label string, length int, storage platform.StorageMode) (platform.Buffer, error) {
	if err := d.record("NewBuffer"); err != nil {
		return nil, err
	}
	return &Buffer{Label: label, storage: storage, data: make([]byte, length)}, nil
}

func (d *Device) NewTexture(label string, desc platform.TextureDescriptor) (platform.Texture, error) {
	if err := d.record("NewTexture"); err != nil {
		return nil, err
	}
	return NewTexture(label, desc), nil
}

func (d *Device) NewDepthStencilState(label string, desc platform.DepthStencilDescriptor) (platform.DepthStencilState, error) {
	if err := d.record("NewDepthStencilState"); err != nil {
		return nil, err
	}
	return &DepthStencilState{label: label, Desc: desc}, nil
}

func (d *Device) NewSamplerState(label string, desc platform.SamplerDescriptor) (platform.SamplerState, error) {
	if err := d.record("NewSamplerState"); err != nil {
		return nil, err
	}
	return &SamplerState{label: label, Desc: desc}, nil
}

func (d *Device) NewRenderPipelineState(label string, desc platform.RenderPipelineDescriptor) (platform.RenderPipelineState, error) {
	if err := d.record("NewRenderPipelineState"); err != nil {
		return nil, err
	}
	return &RenderPipelineState{label: label, Desc: desc}, nil
}

func (d *Device) NewComputePipelineState(label string, fn platform.Function) (platform.ComputePipelineState, error) {
	if err := d.record("NewComputePipelineState"); err != nil {
		return nil, err
	}
	return &ComputePipelineState{label: label, Function: fn, maxThreads: d.properties.Limits.Compute.MaxTotalThreadsPerThreadgroup, width: 32}, nil
}

type DepthStencilState struct {
	label string
	Desc  platform.DepthStencilDescriptor
}

func (s *DepthStencilState) Label() string { return s.label }

type SamplerState struct {
	label string
	Desc  platform.SamplerDescriptor
}

func (s *SamplerState) Label() string { return s.label }

type RenderPipelineState struct {
	label string
	Desc  platform.RenderPipelineDescriptor
}

func (s *RenderPipelineState) Label() string { return s.label }

type ComputePipelineState struct {
	label      string
	Function   platform.Function
	maxThreads uint32
	width      uint32
}

func (s *ComputePipelineState) Label() string                         { return s.label }
func (s *ComputePipelineState) MaxTotalThreadsPerThreadgroup() uint32 { return s.maxThreads }
func (s *ComputePipelineState) ThreadExecutionWidth() uint32          { return s.width }

/*
Library resolves every function name unless it was marked missing, each call returns a
new Function carrying the requested constants.
*/
type Library struct {
	mtx     sync.Mutex
	missing map[string]bool
	calls   map[string]int
}

var _ platform.Library = (*Library)(nil)

func NewLibrary() *Library {
	return &Library{missing: map[string]bool{}, calls: map[string]int{}}
}

func (l *Library) SetMissing(name string, missing bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.missing[name] = missing
}

func (l *Library) Calls(name string) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.calls[name]
}

func (l *Library) NewFunction(name string, constants platform.FunctionConstants) (platform.Function, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.calls[name]++
	if l.missing[name] {
		return nil, debug.Errorf("Function %q not found in library", name)
	}
	c := make(platform.FunctionConstants, len(constants))
	for k, v := range constants {
		c[k] = v
	}
	return &Function{name: name, Constants: c}, nil
}

type Function struct {
	name      string
	Constants platform.FunctionConstants
}

func (f *Function) Name() string { return f.name }

// NewFunction creates a standalone function, for shaders not served by a Library.
func NewFunction(name string) *Function {
	return &Function{name: name}
}
