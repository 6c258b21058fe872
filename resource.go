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

import "sync/atomic"

type usageRef struct {
	lastQueueSerial atomic.Uint64
	cpuReadDirty    atomic.Bool
}

/*
Resource tracks the last command buffer that referenced a GPU object. It is safe to
update from the encoding goroutine while completion handlers read the queue's serial,
views created from a Texture share their parent's usage.
*/
type Resource struct {
	usage *usageRef
}

// GPUResource is implemented by every type embedding Resource.
type GPUResource interface {
	resource() *Resource
}

func newResource() Resource {
	return Resource{usage: &usageRef{}}
}

func (r *Resource) resource() *Resource {
	return r
}

// SetUsedByCommandBufferWithQueueSerial records a use by the command buffer with the
// given serial, the stored serial never decreases.
func (r *Resource) SetUsedByCommandBufferWithQueueSerial(serial uint64, writing bool) {
	for {
		old := r.usage.lastQueueSerial.Load()
		if serial <= old || r.usage.lastQueueSerial.CompareAndSwap(old, serial) {
			break
		}
	}
	if writing {
		r.usage.cpuReadDirty.Store(true)
	}
}

func (r *Resource) LastQueueSerial() uint64 {
	return r.usage.lastQueueSerial.Load()
}

// IsBeingUsedByGPU returns true if a command buffer that has not yet completed references r.
func (r *Resource) IsBeingUsedByGPU(ctx *Context) bool {
	return ctx.queue.IsResourceBeingUsedByGPU(r)
}

// IsCPUReadMemDirty returns true if the GPU may have written to r since the CPU last
// synchronized its copy.
func (r *Resource) IsCPUReadMemDirty() bool {
	return r.usage.cpuReadDirty.Load()
}

func (r *Resource) ResetCPUReadMemDirty() {
	r.usage.cpuReadDirty.Store(false)
}

// shareUsage makes r track the same usage as other.
func (r *Resource) shareUsage(other *Resource) {
	r.usage = other.usage
}
