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
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"goarrg.com/debug"
	"goarrg.com/rhi/mtl/platform"
)

type Destroyer interface {
	Destroy()
}

type destroyFunc struct {
	f func()
}

func (d destroyFunc) Destroy() {
	d.f()
}

type CommandBufferState uint32

const (
	CommandBufferStateCreated CommandBufferState = iota
	CommandBufferStateRecording
	CommandBufferStateCommitted
	CommandBufferStateCompleted
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferStateCreated:
		return "Created"
	case CommandBufferStateRecording:
		return "Recording"
	case CommandBufferStateCommitted:
		return "Committed"
	case CommandBufferStateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("Unknown: %d", uint32(s))
	}
}

/*
CommandBuffer records work for the GPU through at most one active encoder at a time.
Starting an encoder of a different kind ends the active one. Every resource bound through
an encoder is tagged with the buffer's serial.
*/
type CommandBuffer struct {
	noCopy    noCopy
	queue     *CommandQueue
	cmdBuffer platform.CommandBuffer
	label     string
	serial    uint64

	state  atomic.Uint32
	status atomic.Uint32
	done   chan struct{}

	activeEncoder commandEncoderInterface
	render        RenderCommandEncoder
	blit          BlitCommandEncoder
	compute       ComputeCommandEncoder

	destroyers []Destroyer
}

func newCommandBuffer(q *CommandQueue, cb platform.CommandBuffer, label string, serial uint64) *CommandBuffer {
	c := CommandBuffer{
		queue:     q,
		cmdBuffer: cb,
		label:     label,
		serial:    serial,
		done:      make(chan struct{}),
	}
	c.noCopy.init("CommandBuffer")
	c.render.commandEncoder.init(&c, EncoderTypeRender)
	c.blit.commandEncoder.init(&c, EncoderTypeBlit)
	c.compute.commandEncoder.init(&c, EncoderTypeCompute)
	return &c
}

func (cb *CommandBuffer) Label() string {
	cb.noCopy.check()
	return cb.label
}

// Serial is the queue serial resources used by this buffer are tagged with.
func (cb *CommandBuffer) Serial() uint64 {
	cb.noCopy.check()
	return cb.serial
}

func (cb *CommandBuffer) State() CommandBufferState {
	return CommandBufferState(cb.state.Load())
}

// Status is only meaningful once State is Completed.
func (cb *CommandBuffer) Status() platform.CommandBufferStatus {
	return platform.CommandBufferStatus(cb.status.Load())
}

// Ready returns true while commands can still be recorded.
func (cb *CommandBuffer) Ready() bool {
	s := cb.State()
	return s == CommandBufferStateCreated || s == CommandBufferStateRecording
}

func (cb *CommandBuffer) checkRecordable(op string) {
	cb.noCopy.check()
	if !cb.Ready() {
		abort("%s called on command buffer %q in state %s", op, cb.label, cb.State().String())
	}
	cb.state.CompareAndSwap(uint32(CommandBufferStateCreated), uint32(CommandBufferStateRecording))
}

// ActiveEncoderType returns EncoderTypeNone if no encoder is active.
func (cb *CommandBuffer) ActiveEncoderType() EncoderType {
	cb.noCopy.check()
	if cb.activeEncoder == nil {
		return EncoderTypeNone
	}
	return cb.activeEncoder.kind()
}

func (cb *CommandBuffer) setActiveEncoder(e commandEncoderInterface) {
	cb.checkRecordable("Begin encoder")
	if cb.activeEncoder != nil {
		if cb.activeEncoder == e {
			abort("Encoder %s is already active on command buffer %q", e.kind().String(), cb.label)
		}
		cb.activeEncoder.endEncoding()
	}
	cb.activeEncoder = e
}

func (cb *CommandBuffer) clearActiveEncoder(e commandEncoderInterface) {
	if cb.activeEncoder != e {
		abort("Ending encoder %s which is not active on command buffer %q", e.kind().String(), cb.label)
	}
	cb.activeEncoder = nil
}

// EndActiveEncoder ends the active encoder if there is one.
func (cb *CommandBuffer) EndActiveEncoder() {
	cb.noCopy.check()
	if cb.activeEncoder != nil {
		cb.activeEncoder.endEncoding()
	}
}

func (cb *CommandBuffer) setReadDependency(r GPUResource) {
	if r == nil {
		return
	}
	r.resource().SetUsedByCommandBufferWithQueueSerial(cb.serial, false)
}

func (cb *CommandBuffer) setWriteDependency(r GPUResource) {
	if r == nil {
		return
	}
	r.resource().SetUsedByCommandBufferWithQueueSerial(cb.serial, true)
}

// QueueDestroy defers the destroyers until the GPU finished executing this buffer.
func (cb *CommandBuffer) QueueDestroy(destroyers ...Destroyer) {
	cb.checkRecordable("QueueDestroy")
	cb.destroyers = append(cb.destroyers, destroyers...)
}

// QueueDestroyFunc is QueueDestroy for a plain function.
func (cb *CommandBuffer) QueueDestroyFunc(f func()) {
	cb.QueueDestroy(destroyFunc{f: f})
}

func (cb *CommandBuffer) takeDestroyers() []Destroyer {
	d := cb.destroyers
	cb.destroyers = nil
	return d
}

// Present schedules the drawable to be shown once this buffer completes.
func (cb *CommandBuffer) Present(d platform.Drawable) {
	cb.checkRecordable("Present")
	cb.EndActiveEncoder()
	cb.cmdBuffer.PresentDrawable(d)
}

// Commit ends the active encoder and submits the buffer, committing again is a no-op.
func (cb *CommandBuffer) Commit() {
	cb.noCopy.check()
	if !cb.Ready() {
		return
	}
	cb.EndActiveEncoder()
	cb.state.Store(uint32(CommandBufferStateCommitted))
	cb.queue.onCommandBufferCommitted(cb.serial)
	cb.cmdBuffer.Commit()
}

// Finish commits the buffer and waits for it to complete, bounded by Config.WaitTimeout.
func (cb *CommandBuffer) Finish() error {
	return cb.FinishContext(context.Background())
}

// FinishContext is Finish with a caller context, cancelling it returns the context's error
// and leaves the queue usable.
func (cb *CommandBuffer) FinishContext(caller context.Context) error {
	cb.noCopy.check()
	cb.Commit()

	ctx, cancel := cb.queue.boundedContext(caller)
	defer cancel()

	start := time.Now()
	select {
	case <-cb.done:
	case <-ctx.Done():
		return cb.queue.waitError(caller, start, fmt.Sprintf("command buffer %q", cb.label))
	}
	if cb.Status() == platform.CommandBufferStatusError {
		return debug.ErrorWrapf(ErrorDeviceLost{}, "Command buffer %q completed with status %s", cb.label, cb.Status().String())
	}
	cb.queue.runRetired()
	return nil
}

func (cb *CommandBuffer) onCompleted(status platform.CommandBufferStatus) {
	if cb.State() == CommandBufferStateCompleted {
		return
	}
	cb.status.Store(uint32(status))
	cb.state.Store(uint32(CommandBufferStateCompleted))
	close(cb.done)
}

func (cb *CommandBuffer) renderCommandEncoder(desc RenderPassDesc) platform.RenderCommandEncoder {
	return cb.cmdBuffer.RenderCommandEncoder(desc.platform())
}

func (cb *CommandBuffer) blitCommandEncoder() platform.BlitCommandEncoder {
	return cb.cmdBuffer.BlitCommandEncoder()
}

func (cb *CommandBuffer) computeCommandEncoder() platform.ComputeCommandEncoder {
	return cb.cmdBuffer.ComputeCommandEncoder()
}
