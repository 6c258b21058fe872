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
	"sync"
	"sync/atomic"
	"time"

	"goarrg.com/debug"
	"goarrg.com/rhi/mtl/internal/container"
	"goarrg.com/rhi/mtl/platform"
)

type serialRange struct {
	first, last uint64
}

type queueEntry struct {
	cmdBuffer *CommandBuffer
	serial    uint64
	committed bool
	completed bool
}

/*
CommandQueue hands out command buffers tagged with increasing serials and retires them in
serial order. Completion handlers may run on any goroutine, everything else is expected to
be called from the goroutine owning the Context.
*/
type CommandQueue struct {
	noCopy      noCopy
	queue       platform.CommandQueue
	properties  platform.Properties
	waitTimeout time.Duration

	mtx        sync.Mutex
	nextSerial uint64
	inFlight   container.Deque[*queueEntry]
	// closed and replaced every time completedSerial advances or the device is lost
	signal   chan struct{}
	retired  []Destroyer
	lastLost error
	// serials dropped by HandleDeviceLost, never completed
	abandoned []serialRange

	completedSerial  atomic.Uint64
	abandonedThrough atomic.Uint64
	lost             atomic.Bool
}

func newCommandQueue(device platform.Device, waitTimeout time.Duration) (*CommandQueue, error) {
	queue, err := device.NewCommandQueue()
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create command queue: %v", err)
	}
	q := CommandQueue{
		queue:       queue,
		properties:  device.Properties(),
		waitTimeout: waitTimeout,
		nextSerial:  1,
		signal:      make(chan struct{}),
	}
	q.noCopy.init("CommandQueue")
	return &q, nil
}

func (q *CommandQueue) makeCommandBuffer(label string) (*CommandBuffer, error) {
	q.noCopy.check()
	if q.lost.Load() {
		return nil, debug.ErrorWrapf(ErrorDeviceLost{}, "Failed to create command buffer %q", label)
	}
	cb, err := q.queue.NewCommandBuffer()
	if err != nil {
		return nil, debug.ErrorWrapf(ErrorAllocation{}, "Failed to create command buffer %q: %v", label, err)
	}
	cb.SetLabel(label)

	q.mtx.Lock()
	serial := q.nextSerial
	q.nextSerial++
	cmdBuffer := newCommandBuffer(q, cb, label, serial)
	q.inFlight.PushBack(&queueEntry{cmdBuffer: cmdBuffer, serial: serial})
	q.mtx.Unlock()

	cb.AddCompletedHandler(func(status platform.CommandBufferStatus) {
		q.onCommandBufferCompleted(serial, status)
	})
	return cmdBuffer, nil
}

func (q *CommandQueue) findEntryLocked(serial uint64) *queueEntry {
	if q.inFlight.Empty() {
		return nil
	}
	i := int(serial - q.inFlight.Front().serial)
	if serial < q.inFlight.Front().serial || i >= q.inFlight.Len() {
		return nil
	}
	return q.inFlight.At(i)
}

func (q *CommandQueue) onCommandBufferCommitted(serial uint64) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if e := q.findEntryLocked(serial); e != nil {
		e.committed = true
	}
}

func (q *CommandQueue) onCommandBufferCompleted(serial uint64, status platform.CommandBufferStatus) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	e := q.findEntryLocked(serial)
	if e == nil {
		// abandoned by HandleDeviceLost
		return
	}
	e.completed = true
	e.cmdBuffer.onCompleted(status)

	if status == platform.CommandBufferStatusError {
		q.lost.Store(true)
		q.lastLost = debug.ErrorWrapf(ErrorDeviceLost{}, "Command buffer %q completed with status %s", e.cmdBuffer.label, status.String())
		instance.logger.EPrintf("%v", q.lastLost)
	}

	advanced := false
	for !q.inFlight.Empty() && q.inFlight.Front().completed {
		front := q.inFlight.PopFront()
		q.retired = append(q.retired, front.cmdBuffer.takeDestroyers()...)
		q.completedSerial.Store(front.serial)
		advanced = true
	}

	if advanced || status == platform.CommandBufferStatusError {
		close(q.signal)
		q.signal = make(chan struct{})
	}
}

// runRetired runs destroyers queued on retired command buffers, it must be called from the
// goroutine owning the context.
func (q *CommandQueue) runRetired() {
	q.mtx.Lock()
	retired := q.retired
	q.retired = nil
	q.mtx.Unlock()

	if len(retired) > 0 {
		instance.logger.VPrintf("Running %d destroyers from retired command buffers", len(retired))
	}
	for _, d := range retired {
		d.Destroy()
	}
}

func (q *CommandQueue) LastCompletedSerial() uint64 {
	return q.completedSerial.Load()
}

// LastAllocatedSerial returns the serial of the most recently created command buffer.
func (q *CommandQueue) LastAllocatedSerial() uint64 {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return q.nextSerial - 1
}

// IsSerialCompleted returns true once the command buffer with serial retired successfully,
// serials abandoned after a device loss never complete.
func (q *CommandQueue) IsSerialCompleted(serial uint64) bool {
	return serial <= q.completedSerial.Load() && !q.IsSerialAbandoned(serial)
}

func (q *CommandQueue) IsSerialAbandoned(serial uint64) bool {
	if serial == 0 || serial > q.abandonedThrough.Load() {
		return false
	}
	q.mtx.Lock()
	defer q.mtx.Unlock()
	for _, r := range q.abandoned {
		if serial >= r.first && serial <= r.last {
			return true
		}
	}
	return false
}

// IsResourceBeingUsedByGPU treats resources last used by abandoned command buffers as idle.
func (q *CommandQueue) IsResourceBeingUsedByGPU(r GPUResource) bool {
	serial := r.resource().LastQueueSerial()
	return serial > q.completedSerial.Load() && serial > q.abandonedThrough.Load()
}

func (q *CommandQueue) IsDeviceLost() bool {
	return q.lost.Load()
}

// markLost puts the queue in the lost state and wakes every waiter.
func (q *CommandQueue) markLost(err error) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.lost.Store(true)
	q.lastLost = err
	close(q.signal)
	q.signal = make(chan struct{})
	instance.logger.EPrintf("%v", err)
	return err
}

func (q *CommandQueue) deviceLostError() error {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if q.lastLost != nil {
		return q.lastLost
	}
	return debug.ErrorWrapf(ErrorDeviceLost{}, "Command queue is lost")
}

func (q *CommandQueue) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.waitTimeout > 0 {
		return context.WithTimeout(ctx, q.waitTimeout)
	}
	return context.WithCancel(ctx)
}

// waitError is called once a bounded wait ended early. Cancellation by the caller is
// returned as is, only Config.WaitTimeout expiring marks the device lost.
func (q *CommandQueue) waitError(caller context.Context, start time.Time, what string) error {
	if err := caller.Err(); err != nil {
		return debug.ErrorWrapf(err, "Stopped after %v waiting for %s", time.Since(start), what)
	}
	return q.markLost(debug.ErrorWrapf(ErrorDeviceLost{}, "Timed out after %v waiting for %s", time.Since(start), what))
}

func (q *CommandQueue) abandonedError(serial uint64) error {
	return debug.ErrorWrapf(ErrorDeviceLost{}, "Serial [%d] was abandoned after device loss", serial)
}

// waitForSerial blocks until every command buffer up to serial completed.
func (q *CommandQueue) waitForSerial(caller context.Context, serial uint64) error {
	ctx, cancel := q.boundedContext(caller)
	defer cancel()

	start := time.Now()
	stalled := false
	for {
		if q.IsSerialCompleted(serial) {
			if stalled {
				instance.logger.VPrintf("Waited %v for serial [%d]", time.Since(start), serial)
			}
			return nil
		}
		if q.IsSerialAbandoned(serial) {
			return q.abandonedError(serial)
		}
		if q.lost.Load() {
			return q.deviceLostError()
		}

		q.mtx.Lock()
		if serial >= q.nextSerial {
			q.mtx.Unlock()
			abort("Waiting for serial [%d] which was never allocated, last allocated [%d]", serial, q.nextSerial-1)
		}
		for i := 0; i < q.inFlight.Len(); i++ {
			e := q.inFlight.At(i)
			if e.serial > serial {
				break
			}
			if !e.committed {
				q.mtx.Unlock()
				abort("Waiting for serial [%d] requires command buffer %q [%d] which was never committed", serial, e.cmdBuffer.label, e.serial)
			}
		}
		signal := q.signal
		q.mtx.Unlock()

		stalled = true
		select {
		case <-signal:
		case <-ctx.Done():
			return q.waitError(caller, start, fmt.Sprintf("serial [%d]", serial))
		}
	}
}

// EnsureResourceReadyForCPU blocks until the GPU is done with r. Every command buffer that
// referenced r must already be committed.
func (q *CommandQueue) EnsureResourceReadyForCPU(r GPUResource) error {
	q.noCopy.check()
	if !q.IsResourceBeingUsedByGPU(r) {
		return nil
	}
	return q.waitForSerial(context.Background(), r.resource().LastQueueSerial())
}

// FinishAllCommands waits for every committed command buffer.
func (q *CommandQueue) FinishAllCommands() error {
	q.noCopy.check()
	q.mtx.Lock()
	var target uint64
	for i := 0; i < q.inFlight.Len(); i++ {
		if e := q.inFlight.At(i); e.committed {
			target = e.serial
		} else {
			break
		}
	}
	q.mtx.Unlock()

	err := q.waitForSerial(context.Background(), target)
	q.runRetired()
	return err
}

// abandon drops every in flight command buffer, their completion handlers become no-ops
// and their serials never report as completed.
func (q *CommandQueue) abandon() {
	q.mtx.Lock()
	instance.logger.WPrintf("Device lost, abandoning %d command buffers", q.inFlight.Len())
	if !q.inFlight.Empty() {
		q.abandoned = append(q.abandoned, serialRange{first: q.inFlight.Front().serial, last: q.inFlight.Back().serial})
	}
	for !q.inFlight.Empty() {
		e := q.inFlight.PopFront()
		q.retired = append(q.retired, e.cmdBuffer.takeDestroyers()...)
		e.cmdBuffer.onCompleted(platform.CommandBufferStatusError)
	}
	q.abandonedThrough.Store(q.nextSerial - 1)
	q.lost.Store(false)
	q.lastLost = nil
	close(q.signal)
	q.signal = make(chan struct{})
	q.mtx.Unlock()

	q.runRetired()
}

func (q *CommandQueue) destroy() {
	q.noCopy.check()
	q.runRetired()
	q.noCopy.close()
}

// QueueWaiter waits for a command buffer serial to retire.
type QueueWaiter struct {
	noCopy noCopy
	queue  *CommandQueue
	serial uint64
}

func (q *CommandQueue) WaiterForSerial(serial uint64) *QueueWaiter {
	q.noCopy.check()
	w := QueueWaiter{queue: q, serial: serial}
	w.noCopy.init("QueueWaiter")
	return &w
}

func (w *QueueWaiter) Poll() bool {
	w.noCopy.check()
	return w.queue.IsSerialCompleted(w.serial)
}

func (w *QueueWaiter) Wait() error {
	return w.WaitContext(context.Background())
}

func (w *QueueWaiter) WaitContext(ctx context.Context) error {
	w.noCopy.check()
	return w.queue.waitForSerial(ctx, w.serial)
}

func (w *QueueWaiter) Value() uint64 {
	w.noCopy.check()
	return w.serial
}
