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
	"goarrg.com/gmath"
)

/*
StreamBuffer is a ring of equally sized buffers, every commit moves to the next version so
the CPU never writes a buffer the GPU may still be reading. With a shadow copy writes go to
CPU memory and are uploaded on Commit, without one Data maps the next version directly.
A queue size of 1 makes every commit wait for the GPU.
*/
type StreamBuffer struct {
	noCopy    noCopy
	label     string
	useShadow bool

	buffers []*Buffer
	// last committed version
	current int
	size    int
	shadow  []byte
	// version mapped by Data, published on Commit
	mapped  int
	pending bool
}

func NewStreamBuffer(label string, useShadow bool) *StreamBuffer {
	s := StreamBuffer{label: label, useShadow: useShadow}
	s.noCopy.init("StreamBuffer")
	return &s
}

// Initialize (re)creates every version with bufferSize bytes, a queueSize of 0 uses
// Config.StreamBufferQueueSize. data may be nil.
func (s *StreamBuffer) Initialize(ctx *Context, bufferSize, queueSize int, data []byte) error {
	s.noCopy.check()
	if queueSize == 0 {
		queueSize = int(ctx.config.StreamBufferQueueSize)
	}
	if !gmath.InRange(queueSize, 1, MaxStreamBufferQueueSize) {
		abort("StreamBuffer %q queue size [%d] is outside of valid range [1, %d]", s.label, queueSize, MaxStreamBufferQueueSize)
	}
	if len(data) > bufferSize {
		abort("StreamBuffer %q initial data of [%d] bytes does not fit in [%d] bytes", s.label, len(data), bufferSize)
	}
	s.release(ctx)

	buffers := make([]*Buffer, 0, queueSize)
	for i := 0; i < queueSize; i++ {
		b, err := MakeBuffer(ctx, genID(s.label, i), bufferSize, data)
		if err != nil {
			for _, b := range buffers {
				b.Destroy()
			}
			return err
		}
		buffers = append(buffers, b)
	}

	s.buffers = buffers
	s.current = 0
	s.size = bufferSize
	if s.useShadow {
		s.shadow = make([]byte, bufferSize)
		copy(s.shadow, data)
	}
	instance.logger.VPrintf("Initialized StreamBuffer %q with [%d] versions of [%d] bytes", s.label, queueSize, bufferSize)
	return nil
}

func (s *StreamBuffer) Valid() bool {
	return s.noCopy.valid() && len(s.buffers) > 0
}

func (s *StreamBuffer) Size() int {
	s.noCopy.check()
	return s.size
}

func (s *StreamBuffer) QueueSize() int {
	s.noCopy.check()
	return len(s.buffers)
}

func (s *StreamBuffer) UseShadowCopy() bool {
	s.noCopy.check()
	return s.useShadow
}

// CurrentBuffer returns the most recently committed version.
func (s *StreamBuffer) CurrentBuffer() *Buffer {
	s.noCopy.check()
	s.checkInitialized("CurrentBuffer")
	return s.buffers[s.current]
}

func (s *StreamBuffer) checkInitialized(op string) {
	if len(s.buffers) == 0 {
		abort("StreamBuffer %q used by %s before Initialize", s.label, op)
	}
}

// prepareBuffer waits until the GPU is done with the version after the committed one and
// returns its index.
func (s *StreamBuffer) prepareBuffer(ctx *Context) (int, error) {
	next := (s.current + 1) % len(s.buffers)
	b := s.buffers[next]
	if ctx.IsResourceBeingUsedByGPU(b) {
		instance.logger.VPrintf("StreamBuffer %q waiting for version [%d]", s.label, next)
		if err := ctx.EnsureResourceReadyForCPU(b); err != nil {
			return 0, err
		}
	}
	return next, nil
}

// Data returns writable memory holding the current contents. Writes become visible to the
// GPU on the next Commit.
func (s *StreamBuffer) Data(ctx *Context) ([]byte, error) {
	s.noCopy.check()
	s.checkInitialized("Data")
	if s.useShadow {
		return s.shadow, nil
	}
	if s.pending {
		return s.buffers[s.mapped].Platform().Contents(), nil
	}

	next, err := s.prepareBuffer(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.buffers[next].MapWithOpt(ctx, false, true)
	if err != nil {
		return nil, err
	}
	if next != s.current {
		copy(data, s.buffers[s.current].Platform().Contents())
	}
	s.mapped = next
	s.pending = true
	return data, nil
}

// Commit publishes the writes made through Data and returns the version to bind.
func (s *StreamBuffer) Commit(ctx *Context) (*Buffer, error) {
	s.noCopy.check()
	s.checkInitialized("Commit")
	if s.useShadow {
		next, err := s.prepareBuffer(ctx)
		if err != nil {
			return nil, err
		}
		s.buffers[next].HostWrite(0, s.shadow)
		s.current = next
		return s.buffers[next], nil
	}
	if s.pending {
		s.buffers[s.mapped].Unmap(ctx)
		s.current = s.mapped
		s.pending = false
	}
	return s.buffers[s.current], nil
}

// CommitData replaces the start of the buffer with data and commits it.
func (s *StreamBuffer) CommitData(ctx *Context, data []byte) (*Buffer, error) {
	s.noCopy.check()
	s.checkInitialized("CommitData")
	if len(data) > s.size {
		abort("StreamBuffer %q CommitData of [%d] bytes does not fit in [%d] bytes", s.label, len(data), s.size)
	}
	dst, err := s.Data(ctx)
	if err != nil {
		return nil, err
	}
	copy(dst, data)
	return s.Commit(ctx)
}

func (s *StreamBuffer) release(ctx *Context) {
	if s.pending {
		s.buffers[s.mapped].Unmap(ctx)
		s.pending = false
	}
	for _, b := range s.buffers {
		ctx.DestroyWhenUnused(b, b)
	}
	s.buffers = nil
	s.shadow = nil
	s.size = 0
}

// Destroy releases every version, versions still used by the GPU are destroyed once their
// command buffer retires.
func (s *StreamBuffer) Destroy(ctx *Context) {
	s.noCopy.check()
	s.release(ctx)
	s.noCopy.close()
}
