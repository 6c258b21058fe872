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
	"math/bits"
	"time"

	"goarrg.com/gmath"
)

const (
	MaxStreamBufferQueueSize = 16
	occlusionQueryResultSize = 8
)

type Config struct {
	Label string

	// StreamBufferQueueSize is the default number of versions a StreamBuffer cycles through.
	StreamBufferQueueSize int32

	BufferPoolInitialSize uint64
	// BufferPoolAlignment must be a power of 2.
	BufferPoolAlignment  uint32
	BufferPoolMaxBuffers int32

	// VisibilityBufferSize is the size in bytes of the occlusion query result buffer,
	// each query uses 8 bytes.
	VisibilityBufferSize uint32

	// WaitTimeout bounds CommandBuffer.Finish and CommandQueue waits, 0 waits forever.
	WaitTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Label:                 "mtl",
		StreamBufferQueueSize: 2,
		BufferPoolInitialSize: 64 * 1024,
		BufferPoolAlignment:   256,
		BufferPoolMaxBuffers:  16,
		VisibilityBufferSize:  4096,
	}
}

func (c *Config) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"Label\": %q,", c.Label))
	buff.WriteString(fmt.Sprintf("\"StreamBufferQueueSize\": %d,", c.StreamBufferQueueSize))
	buff.WriteString(fmt.Sprintf("\"BufferPoolInitialSize\": %d,", c.BufferPoolInitialSize))
	buff.WriteString(fmt.Sprintf("\"BufferPoolAlignment\": %d,", c.BufferPoolAlignment))
	buff.WriteString(fmt.Sprintf("\"BufferPoolMaxBuffers\": %d,", c.BufferPoolMaxBuffers))
	buff.WriteString(fmt.Sprintf("\"VisibilityBufferSize\": %d,", c.VisibilityBufferSize))
	buff.WriteString(fmt.Sprintf("\"WaitTimeout\": %q,", c.WaitTimeout.String()))

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}

// validate fills zero fields from DefaultConfig and aborts on values that can never work.
func (c *Config) validate() {
	def := DefaultConfig()

	if c.Label == "" {
		c.Label = def.Label
	}

	if c.StreamBufferQueueSize == 0 {
		c.StreamBufferQueueSize = def.StreamBufferQueueSize
	} else if !gmath.InRange(c.StreamBufferQueueSize, 1, MaxStreamBufferQueueSize) {
		abort("Config.StreamBufferQueueSize [%d] is outside of valid range [1, %d]", c.StreamBufferQueueSize, MaxStreamBufferQueueSize)
	}

	if c.BufferPoolInitialSize == 0 {
		c.BufferPoolInitialSize = def.BufferPoolInitialSize
	}
	if c.BufferPoolAlignment == 0 {
		c.BufferPoolAlignment = def.BufferPoolAlignment
	} else if bits.OnesCount32(c.BufferPoolAlignment) != 1 {
		abort("Config.BufferPoolAlignment [%d] must be a power of 2", c.BufferPoolAlignment)
	}
	if c.BufferPoolMaxBuffers == 0 {
		c.BufferPoolMaxBuffers = def.BufferPoolMaxBuffers
	} else if c.BufferPoolMaxBuffers < 0 {
		abort("Config.BufferPoolMaxBuffers must be >= 1")
	}

	if c.VisibilityBufferSize == 0 {
		c.VisibilityBufferSize = def.VisibilityBufferSize
	} else if c.VisibilityBufferSize%occlusionQueryResultSize != 0 {
		abort("Config.VisibilityBufferSize [%d] must be a multiple of %d", c.VisibilityBufferSize, occlusionQueryResultSize)
	}

	if c.WaitTimeout < 0 {
		abort("Config.WaitTimeout must be >= 0")
	}
}
