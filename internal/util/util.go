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

package util

import (
	"unsafe"

	"goarrg.com"
	"goarrg.com/debug"
	"golang.org/x/exp/constraints"
)

type platform struct{}

func (platform) Abort()                           { panic("Fatal Error") }
func (platform) AbortPopup(f string, args ...any) { panic("Fatal Error") }

var instance = struct {
	platform goarrg.PlatformInterface
	logger   *debug.Logger
}{
	platform: platform{},
	logger:   debug.NewLogger("mtl", "internal", "util"),
}

func abort(fmt string, args ...any) {
	instance.logger.EPrintf(fmt, args...)
	instance.platform.Abort()
}

func Init(platform goarrg.PlatformInterface) {
	instance.platform = platform
}

// HostWriter is anything backed by CPU visible memory.
type HostWriter interface {
	HostWrite(offset uintptr, data []byte)
}

// Bytes returns a view of data's memory, it is only valid as long as data is.
func Bytes[T comparable](data *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), unsafe.Sizeof(*data))
}

// SliceBytes returns a view of the slice's backing array.
func SliceBytes[T comparable](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), uintptr(len(data))*unsafe.Sizeof(data[0]))
}

func HostWrite[T comparable](target HostWriter, offset uintptr, data T) uintptr {
	b := Bytes(&data)
	target.HostWrite(offset, b)
	return uintptr(len(b))
}

func HostWriteSlice[T comparable](target HostWriter, offset uintptr, data []T) uintptr {
	b := SliceBytes(data)
	target.HostWrite(offset, b)
	return uintptr(len(b))
}

// CopyAt copies src into dst at offset, aborting instead of silently truncating.
func CopyAt(dst []byte, offset int, src []byte) int {
	if offset < 0 || offset+len(src) > len(dst) {
		abort("CopyAt(%d, len(src): %d) will overflow destination of size %d", offset, len(src), len(dst))
	}
	return copy(dst[offset:], src)
}

func AlignUp[N constraints.Integer](v, alignment N) N {
	if alignment <= 1 {
		return v
	}
	return ((v + alignment - 1) / alignment) * alignment
}
