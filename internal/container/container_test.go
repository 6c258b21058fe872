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

package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack(t *testing.T) {
	s := Stack[int]{}
	assert.True(t, s.Empty())

	for i := 0; i < 4; i++ {
		s.Push(i)
	}
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 3, s.Peek())
	assert.Equal(t, []int{0, 1, 2, 3}, s.Data())

	v, ok := s.PopFunc(func(i int) bool { return i%2 == 0 })
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, []int{0, 1, 3}, s.Data())

	_, ok = s.PopFunc(func(i int) bool { return i > 10 })
	assert.False(t, ok)

	assert.Equal(t, 3, s.Pop())
	assert.Equal(t, 1, s.Pop())
	s.Clear()
	assert.True(t, s.Empty())
}

func TestDequeWrapAround(t *testing.T) {
	d := Deque[int]{}
	for i := 0; i < 6; i++ {
		d.PushBack(i)
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, i, d.PopFront())
	}
	// forces the ring to wrap then grow while wrapped
	for i := 6; i < 20; i++ {
		d.PushBack(i)
	}
	require.Equal(t, 16, d.Len())
	assert.Equal(t, 4, d.Front())
	assert.Equal(t, 19, d.Back())
	for i := 0; i < d.Len(); i++ {
		assert.Equal(t, 4+i, d.At(i))
	}
	for i := 4; i < 20; i++ {
		assert.Equal(t, i, d.PopFront())
	}
	assert.True(t, d.Empty())
	assert.Panics(t, func() { d.PopFront() })
}
