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

// Deque is a growable ring buffer, the zero value is ready to use.
type Deque[E any] struct {
	data  []E
	front int
	len   int
}

func (d *Deque[E]) Len() int {
	return d.len
}

func (d *Deque[E]) Empty() bool {
	return d.len == 0
}

func (d *Deque[E]) grow() {
	n := max(2*len(d.data), 8)
	data := make([]E, n)
	for i := 0; i < d.len; i++ {
		data[i] = d.data[(d.front+i)%len(d.data)]
	}
	d.data = data
	d.front = 0
}

func (d *Deque[E]) PushBack(e E) {
	if d.len == len(d.data) {
		d.grow()
	}
	d.data[(d.front+d.len)%len(d.data)] = e
	d.len++
}

func (d *Deque[E]) Front() E {
	if d.len == 0 {
		panic("Front called on empty Deque")
	}
	return d.data[d.front]
}

func (d *Deque[E]) Back() E {
	if d.len == 0 {
		panic("Back called on empty Deque")
	}
	return d.data[(d.front+d.len-1)%len(d.data)]
}

// At returns the i'th element counting from the front.
func (d *Deque[E]) At(i int) E {
	if i < 0 || i >= d.len {
		panic("Deque index out of range")
	}
	return d.data[(d.front+i)%len(d.data)]
}

func (d *Deque[E]) PopFront() E {
	if d.len == 0 {
		panic("PopFront called on empty Deque")
	}
	var zero E
	e := d.data[d.front]
	d.data[d.front] = zero
	d.front = (d.front + 1) % len(d.data)
	d.len--
	return e
}

func (d *Deque[E]) Clear() {
	clear(d.data)
	d.front = 0
	d.len = 0
}
