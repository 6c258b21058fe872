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

import "goarrg.com/debug"

// noCopy guards objects that hold platform handles or are referenced by pointer from
// other objects, a copied or destroyed value aborts on the next use.
type noCopy struct {
	addr *noCopy
	what string
}

func (n *noCopy) init(what string) {
	if n.addr != nil {
		abort("%s: init called on non zero value", what)
	}
	n.addr = n
	n.what = what
}

func (n *noCopy) valid() bool {
	return n.addr == n
}

func (n *noCopy) check() {
	if n.addr != n {
		abort("Illegal copy by value or use of zero/dead %s: \n%s", n.what, debug.StackTrace(0))
	}
}

func (n *noCopy) close() {
	n.addr = nil
}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
