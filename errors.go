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

// ErrorAllocation is returned when the device failed to create a buffer, texture or state object.
type ErrorAllocation struct{}

func (ErrorAllocation) Is(target error) bool {
	_, ok := target.(ErrorAllocation)
	return ok
}

func (ErrorAllocation) Error() string {
	return "Allocation Failed"
}

// ErrorShaderCompile is returned when a pipeline could not be built from its shaders,
// the failure is not cached so the next request retries.
type ErrorShaderCompile struct{}

func (ErrorShaderCompile) Is(target error) bool {
	_, ok := target.(ErrorShaderCompile)
	return ok
}

func (ErrorShaderCompile) Error() string {
	return "Shader Compile Failed"
}

// ErrorDeviceLost is returned once a command buffer completed with an error status or a
// bounded wait expired. The Context is unusable until Context.HandleDeviceLost.
type ErrorDeviceLost struct{}

func (ErrorDeviceLost) Is(target error) bool {
	_, ok := target.(ErrorDeviceLost)
	return ok
}

func (ErrorDeviceLost) Error() string {
	return "Device Lost"
}
