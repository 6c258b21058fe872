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

package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"goarrg.com/gmath"
)

type VendorID uint32

const (
	VendorApple  VendorID = 0x106b
	VendorAMD    VendorID = 0x1002
	VendorNVIDIA VendorID = 0x10de
	VendorIntel  VendorID = 0x8086
)

func (id VendorID) String() string {
	switch id {
	case VendorApple:
		return "Apple"
	case VendorAMD:
		return "AMD"
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorIntel:
		return "Intel"
	default:
		return fmt.Sprintf("Unknown: 0x%04X", uint32(id))
	}
}

type (
	Limits struct {
		MaxBufferLength          uint64
		MaxTextureDimension2D    int32
		MaxTextureDimension3D    int32
		MaxTextureArrayLayers    int32
		MaxSamplerAnisotropy     int32
		MaxColorRenderTargets    int32
		MaxVertexBuffers         int32
		BufferOffsetAlignment    uint32
		MaxVisibilityQueryOffset uint32
		Compute                  struct {
			MaxThreadsPerThreadgroup      gmath.Extent3u32
			MaxTotalThreadsPerThreadgroup uint32
			MaxThreadgroupsPerGrid        gmath.Extent3u32
		}
	}
	Features struct {
		NonUniformThreadgroups   bool
		BaseVertexInstanceDraw   bool
		ManagedStorage           bool
		DepthClipMode            bool
		Depth24Stencil8          bool
		CountingVisibilityResult bool
	}
	Properties struct {
		VendorID VendorID
		DeviceID uint32
		Limits   Limits
		Features Features
	}
)

func (p *Properties) MarshalJSON() ([]byte, error) {
	buff := bytes.Buffer{}
	buff.WriteString("{")

	buff.WriteString(fmt.Sprintf("\"VendorID\": %q,", p.VendorID.String()))
	buff.WriteString(fmt.Sprintf("\"DeviceID\": %d,", p.DeviceID))

	for _, field := range []struct {
		name  string
		value any
	}{
		{"Limits", p.Limits},
		{"Features", p.Features},
	} {
		data, err := json.Marshal(field.value)
		if err != nil {
			return nil, err
		}
		buff.WriteString(fmt.Sprintf("%q: %s,", field.name, strings.TrimSpace(string(data))))
	}

	buff.Truncate(buff.Len() - 1)
	buff.WriteString("}")
	return buff.Bytes(), nil
}
