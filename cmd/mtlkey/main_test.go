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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goarrg.com/rhi/mtl"
	"goarrg.com/rhi/mtl/platform"
)

func TestDecodeDescKeepsDefaults(t *testing.T) {
	got, err := decodeDesc(descKindDepthStencil, []byte(`{"DepthWriteEnabled": false}`))
	require.NoError(t, err)

	want := mtl.NewDepthStencilDesc()
	want.DepthWriteEnabled = false
	assert.Equal(t, want, got.Desc)
	assert.Equal(t, descKindDepthStencil, got.Kind)
	assert.Len(t, got.Hash, 18)
}

func TestDecodeDescHashMatchesCache(t *testing.T) {
	got, err := decodeDesc(descKindRender, []byte(`{"AlphaToCoverageEnabled": true}`))
	require.NoError(t, err)

	want := mtl.NewRenderPipelineDesc()
	want.AlphaToCoverageEnabled = true
	assert.True(t, want.Equal(got.Desc.(mtl.RenderPipelineDesc)))

	other, err := decodeDesc(descKindRender, []byte(`{}`))
	require.NoError(t, err)
	assert.NotEqual(t, got.Hash, other.Hash)
}

func TestDecodeDescSampler(t *testing.T) {
	got, err := decodeDesc(descKindSampler, []byte(`{"MinFilter": 1}`))
	require.NoError(t, err)
	assert.Equal(t, platform.SamplerMinMagFilterLinear, got.Desc.(mtl.SamplerDesc).MinFilter)

	_, err = decodeDesc(descKindSampler, []byte(`{`))
	assert.Error(t, err)
}

func TestDescKindText(t *testing.T) {
	for _, k := range []descKind{descKindRender, descKindDepthStencil, descKindSampler} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var decoded descKind
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, k, decoded)
	}
	var k descKind
	assert.Error(t, k.UnmarshalText([]byte("compute")))
}
