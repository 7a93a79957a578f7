// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"context"
	"testing"

	"github.com/gogpu/naga/spirv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderpipe/target"
)

const trianglePipeline = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
    var out: VertexOutput;
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.5),
        vec2<f32>(-0.5, -0.5),
        vec2<f32>(0.5, -0.5)
    );
    out.position = vec4<f32>(pos[idx], 0.0, 1.0);
    out.color = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

const computeOnly = `
@compute @workgroup_size(64, 1, 1)
fn cs_main(@builtin(global_invocation_id) gid: vec3<u32>) {
    var x: f32 = f32(gid.x);
}
`

func TestNagaLower(t *testing.T) {
	ctx := context.Background()
	for _, stage := range []target.Stage{target.Vertex, target.Fragment} {
		t.Run(stage.String(), func(t *testing.T) {
			s := SettingsFor(stage, target.Desktop, target.Vulkan, target.SPIRV, false)
			prog, err := NewAdapter(NewNaga()).Load(ctx, trianglePipeline, s)
			require.NoError(t, err)

			m, err := prog.Lower(ctx)
			require.NoError(t, err)
			assert.Equal(t, "1.0", m.Header().VersionString())

			eps, err := m.EntryPoints()
			require.NoError(t, err)
			models := make(map[string]spirv.ExecutionModel)
			for _, ep := range eps {
				models[ep.Name] = ep.Model
			}
			assert.Equal(t, spirv.ExecutionModelVertex, models["vs_main"])
			assert.Equal(t, spirv.ExecutionModelFragment, models["fs_main"])
		})
	}
}

func TestNagaSPIRVVersion(t *testing.T) {
	ctx := context.Background()
	n := &Naga{SPIRVVersion: spirv.Version1_3}
	s := Settings{Stage: target.Fragment}
	prog, err := NewAdapter(n).Load(ctx, trianglePipeline, s)
	require.NoError(t, err)
	m, err := prog.Lower(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.3", m.Header().VersionString())
}

func TestNagaErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("syntax", func(t *testing.T) {
		_, err := NewAdapter(NewNaga()).Load(ctx, "@vertex\nfn main( {", Settings{Stage: target.Vertex})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, PhaseParse, d.Phase)
		assert.NotEmpty(t, d.Log)
	})

	t.Run("missing stage", func(t *testing.T) {
		_, err := NewAdapter(NewNaga()).Load(ctx, computeOnly, Settings{Stage: target.Fragment})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, PhaseParse, d.Phase)
		assert.Contains(t, d.Error(), "no fragment entry point")
	})

	t.Run("lower before link", func(t *testing.T) {
		prog, err := NewNaga().Parse(ctx, trianglePipeline, Settings{Stage: target.Vertex})
		require.NoError(t, err)
		_, err = prog.Lower(ctx)
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, PhaseLower, d.Phase)
	})

	t.Run("canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewNaga().Parse(canceled, trianglePipeline, Settings{Stage: target.Vertex})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNagaPreprocessIsIdentity(t *testing.T) {
	out, err := NewAdapter(NewNaga()).Preprocess(context.Background(), trianglePipeline, Settings{})
	require.NoError(t, err)
	assert.Equal(t, trianglePipeline, out)
}
