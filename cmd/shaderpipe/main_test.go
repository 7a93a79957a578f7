package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderpipe"
	"github.com/gogpu/shaderpipe/target"
)

func TestStageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want target.Stage
	}{
		{"shaders/lit.frag", target.Fragment},
		{"blur.fs", target.Fragment},
		{"skin.vert.glsl", target.Vertex},
		{"QUAD.VS", target.Vertex},
		{"post.frag.wgsl", target.Fragment},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := stageFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := stageFromPath("shader.wgsl")
	assert.ErrorContains(t, err, "-stage")
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("build", "out")
	assert.Equal(t, filepath.Join(dir, "lit.frag.glsl"), outputPath(dir, "src/lit.frag", shaderpipe.OutputGLSL))
	assert.Equal(t, filepath.Join(dir, "lit.frag.spv"), outputPath(dir, "src/lit.frag", shaderpipe.OutputSPIRV))
	assert.Equal(t, filepath.Join(dir, "lit.frag.metal"), outputPath(dir, "lit.frag", shaderpipe.OutputMSL))
}
