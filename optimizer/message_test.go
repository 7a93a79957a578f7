// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageString(t *testing.T) {
	m := Message{Level: LevelWarning, Source: "shader.frag", Line: 3, Column: 7, Index: 42, Text: "unused variable"}
	assert.Equal(t, "WARNING: shader.frag:3:7:42: unused variable", m.String())

	m = Message{Level: LevelInternalError, Text: "boom"}
	assert.Equal(t, "INTERNAL ERROR: :0:0:0: boom", m.String())
}

func TestSuppressed(t *testing.T) {
	tests := []struct {
		level   Level
		release bool
		want    bool
	}{
		{LevelFatal, true, false},
		{LevelInternalError, true, false},
		{LevelError, true, false},
		{LevelWarning, true, true},
		{LevelInfo, true, true},
		{LevelDebug, true, true},
		{LevelWarning, false, false},
		{LevelDebug, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Suppressed(tt.level, tt.release), "%s release=%v", tt.level, tt.release)
	}
}

func TestFilter(t *testing.T) {
	var got []Level
	sink := Filter(func(m Message) { got = append(got, m.Level) }, true)
	for _, l := range []Level{LevelError, LevelWarning, LevelFatal, LevelInfo} {
		sink(Message{Level: l})
	}
	assert.Equal(t, []Level{LevelError, LevelFatal}, got)
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		line string
		want Message
	}{
		{
			"error: input.spv:0:0:12: ID 7 has not been defined",
			Message{Level: LevelError, Source: "input.spv", Index: 12, Text: "ID 7 has not been defined"},
		},
		{
			"warning: 4:2:9: loop not unrolled",
			Message{Level: LevelWarning, Line: 4, Column: 2, Index: 9, Text: "loop not unrolled"},
		},
		{
			"fatal: C:\\tmp\\a.spv:1:2:3: bad",
			Message{Level: LevelFatal, Source: "C:\\tmp\\a.spv", Line: 1, Column: 2, Index: 3, Text: "bad"},
		},
		{
			"info: no location here",
			Message{Level: LevelInfo, Text: "no location here"},
		},
		{
			"Segmentation fault",
			Message{Level: LevelError, Text: "Segmentation fault"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMessage(tt.line))
		})
	}
}
