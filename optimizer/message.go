// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package optimizer

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the severity of an optimizer diagnostic.
type Level uint8

const (
	LevelFatal Level = iota
	LevelInternalError
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

// String returns the level as printed in diagnostics.
func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelInternalError:
		return "INTERNAL ERROR"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Message is one diagnostic from the external optimizer.
type Message struct {
	Level  Level
	Source string
	Line   int
	Column int
	Index  int
	Text   string
}

// String renders m as "LEVEL: source:line:column:index: text".
func (m Message) String() string {
	return fmt.Sprintf("%s: %s:%d:%d:%d: %s", m.Level, m.Source, m.Line, m.Column, m.Index, m.Text)
}

// Suppressed reports whether messages at level l are dropped. Release
// builds drop warnings and below; errors always surface.
func Suppressed(l Level, release bool) bool {
	return release && l >= LevelWarning
}

// Filter wraps sink so that suppressed messages never reach it.
func Filter(sink func(Message), release bool) func(Message) {
	return func(m Message) {
		if !Suppressed(m.Level, release) {
			sink(m)
		}
	}
}

var levelPrefixes = []struct {
	prefix string
	level  Level
}{
	{"fatal: ", LevelFatal},
	{"internal error: ", LevelInternalError},
	{"error: ", LevelError},
	{"warning: ", LevelWarning},
	{"info: ", LevelInfo},
	{"debug: ", LevelDebug},
}

// ParseMessage decodes one diagnostic line in the spirv-opt format
// "level: [source:]line:column:index: text". Lines without a recognized
// level are reported as errors carrying the whole line.
func ParseMessage(line string) Message {
	m := Message{Level: LevelError, Text: line}
	rest := line
	found := false
	for _, p := range levelPrefixes {
		if strings.HasPrefix(rest, p.prefix) {
			m.Level = p.level
			rest = rest[len(p.prefix):]
			found = true
			break
		}
	}
	if !found {
		return m
	}
	m.Text = rest

	loc, text, ok := strings.Cut(rest, ": ")
	if !ok {
		return m
	}
	parts := strings.Split(loc, ":")
	if len(parts) < 3 {
		return m
	}
	nums := make([]int, 3)
	for i, s := range parts[len(parts)-3:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return m
		}
		nums[i] = n
	}
	m.Source = strings.Join(parts[:len(parts)-3], ":")
	m.Line, m.Column, m.Index = nums[0], nums[1], nums[2]
	m.Text = text
	return m
}
