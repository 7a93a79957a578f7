// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"errors"
	"strings"

	"github.com/gogpu/shaderpipe/frontend"
	"github.com/gogpu/shaderpipe/target"
)

// ErrorKind categorizes pipeline failures.
type ErrorKind uint8

const (
	// ErrParse indicates the front end rejected or could not preprocess
	// the source.
	ErrParse ErrorKind = iota

	// ErrLink indicates the parsed program failed to link.
	ErrLink

	// ErrLowering indicates a module could not be produced or translated.
	ErrLowering

	// ErrOptimizer indicates the optimizer left no usable module.
	ErrOptimizer

	// ErrBindingResolution indicates a sampler without a binding index.
	ErrBindingResolution

	// ErrConfiguration indicates an unsupported combination of settings.
	ErrConfiguration
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "ParseError"
	case ErrLink:
		return "LinkError"
	case ErrLowering:
		return "LoweringFailure"
	case ErrOptimizer:
		return "OptimizerFailure"
	case ErrBindingResolution:
		return "BindingResolutionError"
	case ErrConfiguration:
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// Error is a pipeline failure.
type Error struct {
	Kind  ErrorKind
	Stage target.Stage

	// Log is the front end's info log, if any.
	Log string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("shaderpipe: ")
	if e.Stage.Valid() {
		sb.WriteString(e.Stage.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Kind.String())
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// frontendError classifies a front-end failure by the phase that
// produced it. Errors without a phase get fallback.
func frontendError(stage target.Stage, fallback ErrorKind, err error) *Error {
	e := &Error{Kind: fallback, Stage: stage, Err: err}
	var d *frontend.Diagnostic
	if errors.As(err, &d) {
		e.Log = d.Log
		switch d.Phase {
		case frontend.PhasePreprocess, frontend.PhaseParse:
			e.Kind = ErrParse
		case frontend.PhaseLink:
			e.Kind = ErrLink
		case frontend.PhaseLower:
			e.Kind = ErrLowering
		}
	}
	return e
}
