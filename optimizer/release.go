// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build release

package optimizer

// Release is true in builds tagged "release", where optimizer warnings and
// informational messages are suppressed by default.
const Release = true
