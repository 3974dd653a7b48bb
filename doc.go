// Package qrw implements a Clifford+T quantum circuit rewriter: it
// takes a section's operation sequence (rotations and measurements) and
// rewrites it to reduce T-count via commutation, rotation merging, and
// measurement absorption, in preparation for lattice-surgery/magic-state
// compilation.
//
// qrw supports the following passes, composed by the section driver:
//   - T-forward (commute T-gates leftward through Clifford/Pauli rotations)
//   - rotation combination (merge adjacent same-basis rotations)
//   - greedy commuting-layer construction
//   - measurement absorption
//
// Compile is the package's entry point; see the section package for the
// full set of configuration options.
package qrw

import (
	"context"

	"github.com/blang/semver/v4"

	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/section"
)

// Version identifies this rewriter build, so an embedding orchestration
// layer can record which version produced a given output.
var Version = semver.MustParse("0.1.0")

// Compile runs the section pipeline on ops, returning the rewritten
// sequence and T-count/absorption statistics. It is a thin facade over
// section.Compile; see that package's Option type for configuration.
func Compile(ctx context.Context, ops []op.Operation, opts ...section.Option) (section.Result, error) {
	return section.Compile(ctx, ops, opts...)
}
