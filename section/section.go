// Package section implements the section driver (C9): the pipeline
// that composes the combiner, T-forward pass, layer builder and
// measurement absorption to a fixed point over a single section's
// operation sequence.
package section

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/latticesurgery/qrw/absorb"
	"github.com/latticesurgery/qrw/combine"
	"github.com/latticesurgery/qrw/internal/algoutils"
	"github.com/latticesurgery/qrw/internal/fingerprint"
	"github.com/latticesurgery/qrw/layer"
	"github.com/latticesurgery/qrw/logger"
	"github.com/latticesurgery/qrw/op"
	"github.com/latticesurgery/qrw/pauli"
	"github.com/latticesurgery/qrw/profile"
	"github.com/latticesurgery/qrw/tforward"
	"github.com/rs/zerolog"
)

// ErrEmptyInput is returned when Compile is given a zero-length
// operation sequence.
var ErrEmptyInput = errors.New("section: empty input circuit")

// Result is the output of a Compile call.
type Result struct {
	// Ops is the rewritten sequence.
	Ops []op.Operation
	// TCount is the length of the post-fixed-point T-prefix.
	TCount int
	// CommutedStart is the index after which the absorbed/commuted-through
	// tail begins. Equals len(Ops) when absorption was not requested or
	// found nothing to commute.
	CommutedStart int
	// Layers holds the final T-prefix's layered view, populated only
	// when WithLayerOut(true) was passed.
	Layers [][]op.Rotation
	// DeadlineExceeded reports whether the fixed-point loop stopped
	// early because the context deadline (or WithDeadline duration)
	// elapsed. The returned Ops are still a valid, uncorrupted
	// intermediate state.
	DeadlineExceeded bool
}

type config struct {
	ancillaBegin    uint
	ancillaBeginSet bool
	defaultMeas     int
	absorb          bool
	layerOut        bool
	deadline        time.Duration
	log             zerolog.Logger
	hasLogger       bool
	profile         *profile.Session
}

// Option configures a Compile call.
type Option func(*config)

// WithAncillaBegin sets the ancilla boundary B used by the absorption
// pass. The default is the circuit's qubit width W (no ancilla).
func WithAncillaBegin(b uint) Option {
	return func(c *config) { c.ancillaBegin, c.ancillaBeginSet = b, true }
}

// WithDefaultMeasurements appends n Z-basis single-qubit measurements
// on the least-significant n qubits before compiling.
func WithDefaultMeasurements(n int) Option {
	return func(c *config) { c.defaultMeas = n }
}

// WithAbsorb enables the measurement-absorption pass (C8a/C8b) after
// the fixed-point T-optimisation loop.
func WithAbsorb(enable bool) Option {
	return func(c *config) { c.absorb = enable }
}

// WithLayerOut requests that Result.Layers be populated with the final
// T-prefix's layered view.
func WithLayerOut(enable bool) Option {
	return func(c *config) { c.layerOut = enable }
}

// WithDeadline bounds the fixed-point loop to d from the start of
// Compile, in addition to any deadline already set on the ctx argument;
// whichever comes first applies.
func WithDeadline(d time.Duration) Option {
	return func(c *config) { c.deadline = d }
}

// WithLogger overrides the package-wide logger for a single Compile call.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log, c.hasLogger = l, true }
}

// WithProfile attaches a profiling session; Compile records per-pass
// durations on it via Session.Track.
func WithProfile(s *profile.Session) Option {
	return func(c *config) { c.profile = s }
}

// stage2Result is the cacheable portion of Compile: the outcome of the
// fixed-point T-optimisation loop, keyed on the fingerprint of its
// input sequence.
type stage2Result struct {
	ops              []op.Operation
	tCount           int
	layers           [][]op.Rotation
	deadlineExceeded bool
}

// Compiler runs section compilations and memoizes the fixed-point
// T-optimisation stage across calls, keyed on the content fingerprint
// of the sequence entering that stage. A zero Compiler is ready to use.
type Compiler struct {
	cache sync.Map // fingerprint.Digest -> stage2Result
}

// NewCompiler returns a Compiler with an empty memoization cache.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile runs the section pipeline once, with no memoization across
// calls. It is a convenience wrapper around a throwaway Compiler.
func Compile(ctx context.Context, ops []op.Operation, opts ...Option) (Result, error) {
	return NewCompiler().Compile(ctx, ops, opts...)
}

// Compile runs the section pipeline: pairwise-adjacent combine, a
// fixed point of {T-forward, layer, in-layer combine}, then an
// optional absorption pass.
func (c *Compiler) Compile(ctx context.Context, ops []op.Operation, opts ...Option) (Result, error) {
	if len(ops) == 0 {
		return Result{}, ErrEmptyInput
	}

	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	log := logger.Logger()
	if cfg.hasLogger {
		log = cfg.log
	}
	if cfg.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.deadline)
		defer cancel()
	}

	width := ops[0].Width()
	ancillaBegin := width
	if cfg.ancillaBeginSet {
		ancillaBegin = cfg.ancillaBegin
	}

	work := append([]op.Operation(nil), ops...)
	if cfg.defaultMeas > 0 {
		work = append(work, defaultMeasurements(width, cfg.defaultMeas)...)
	}

	if ctx.Err() != nil {
		return Result{Ops: work, CommutedStart: len(work), DeadlineExceeded: true}, nil
	}

	t0 := time.Now()
	_, work = pairwiseAdjacentCombine(work)
	trackPass(cfg.profile, "combine.pairwise", t0)

	stage2 := c.runStage2(ctx, work, cfg.profile)

	result := Result{
		Ops:              stage2.ops,
		TCount:           stage2.tCount,
		CommutedStart:    len(stage2.ops),
		DeadlineExceeded: stage2.deadlineExceeded,
	}
	if cfg.layerOut {
		result.Layers = stage2.layers
	}

	if cfg.absorb && !result.DeadlineExceeded {
		if ctx.Err() != nil {
			result.DeadlineExceeded = true
		} else {
			if !invariantHoldsRotationsBeforeMeasurements(result.Ops) {
				log.Error().Msg("section: internal invariant violation, non-rotation found before measurement block")
			} else {
				t1 := time.Now()
				absorbed := absorb.Absorb(result.Ops, result.TCount, ancillaBegin)
				trackPass(cfg.profile, "absorb", t1)
				result.Ops = absorbed.Ops
				result.CommutedStart = absorbed.CommutedStart
			}
		}
	}

	return result, nil
}

// runStage2 runs the fixed-point T-optimisation loop, or returns a
// cached result keyed on the fingerprint of work.
func (c *Compiler) runStage2(ctx context.Context, work []op.Operation, prof *profile.Session) stage2Result {
	digest := fingerprint.Of(work)
	if cached, ok := c.cache.Load(digest); ok {
		return cached.(stage2Result)
	}

	result := fixedPointTOptimize(ctx, work, prof)

	if !result.deadlineExceeded {
		c.cache.Store(digest, result)
	}
	return result
}

// fixedPointTOptimize repeats {T-forward, layer, in-layer combine,
// flatten} until a round performs no merge, or ctx is done.
func fixedPointTOptimize(ctx context.Context, work []op.Operation, prof *profile.Session) stage2Result {
	tCount := 0
	var lastLayers [][]op.Rotation

	for {
		if ctx.Err() != nil {
			return stage2Result{ops: work, tCount: tCount, layers: lastLayers, deadlineExceeded: true}
		}

		tailStart := firstMeasurementIndex(work)

		t0 := time.Now()
		k := tforward.Pass(work, 0, tailStart)
		trackPass(prof, "tforward", t0)

		t1 := time.Now()
		layers, _ := layer.Build(work[:k])
		trackPass(prof, "layer", t1)

		t2 := time.Now()
		anyMerge := false
		for i, l := range layers {
			changed, merged := combine.All(l)
			anyMerge = anyMerge || changed
			layers[i] = merged
		}
		trackPass(prof, "combine.layer", t2)

		flat := layer.Flatten(layers)
		next := algoutils.Map(flat, op.NewRotation)
		next = append(next, work[k:]...)

		work = next
		tCount = len(flat)
		lastLayers = layers

		if !anyMerge {
			return stage2Result{ops: work, tCount: tCount, layers: lastLayers}
		}
	}
}

// pairwiseAdjacentCombine merges every adjacent rotation pair it can,
// restarting the scan one step back after a merge so a cascading
// merge opportunity opened up behind the cursor is not missed, and
// repeating full left-to-right passes until one finds nothing to merge.
func pairwiseAdjacentCombine(ops []op.Operation) (bool, []op.Operation) {
	work := append([]op.Operation(nil), ops...)
	anyChange := false

	for {
		changedThisPass := false
		i := 0
		for i < len(work)-1 {
			a, b := work[i], work[i+1]
			if !a.IsRotation() || !b.IsRotation() {
				i++
				continue
			}
			merged, out := combine.Combine(a.Rot, b.Rot)
			if !merged {
				i++
				continue
			}
			replacement := make([]op.Operation, len(out))
			for k, r := range out {
				replacement[k] = op.NewRotation(r)
			}
			next := make([]op.Operation, 0, len(work)-2+len(replacement))
			next = append(next, work[:i]...)
			next = append(next, replacement...)
			next = append(next, work[i+2:]...)
			work = next

			anyChange = true
			changedThisPass = true
			if i > 0 {
				i--
			}
		}
		if !changedThisPass {
			break
		}
	}

	return anyChange, work
}

func firstMeasurementIndex(ops []op.Operation) int {
	for i, o := range ops {
		if o.IsMeasurement() {
			return i
		}
	}
	return len(ops)
}

func invariantHoldsRotationsBeforeMeasurements(ops []op.Operation) bool {
	seenMeasurement := false
	for _, o := range ops {
		if o.IsMeasurement() {
			seenMeasurement = true
			continue
		}
		if seenMeasurement {
			return false
		}
	}
	return true
}

// defaultMeasurements builds n Z-basis single-qubit measurements on
// the least-significant n qubits: the i-th measurement has bit index
// width-1-i set in its Z-mask.
func defaultMeasurements(width uint, n int) []op.Operation {
	out := make([]op.Operation, n)
	for i := 0; i < n; i++ {
		z := bitset.New(width)
		z.Set(width - 1 - uint(i))
		p, err := pauli.FromMasks(width, bitset.New(width), z)
		if err != nil {
			panic(err) // widths match by construction
		}
		out[i] = op.NewMeasurement(op.Measurement{P: p, Phi: true, Pos: i})
	}
	return out
}

func trackPass(prof *profile.Session, name string, start time.Time) {
	if prof == nil {
		return
	}
	prof.Track(name, time.Since(start))
}
