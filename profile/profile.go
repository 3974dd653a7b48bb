// Package profile provides a lightweight CPU-profiling session around
// a section.Compile call.
//
// Sessions wrap runtime/pprof.StartCPUProfile directly: the rewriter's
// passes are plain CPU-bound Go code, so the standard profiler already
// sees everything that matters. github.com/google/pprof/profile is
// used only to post-process a completed profile file into a summary.
package profile

import (
	"os"
	"runtime/pprof"
	"sync"
	"time"

	gpprof "github.com/google/pprof/profile"
	"github.com/latticesurgery/qrw/logger"
)

// Session is an active profiling session for a single section.Compile
// call. Track may be called from several goroutines at once - it takes
// its own lock - while Start/Stop bracket one Compile invocation.
type Session struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	started   time.Time
	durations map[string]time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithPath sets the destination pprof file. If empty (the default),
// no CPU profile is written to disk; Track still accumulates per-pass
// durations.
func WithPath(path string) Option {
	return func(s *Session) { s.path = path }
}

// Start begins a profiling session, optionally writing a pprof CPU
// profile to the path given via WithPath.
func Start(options ...Option) *Session {
	s := &Session{durations: make(map[string]time.Duration)}
	for _, o := range options {
		o(s)
	}

	if s.path != "" {
		f, err := os.Create(s.path)
		if err != nil {
			log := logger.Logger()
			log.Error().Err(err).Str("path", s.path).Msg("profile: failed to create output file")
		} else {
			s.file = f
			if err := pprof.StartCPUProfile(f); err != nil {
				log := logger.Logger()
				log.Error().Err(err).Msg("profile: failed to start CPU profile")
			}
		}
	}

	s.started = time.Now()
	return s
}

// Track adds d to the accumulated duration recorded for a named pass
// (e.g. "tforward", "layer", "combine", "absorb").
func (s *Session) Track(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations[name] += d
}

// Elapsed returns the wall-clock time since Start.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

// Stop ends the CPU profile, if one was started, and returns a copy of
// the per-pass durations recorded via Track.
func (s *Session) Stop() map[string]time.Duration {
	if s.file != nil {
		pprof.StopCPUProfile()
		if err := s.file.Close(); err != nil {
			log := logger.Logger()
			log.Error().Err(err).Msg("profile: failed to close output file")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.durations))
	for k, v := range s.durations {
		out[k] = v
	}
	return out
}

// Report parses a pprof CPU profile previously written via WithPath
// and returns the total sampled duration across every sample. It lets
// a caller who wants the google/pprof view (instead of this package's
// own Track-based summary) inspect a completed session's file.
func Report(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	prof, err := gpprof.Parse(f)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, sample := range prof.Sample {
		for i, v := range sample.Value {
			if i < len(prof.SampleType) && prof.SampleType[i].Unit == "nanoseconds" {
				total += v
			}
		}
	}
	return time.Duration(total) * time.Nanosecond, nil
}
