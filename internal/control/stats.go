package control

import "github.com/chewxy/math32"

// RollingStats approximates the mean and variance of the last windowSize
// samples in O(1) per update without storing the history.
//
// The previous sample stands in for the sample leaving the window, so the
// estimate is only meaningful once at least windowSize samples have been fed.
// No sample count is kept; callers decide when the estimate has warmed up.
// windowSize must be at least 2.
//
// The first sample primes the estimator as if the window were already full
// of it: average starts at that sample and variance at 0.
type RollingStats struct {
	window   int
	primed   bool
	prev     float32
	average  float32
	variance float32
}

// NewRollingStats creates an estimator over windowSize samples.
func NewRollingStats(windowSize int) *RollingStats {
	return &RollingStats{window: windowSize}
}

// NewRollingStatsSeeded creates an estimator whose average and previous
// sample start at seed, so the first Update already applies the rolling
// formula. A seed of 0 gives the behaviour of a zero-valued window with no
// priming step.
func NewRollingStatsSeeded(windowSize int, seed float32) *RollingStats {
	return &RollingStats{window: windowSize, primed: true, prev: seed, average: seed}
}

// Update feeds one sample.
// See http://jonisalonen.com/2014/efficient-and-accurate-rolling-standard-deviation/
func (s *RollingStats) Update(v float32) {
	if !s.primed {
		s.primed = true
		s.prev = v
		s.average = v
		return
	}

	n := float32(s.window)
	oldAvg := s.average
	newAvg := oldAvg + (v-s.prev)/n
	s.variance += (v - s.prev) * (v - newAvg + s.prev - oldAvg) / (n - 1)
	s.average = newAvg
	s.prev = v
}

// WindowSize returns the nominal window length.
func (s *RollingStats) WindowSize() int {
	return s.window
}

// Average returns the running mean.
func (s *RollingStats) Average() float32 {
	return s.average
}

// Variance returns the running variance. It can be slightly negative before
// the window has filled.
func (s *RollingStats) Variance() float32 {
	return s.variance
}

// StdDev returns the square root of the variance, or 0 while the variance
// is negative.
func (s *RollingStats) StdDev() float32 {
	if s.variance <= 0 {
		return 0
	}
	return math32.Sqrt(s.variance)
}
