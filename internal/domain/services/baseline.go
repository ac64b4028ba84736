package services

import (
	"math"
	"sync"

	"vendorguard/internal/domain/models"
)

// minBaselineSamples is the floor below which outlier detection is skipped;
// a mean over a handful of submissions is noise, not a baseline.
const minBaselineSamples = 10

// Baseline is an immutable snapshot of the rolling feature statistics
type Baseline struct {
	SampleSize int
	MeanName   float64
	StdName    float64
	MeanDesc   float64
	StdDesc    float64
}

// BaselineSource provides baseline snapshots to the behavioral analyzer.
// Injected rather than ambient so tests can supply a fixed baseline.
type BaselineSource interface {
	Snapshot() Baseline
}

// baselineSample holds the numeric features tracked per submission
type baselineSample struct {
	nameLen int
	descLen int
}

// BaselineStore keeps a sliding window of the most recent N submissions'
// numeric features and derives mean and standard deviation from it.
// Append-mostly; concurrent readers may observe a slightly stale window.
type BaselineStore struct {
	mu       sync.RWMutex
	samples  []baselineSample
	capacity int
	next     int
	full     bool
}

// NewBaselineStore creates a store with the given window capacity
func NewBaselineStore(capacity int) *BaselineStore {
	if capacity <= 0 {
		capacity = 500
	}
	return &BaselineStore{
		samples:  make([]baselineSample, capacity),
		capacity: capacity,
	}
}

// Add appends a submission's features, evicting the oldest when full
func (s *BaselineStore) Add(sub *models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[s.next] = baselineSample{
		nameLen: len(sub.VendorName),
		descLen: len(sub.BusinessDescription),
	}
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
}

// Seed bulk-loads historical features, oldest first
func (s *BaselineStore) Seed(nameLens, descLens []int) {
	n := len(nameLens)
	if len(descLens) < n {
		n = len(descLens)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.samples[s.next] = baselineSample{nameLen: nameLens[i], descLen: descLens[i]}
		s.next = (s.next + 1) % s.capacity
		if s.next == 0 {
			s.full = true
		}
	}
}

// Snapshot computes the current rolling statistics
func (s *BaselineStore) Snapshot() Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = s.capacity
	}

	b := Baseline{SampleSize: size}
	if size == 0 {
		return b
	}

	nameLens := make([]float64, 0, size)
	descLens := make([]float64, 0, size)
	for i := 0; i < size; i++ {
		nameLens = append(nameLens, float64(s.samples[i].nameLen))
		descLens = append(descLens, float64(s.samples[i].descLen))
	}

	b.MeanName, b.StdName = meanStd(nameLens)
	b.MeanDesc, b.StdDesc = meanStd(descLens)
	return b
}

// meanStd returns the mean and sample standard deviation
func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	if n < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}

// FixedBaseline is a BaselineSource returning a constant snapshot
type FixedBaseline Baseline

// Snapshot implements BaselineSource
func (f FixedBaseline) Snapshot() Baseline { return Baseline(f) }
