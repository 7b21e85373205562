package analyser

import (
	"github.com/pkg/errors"

	"kernel-module-detective/internal/record"
)

// ScoreWeights weigh the four failure signals of the danger score.
type ScoreWeights struct {
	FailedLoads     int64
	CriticalErrors  int64
	NetworkFailures int64
	SyscallFailures int64
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{FailedLoads: 3, CriticalErrors: 5, NetworkFailures: 4, SyscallFailures: 1}
}

type Signals struct {
	FailedLoads     int64
	CriticalErrors  int64
	NetworkFailures int64
	SyscallFailures int64
}

// Score is the danger score. It is strictly increasing in every signal while all weights are positive.
func (w ScoreWeights) Score(s Signals) int64 {
	return w.FailedLoads*s.FailedLoads +
		w.CriticalErrors*s.CriticalErrors +
		w.NetworkFailures*s.NetworkFailures +
		w.SyscallFailures*s.SyscallFailures
}

func (w ScoreWeights) Validate() error {
	if w.FailedLoads <= 0 || w.CriticalErrors <= 0 || w.NetworkFailures <= 0 || w.SyscallFailures <= 0 {
		return errors.Errorf("score weights must be positive, got %+v", w)
	}
	return nil
}

// Params holds the thresholds of the catalogue queries.
type Params struct {
	RankingLimit        int
	LateSessionFrom     int
	TemporalWindow      float64
	MinMemoryRequests   int
	MinMemoryFailurePct float64
	MinNetworkFailures  int
	TimelineModule      string
	TimelineLimit       int

	MinFailedLoads    int
	MinCriticalErrors int
	MinMemFailurePct  float64
	Weights           ScoreWeights
}

func DefaultParams() Params {
	return Params{
		RankingLimit:        10,
		LateSessionFrom:     2,
		TemporalWindow:      100,
		MinMemoryRequests:   5,
		MinMemoryFailurePct: 40,
		MinNetworkFailures:  2,
		TimelineModule:      record.DefaultFaultyModule,
		TimelineLimit:       20,

		MinFailedLoads:    3,
		MinCriticalErrors: 2,
		MinMemFailurePct:  35,
		Weights:           DefaultScoreWeights(),
	}
}

func (p Params) Validate() error {
	if p.RankingLimit < 1 || p.TimelineLimit < 1 {
		return errors.Errorf("result limits must be at least 1, got ranking %d and timeline %d", p.RankingLimit, p.TimelineLimit)
	}
	if p.TemporalWindow <= 0 {
		return errors.Errorf("temporal window must be positive, got %v", p.TemporalWindow)
	}
	if p.TimelineModule == "" {
		return errors.New("timeline module must be set")
	}
	if p.MinMemoryFailurePct < 0 || p.MinMemoryFailurePct > 100 || p.MinMemFailurePct < 0 || p.MinMemFailurePct > 100 {
		return errors.New("failure percentages must be within [0, 100]")
	}
	return p.Weights.Validate()
}
