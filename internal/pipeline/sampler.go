package pipeline

import (
	"math/rand/v2"
	"sync"

	"suitcraft-ai/internal/outfit"
)

// AcceptanceSampler may turn down a valid recommendation to ask the model
// for a different combination. It is never consulted on the last attempt.
type AcceptanceSampler interface {
	Accept(attempt int, rec *outfit.Recommendation) bool
}

type AlwaysAccept struct{}

func (AlwaysAccept) Accept(int, *outfit.Recommendation) bool { return true }

// ProbabilisticSampler rejects a valid candidate with a fixed probability.
type ProbabilisticSampler struct {
	mu         sync.Mutex
	rng        *rand.Rand
	rejectRate float64
}

func NewProbabilisticSampler(rng *rand.Rand, rejectRate float64) *ProbabilisticSampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	switch {
	case rejectRate < 0:
		rejectRate = 0
	case rejectRate > 1:
		rejectRate = 1
	}
	return &ProbabilisticSampler{rng: rng, rejectRate: rejectRate}
}

func (s *ProbabilisticSampler) Accept(int, *outfit.Recommendation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() >= s.rejectRate
}
