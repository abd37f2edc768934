package ga

import (
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Breeder replaces every non-survivor with a mutated copy of a survivor
type Breeder struct {
	Hyper       HyperParameters
	Policy      ParentPolicy
	TournamentK int
	Workers     int
}

// BreedStats totals the mutations applied in one generation
type BreedStats struct {
	Children  int
	Perturbed int
	Added     int
	Removed   int
}

func (s *BreedStats) add(m Mutation) {
	s.Children++
	s.Perturbed += m.Perturbed
	if m.Added {
		s.Added++
	}
	if m.Removed {
		s.Removed++
	}
}

type childPlan struct {
	parent int
	seed1  uint64
	seed2  uint64
}

// Next breeds in place. pop.Agents[:survivors] must be the breeding pool;
// survivors keep their terms, except that one without terms gains a random
// term. Parents and per-child RNG seeds are drawn from rng in order before
// any work is spread over workers, so the outcome depends only on rng and
// not on scheduling.
func (b Breeder) Next(pop *Population, survivors int, rng *rand.Rand) (BreedStats, error) {
	size := pop.Size()
	survivors = min(survivors, size)
	pool := pop.Agents[:survivors]

	grown := 0
	for i := range pool {
		if pool[i].Len() == 0 {
			if err := pool[i].Append(RandomTerm(rng)); err != nil {
				return BreedStats{}, err
			}
			grown++
		}
	}
	if survivors == size {
		return BreedStats{Added: grown}, nil
	}

	plans := make([]childPlan, size-survivors)
	for i := range plans {
		parent, err := PickParent(pool, b.Policy, b.TournamentK, rng)
		if err != nil {
			return BreedStats{}, err
		}
		plans[i] = childPlan{parent: parent, seed1: rng.Uint64(), seed2: rng.Uint64()}
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(plans) {
		workers = len(plans)
	}

	chunk := (len(plans) + workers - 1) / workers
	stats := make([]BreedStats, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(plans))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				plan := plans[i]
				child := pool[plan.parent]
				childRNG := rand.New(rand.NewPCG(plan.seed1, plan.seed2))
				stats[w].add(MutateAgent(&child, b.Hyper, childRNG))
				if err := child.Validate(); err != nil {
					return err
				}
				pop.Agents[survivors+i] = child
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BreedStats{}, err
	}

	total := BreedStats{Added: grown}
	for _, s := range stats {
		total.Children += s.Children
		total.Perturbed += s.Perturbed
		total.Added += s.Added
		total.Removed += s.Removed
	}
	return total, nil
}
