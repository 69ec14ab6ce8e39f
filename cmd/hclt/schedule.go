package main

import "fmt"

// multiLinear interpolates the step size linearly between milestones and
// holds the last value afterwards.
type multiLinear struct {
	lrs        []float64
	milestones []int
}

func newMultiLinear(lrs []float64, milestones []int) (*multiLinear, error) {
	if len(lrs) == 0 || len(lrs) != len(milestones) {
		return nil, fmt.Errorf("%d step sizes for %d milestones", len(lrs), len(milestones))
	}
	for i := 1; i < len(milestones); i++ {
		if milestones[i] <= milestones[i-1] {
			return nil, fmt.Errorf("milestones not increasing at %d: %v", i, milestones)
		}
	}

	return &multiLinear{lrs: lrs, milestones: milestones}, nil
}

// at returns the step size for optimisation step s.
func (m *multiLinear) at(s int) float64 {
	if s <= m.milestones[0] {
		return m.lrs[0]
	}
	for i := 1; i < len(m.milestones); i++ {
		if s < m.milestones[i] {
			lo, hi := m.milestones[i-1], m.milestones[i]
			t := float64(s-lo) / float64(hi-lo)
			return m.lrs[i-1] + t*(m.lrs[i]-m.lrs[i-1])
		}
	}

	return m.lrs[len(m.lrs)-1]
}
