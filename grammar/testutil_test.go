package grammar

// scriptedSource is a fully deterministic rnd.Randomizer for exercising
// exact generation outcomes: Chance defaults to false (no mutations fire)
// unless explicitly scripted, and Rnd/Rndl/RndlInc pop scripted values in
// order, falling back to 0 once exhausted. This is the "mutation
// probabilities set to 0 for test builds" construction §8 of the
// specification calls for, made concrete via dependency injection instead
// of a global flag.
type scriptedSource struct {
	rndQueue     []int
	rndlQueue    []float64
	rndlIncQueue []float64
	chanceQueue  []bool
}

func (s *scriptedSource) Rnd(n int) int {
	if n <= 1 {
		return 0
	}
	if len(s.rndQueue) == 0 {
		return 0
	}
	v := s.rndQueue[0]
	s.rndQueue = s.rndQueue[1:]
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *scriptedSource) Rndl(max float64) float64 {
	if len(s.rndlQueue) == 0 {
		return 0
	}
	v := s.rndlQueue[0]
	s.rndlQueue = s.rndlQueue[1:]
	return v
}

func (s *scriptedSource) RndlInc(max float64) float64 {
	if len(s.rndlIncQueue) == 0 {
		return 0
	}
	v := s.rndlIncQueue[0]
	s.rndlIncQueue = s.rndlIncQueue[1:]
	return v
}

func (s *scriptedSource) Chance(p float64) bool {
	if len(s.chanceQueue) == 0 {
		return false
	}
	v := s.chanceQueue[0]
	s.chanceQueue = s.chanceQueue[1:]
	return v
}

func must(t interface{ Fatal(...any) }, err error) {
	if err != nil {
		t.Fatal(err)
	}
}
