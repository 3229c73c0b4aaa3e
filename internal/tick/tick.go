package tick

// Scheduler is a frame counter gating the discrete-command scan.
type Scheduler struct {
	count int
	gap   int
}

// New returns a Scheduler firing once every gap frames.
func New(gap int) *Scheduler {
	s := &Scheduler{}
	s.SetGap(gap)
	return s
}

// Tick is called once per frame and reports whether the
// discrete-command check runs on this frame.
func (s *Scheduler) Tick() bool {
	s.count++
	if s.count >= s.gap {
		s.count = 0
		return true
	}
	return false
}

// SetGap changes the gap and restarts the count.
func (s *Scheduler) SetGap(gap int) {
	if gap < 1 {
		gap = 1
	}
	s.gap = gap
	s.count = 0
}

func (s *Scheduler) Gap() int {
	return s.gap
}

func (s *Scheduler) Count() int {
	return s.count
}
