package syncclient

// sequencer orders overlapping refreshes of one view. Callers hold the view's lock.
type sequencer struct {
	issued   uint64
	applied  uint64
	inflight int
}

func (s *sequencer) begin() uint64 {
	s.issued++
	s.inflight++
	return s.issued
}

// finish reports whether the response tagged seq may be applied
func (s *sequencer) finish(seq uint64) bool {
	s.inflight--
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}

// fail releases seq without applying anything and reports whether its error
// is still current, i.e. no newer response has been applied
func (s *sequencer) fail(seq uint64) bool {
	s.inflight--
	return seq > s.applied
}

func (s *sequencer) loading() bool { return s.inflight > 0 }
