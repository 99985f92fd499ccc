package tracing

// pathState carries facts accumulated along a single DFS path.
type pathState struct {
	// sawOpaque is set once the path crossed a primitive no policy set
	// recognizes; a failing exit after it is unverifiable, not proven.
	sawOpaque bool
}

// Clone returns a full copy of the state.
func (s *pathState) Clone() *pathState {
	ns := *s
	return &ns
}
