package services

// Sequence is a per-publish id allocator seeded from MAX(id) of the target
// table. The planner claims ids up front because later statements in the same
// batch reference them.
type Sequence struct {
	current int64
}

func NewSequence(maxId int64) *Sequence {
	return &Sequence{current: maxId}
}

func (s *Sequence) Next() int64 {
	s.current++
	return s.current
}

// Peek returns the last allocated id without advancing.
func (s *Sequence) Peek() int64 {
	return s.current
}
