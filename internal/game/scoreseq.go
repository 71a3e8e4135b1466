package game

// ScoreSequence is an ordered point ledger consumed strictly front to back.
type ScoreSequence struct {
	values []int
	next   int
}

// NewScoreSequence copies the first n values of global.
func NewScoreSequence(global []int, n int) *ScoreSequence {
	if n < 0 {
		n = 0
	}
	if n > len(global) {
		n = len(global)
	}
	values := make([]int, n)
	copy(values, global[:n])
	return &ScoreSequence{values: values}
}

// Take consumes the next value.
func (s *ScoreSequence) Take() (int, bool) {
	if s.next >= len(s.values) {
		return 0, false
	}
	value := s.values[s.next]
	s.next++
	return value, true
}

func (s *ScoreSequence) Remaining() []int {
	return append([]int{}, s.values[s.next:]...)
}

func (s *ScoreSequence) RemainingSum() int {
	total := 0
	for _, value := range s.values[s.next:] {
		total += value
	}
	return total
}

// Values returns the full ledger including consumed entries.
func (s *ScoreSequence) Values() []int {
	return append([]int{}, s.values...)
}
