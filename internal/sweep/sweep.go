package sweep

import "sort"

// Delimiter is one edge of a span, or one literal parenthesis.
type Delimiter struct {
	Pos     int
	Opening bool
}

// Stack holds delimiters sorted descending by position so that the
// smallest remaining position sits at the end and can be popped cheaply.
type Stack struct {
	delims []Delimiter
}

// NewStack copies delims and orders them for consumption.
// Delimiters sharing a position keep their relative input order when popped.
func NewStack(delims []Delimiter) *Stack {
	d := make([]Delimiter, len(delims))
	copy(d, delims)
	sort.SliceStable(d, func(i, j int) bool { return d[i].Pos < d[j].Pos })
	reverse(d)
	return &Stack{delims: d}
}

// Advance pops every delimiter at or before to and returns the net
// open/close delta. Successive calls must use non-decreasing positions.
func (s *Stack) Advance(to int) int {
	delta := 0
	for len(s.delims) > 0 {
		top := s.delims[len(s.delims)-1]
		if top.Pos > to {
			break
		}
		s.delims = s.delims[:len(s.delims)-1]
		if top.Opening {
			delta++
		} else {
			delta--
		}
	}
	return delta
}

// Sweep tracks the running balance over a Stack.
type Sweep struct {
	stack   *Stack
	balance int
}

func New(delims []Delimiter) *Sweep {
	return &Sweep{stack: NewStack(delims)}
}

// To advances the sweep to pos and returns the balance as of pos.
func (w *Sweep) To(pos int) int {
	w.balance += w.stack.Advance(pos)
	return w.balance
}

func reverse(d []Delimiter) {
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
}
