package codec

import (
	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/errors"
)

// focusStack records the handles being decoded, innermost last. Nested
// decodes push before descending and pop on return.
type focusStack struct {
	handles []heapcodec.Handle
	limit   int
}

func (s *focusStack) push(h heapcodec.Handle, path []string) error {
	if len(s.handles) >= s.limit {
		return errors.New(errors.PhaseDecode, errors.KindOverflow).
			Path(path...).
			Value(h).
			Detail("nesting exceeds maximum depth %d", s.limit).
			Build()
	}
	s.handles = append(s.handles, h)
	return nil
}

func (s *focusStack) pop() {
	if n := len(s.handles); n > 0 {
		s.handles = s.handles[:n-1]
	}
}

func (s *focusStack) top() (heapcodec.Handle, bool) {
	n := len(s.handles)
	if n == 0 {
		return 0, false
	}
	return s.handles[n-1], true
}

func (s *focusStack) depth() int {
	return len(s.handles)
}
