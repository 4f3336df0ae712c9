package memstore

import (
	"go.uber.org/zap"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/errors"
)

// CharListFrom realizes h as a CharList. CharLists are returned as is;
// everything else is rendered to text and stored as a new CharList.
func (s *Store) CharListFrom(h heapcodec.Handle) (heapcodec.Handle, error) {
	v, err := s.get(h)
	if err != nil {
		return 0, err
	}
	if v.tag == heapcodec.TagCharList {
		return h, nil
	}
	tag := v.tag
	text, err := s.realize(h)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("realized char list",
		zap.Uint32("handle", uint32(h)),
		zap.Stringer("tag", tag),
		zap.Int("length", len(text)))
	return s.add(value{tag: heapcodec.TagCharList, chars: text})
}

// Text returns the realized text of h without storing it.
func (s *Store) Text(h heapcodec.Handle) (string, error) {
	text, err := s.realize(h)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (s *Store) realize(h heapcodec.Handle) ([]rune, error) {
	var out []rune
	if err := s.realizeInto(h, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) realizeInto(h heapcodec.Handle, out *[]rune) error {
	v, err := s.get(h)
	if err != nil {
		return err
	}

	switch v.tag {
	case heapcodec.TagUnit:
	case heapcodec.TagTrue:
		*out = append(*out, []rune("true")...)
	case heapcodec.TagFalse:
		*out = append(*out, []rune("false")...)
	case heapcodec.TagNumber:
		*out = append(*out, []rune(v.num.String())...)
	case heapcodec.TagChar:
		*out = append(*out, v.char)
	case heapcodec.TagCharList:
		*out = append(*out, v.chars...)
	case heapcodec.TagByteList:
		for _, b := range v.bytes {
			*out = append(*out, rune(b))
		}
	case heapcodec.TagSymbol:
		*out = append(*out, []rune(s.names[v.sym])...)
	case heapcodec.TagPair:
		if err := s.realizeInto(v.a, out); err != nil {
			return err
		}
		*out = append(*out, '=')
		return s.realizeInto(v.b, out)
	case heapcodec.TagRange:
		if err := s.realizeInto(v.a, out); err != nil {
			return err
		}
		*out = append(*out, '.', '.')
		return s.realizeInto(v.b, out)
	case heapcodec.TagList:
		for _, it := range v.items {
			if err := s.realizeInto(it.h, out); err != nil {
				return err
			}
		}
	case heapcodec.TagConcatenation:
		leaves, err := s.leaves(h)
		if err != nil {
			return err
		}
		for _, leaf := range leaves {
			if err := s.realizeInto(leaf, out); err != nil {
				return err
			}
		}
	case heapcodec.TagSlice:
		return s.realizeSlice(v, out)
	default:
		return errors.Unsupported(errors.PhaseStore, "realize "+v.tag.String())
	}
	return nil
}

func (s *Store) realizeSlice(v *value, out *[]rune) error {
	src, err := s.get(v.a)
	if err != nil {
		return err
	}
	start, end, err := s.bounds(v.b)
	if err != nil {
		return err
	}

	if src.tag == heapcodec.TagCharList {
		if end < start {
			return nil
		}
		if start < 0 || end >= len(src.chars) {
			return errors.OutOfBounds(errors.PhaseStore, nil, end, len(src.chars))
		}
		*out = append(*out, src.chars[start:end+1]...)
		return nil
	}

	items, err := s.items(v.a)
	if err != nil {
		return err
	}
	if end < start {
		return nil
	}
	if start < 0 || end >= len(items) {
		return errors.OutOfBounds(errors.PhaseStore, nil, end, len(items))
	}
	for _, h := range items[start : end+1] {
		if err := s.realizeInto(h, out); err != nil {
			return err
		}
	}
	return nil
}

// bounds reads a Range as inclusive integer indices.
func (s *Store) bounds(rng heapcodec.Handle) (int, int, error) {
	r, err := s.expect(rng, heapcodec.TagRange)
	if err != nil {
		return 0, 0, err
	}
	start, err := s.index(r.a)
	if err != nil {
		return 0, 0, err
	}
	end, err := s.index(r.b)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (s *Store) index(h heapcodec.Handle) (int, error) {
	n, err := s.Number(h)
	if err != nil {
		return 0, err
	}
	i, ok := n.Int64()
	if !ok || int64(int(i)) != i {
		return 0, errors.Overflow(errors.PhaseStore, nil, n, "int")
	}
	return int(i), nil
}

// items returns the flattened items of a List or Concatenation.
func (s *Store) items(h heapcodec.Handle) ([]heapcodec.Handle, error) {
	v, err := s.get(h)
	if err != nil {
		return nil, err
	}
	switch v.tag {
	case heapcodec.TagList:
		out := make([]heapcodec.Handle, len(v.items))
		for i, it := range v.items {
			out[i] = it.h
		}
		return out, nil
	case heapcodec.TagConcatenation:
		return s.leaves(h)
	default:
		return nil, errors.New(errors.PhaseStore, errors.KindTypeMismatch).
			StoreType(v.tag.String()).
			Detail("slice source must be List or Concatenation, found %s", v.tag).
			Build()
	}
}

// leaves walks a Concatenation tree left to right with an explicit stack.
func (s *Store) leaves(h heapcodec.Handle) ([]heapcodec.Handle, error) {
	var out []heapcodec.Handle
	stack := []heapcodec.Handle{h}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v, err := s.get(top)
		if err != nil {
			return nil, err
		}
		if v.tag != heapcodec.TagConcatenation {
			out = append(out, top)
			continue
		}
		stack = append(stack, v.b, v.a)
	}
	return out, nil
}
