package codec

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec/internal/numconv"
	"github.com/wippyai/heapcodec/errors"
)

// Items resolves h to a flat item sequence. Lists yield their items,
// Concatenations their leaves left to right, and Slices the selected
// inclusive range of their source. Any other value is a one-item sequence.
func (d *Decoder) Items(h heapcodec.Handle) ([]heapcodec.Handle, error) {
	return d.resolveItems(h, nil)
}

func (d *Decoder) resolveItems(h heapcodec.Handle, path []string) ([]heapcodec.Handle, error) {
	tag, err := d.store.Tag(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	var items []heapcodec.Handle
	switch tag {
	case heapcodec.TagList:
		items, err = d.listItems(h, path)
	case heapcodec.TagConcatenation:
		items, err = d.flatten(h, path)
	case heapcodec.TagSlice:
		items, err = d.sliceItems(h, path)
	default:
		return []heapcodec.Handle{h}, nil
	}
	if err != nil {
		return nil, err
	}

	Logger().Debug("resolved items",
		zap.Uint32("handle", uint32(h)),
		zap.Stringer("tag", tag),
		zap.Int("count", len(items)))
	return items, nil
}

func (d *Decoder) listItems(h heapcodec.Handle, path []string) ([]heapcodec.Handle, error) {
	n, err := d.store.ListLen(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "list length", err)
	}
	items := make([]heapcodec.Handle, n)
	for i := range items {
		if items[i], err = d.store.ListItem(h, i); err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "list item", err)
		}
	}
	return items, nil
}

// flatten walks a Concatenation tree with an explicit stack. Right is
// pushed before left so leaves come out in left-to-right order.
func (d *Decoder) flatten(h heapcodec.Handle, path []string) ([]heapcodec.Handle, error) {
	var leaves []heapcodec.Handle
	stack := []heapcodec.Handle{h}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tag, err := d.store.Tag(top)
		if err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
		}
		if tag != heapcodec.TagConcatenation {
			leaves = append(leaves, top)
			continue
		}

		left, right, err := d.store.Concatenation(top)
		if err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "concatenation", err)
		}
		stack = append(stack, right, left)
	}
	return leaves, nil
}

func (d *Decoder) sliceItems(h heapcodec.Handle, path []string) ([]heapcodec.Handle, error) {
	source, rng, err := d.store.Slice(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "slice", err)
	}

	srcTag, err := d.store.Tag(source)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	var items []heapcodec.Handle
	switch srcTag {
	case heapcodec.TagList:
		items, err = d.listItems(source, path)
	case heapcodec.TagConcatenation:
		items, err = d.flatten(source, path)
	default:
		return nil, errors.UnexpectedTag(path, "List or Concatenation as slice source", srcTag)
	}
	if err != nil {
		return nil, err
	}

	start, end, err := d.rangeBounds(rng, path)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, nil
	}
	if start < 0 {
		return nil, errors.OutOfBounds(errors.PhaseDecode, path, start, len(items))
	}
	if end >= len(items) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, path, end, len(items))
	}
	return items[start : end+1], nil
}

// rangeBounds reads a Range's inclusive start and end as indices.
func (d *Decoder) rangeBounds(rng heapcodec.Handle, path []string) (int, int, error) {
	startH, endH, err := d.store.Range(rng)
	if err != nil {
		return 0, 0, errors.StoreFailure(errors.PhaseDecode, path, "range", err)
	}
	start, err := d.index(startH, path)
	if err != nil {
		return 0, 0, err
	}
	end, err := d.index(endH, path)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (d *Decoder) index(h heapcodec.Handle, path []string) (int, error) {
	n, err := d.store.Number(h)
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseDecode, path, "range bound", err)
	}
	i, ok := numconv.ToInt(n, strconv.IntSize)
	if !ok {
		return 0, errors.Overflow(errors.PhaseDecode, path, n, "int")
	}
	return int(i), nil
}
