package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/heapcodec"
)

// maxRenderDepth stops runaway output on deeply nested or cyclic graphs.
const maxRenderDepth = 64

// maxInlineBytes caps the hex preview of byte lists.
const maxInlineBytes = 32

type styles struct {
	handle lipgloss.Style
	tag    lipgloss.Style
	value  lipgloss.Style
	label  lipgloss.Style
	branch lipgloss.Style
	err    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{handle: plain, tag: plain, value: plain, label: plain, branch: plain, err: plain}
	}
	return styles{
		handle: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		tag:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB")),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		branch: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// associativeReader is implemented by stores that keep the per-element
// associative flag of lists.
type associativeReader interface {
	Associative(h heapcodec.Handle, index int) (bool, error)
}

type child struct {
	label string
	h     heapcodec.Handle
}

// renderTree draws the graph reachable from root, one value per line.
// Lines are clipped to width when width is positive.
func renderTree(r heapcodec.Reader, root heapcodec.Handle, st styles, width int) (string, error) {
	var lines []string
	if err := renderNode(r, root, "", "", "", st, 0, &lines); err != nil {
		return "", err
	}

	if width > 0 {
		clip := lipgloss.NewStyle().MaxWidth(width)
		for i, line := range lines {
			lines[i] = clip.Render(line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func renderNode(r heapcodec.Reader, h heapcodec.Handle, label, lead, indent string, st styles, depth int, lines *[]string) error {
	head, err := describe(r, h, st)
	if err != nil {
		return err
	}
	if label != "" {
		head = st.label.Render(label) + " " + head
	}
	*lines = append(*lines, st.branch.Render(lead)+head)

	if depth >= maxRenderDepth {
		*lines = append(*lines, st.branch.Render(indent+"└── ")+st.err.Render("..."))
		return nil
	}

	kids, err := children(r, h)
	if err != nil {
		return err
	}
	for i, c := range kids {
		branch, next := "├── ", "│   "
		if i == len(kids)-1 {
			branch, next = "└── ", "    "
		}
		if err := renderNode(r, c.h, c.label, indent+branch, indent+next, st, depth+1, lines); err != nil {
			return err
		}
	}
	return nil
}

// describe renders "#h Tag value" for a single handle.
func describe(r heapcodec.Reader, h heapcodec.Handle, st styles) (string, error) {
	tag, err := r.Tag(h)
	if err != nil {
		return "", fmt.Errorf("handle %d: %w", h, err)
	}

	value, err := scalarText(r, h, tag)
	if err != nil {
		return "", fmt.Errorf("handle %d: %w", h, err)
	}

	out := st.handle.Render("#"+strconv.FormatUint(uint64(h), 10)) + " " + st.tag.Render(tag.String())
	if value != "" {
		out += " " + st.value.Render(value)
	}
	return out, nil
}

func scalarText(r heapcodec.Reader, h heapcodec.Handle, tag heapcodec.Tag) (string, error) {
	switch tag {
	case heapcodec.TagNumber:
		n, err := r.Number(h)
		if err != nil {
			return "", err
		}
		return n.String(), nil

	case heapcodec.TagChar:
		c, err := r.Char(h)
		if err != nil {
			return "", err
		}
		return strconv.QuoteRune(c), nil

	case heapcodec.TagCharList:
		n, err := r.CharListLen(h)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for i := range n {
			c, err := r.CharListItem(h, i)
			if err != nil {
				return "", err
			}
			sb.WriteRune(c)
		}
		return strconv.Quote(sb.String()), nil

	case heapcodec.TagByteList:
		n, err := r.ByteListLen(h)
		if err != nil {
			return "", err
		}
		buf := make([]byte, 0, min(n, maxInlineBytes))
		for i := range min(n, maxInlineBytes) {
			b, err := r.ByteListItem(h, i)
			if err != nil {
				return "", err
			}
			buf = append(buf, b)
		}
		text := fmt.Sprintf("[%d] %s", n, hex.EncodeToString(buf))
		if n > maxInlineBytes {
			text += "..."
		}
		return text, nil

	case heapcodec.TagSymbol:
		name, err := r.SymbolName(h)
		if err != nil {
			return "", err
		}
		return ":" + name, nil

	case heapcodec.TagList:
		n, err := r.ListLen(h)
		if err != nil {
			return "", err
		}
		return "(" + strconv.Itoa(n) + ")", nil
	}
	return "", nil
}

// children lists the direct references of h with their edge labels.
func children(r heapcodec.Reader, h heapcodec.Handle) ([]child, error) {
	tag, err := r.Tag(h)
	if err != nil {
		return nil, err
	}

	switch tag {
	case heapcodec.TagPair:
		k, v, err := r.Pair(h)
		if err != nil {
			return nil, err
		}
		return []child{{"key", k}, {"value", v}}, nil

	case heapcodec.TagConcatenation:
		left, right, err := r.Concatenation(h)
		if err != nil {
			return nil, err
		}
		return []child{{"left", left}, {"right", right}}, nil

	case heapcodec.TagRange:
		start, end, err := r.Range(h)
		if err != nil {
			return nil, err
		}
		return []child{{"start", start}, {"end", end}}, nil

	case heapcodec.TagSlice:
		source, rng, err := r.Slice(h)
		if err != nil {
			return nil, err
		}
		return []child{{"source", source}, {"range", rng}}, nil

	case heapcodec.TagList:
		n, err := r.ListLen(h)
		if err != nil {
			return nil, err
		}
		assoc, _ := r.(associativeReader)
		out := make([]child, 0, n)
		for i := range n {
			item, err := r.ListItem(h, i)
			if err != nil {
				return nil, err
			}
			label := "[" + strconv.Itoa(i) + "]"
			if assoc != nil {
				if a, err := assoc.Associative(h, i); err == nil && a {
					label += "*"
				}
			}
			out = append(out, child{label, item})
		}
		return out, nil
	}
	return nil, nil
}
